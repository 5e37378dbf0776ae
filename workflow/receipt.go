package workflow

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parksmart/parkctl/parksmart"
)

const (
	receiptSessionLimit = 500
	receiptRecentHours  = 48
)

// Receipt is the final, read-only reconciliation of an ended session. No
// mutation happens at this stage.
type Receipt struct {
	SessionID    string
	BookingID    string
	Lot          string
	Bay          string
	CheckIn      string
	CheckOut     string
	Duration     string
	TotalCharged *float64
	Carbon       *parksmart.CarbonSession
}

// LoadReceipt locates the session in the wide recent-sessions window (the
// surface has no get-by-id endpoint), derives the duration, resolves the
// charge by precedence and fills a missing lot name from the lot detail.
// The carbon score is attached when available; its absence is silent.
func LoadReceipt(ctx context.Context, client *parksmart.Client, sessionID string) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessions, err := client.GetLiveSessions(receiptSessionLimit, receiptRecentHours)
	if err != nil {
		return nil, err
	}
	var s *parksmart.Session
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			s = &sessions[i]
			break
		}
	}
	if s == nil {
		return nil, parksmart.ErrSessionNotFound
	}

	r := &Receipt{
		SessionID:    sessionID,
		BookingID:    s.BookingID,
		Lot:          s.LotName,
		Bay:          s.BayLabel,
		Duration:     "--",
		TotalCharged: parksmart.ResolveSessionCharge(s),
	}
	if r.Lot == "" {
		r.Lot = "—"
	}
	if r.Bay == "" {
		r.Bay = "—"
	}

	ended := time.Now()
	if s.EndedAt != nil {
		ended = s.EndedAt.Time
	}
	r.CheckOut = ended.Format("15:04:05")
	if s.StartedAt != nil {
		started := s.StartedAt.Time
		r.CheckIn = started.Format("15:04:05")
		mins := int(ended.Sub(started).Minutes())
		if mins < 0 {
			mins = 0
		}
		h, m := mins/60, mins%60
		if h > 0 {
			r.Duration = fmt.Sprintf("%dh %dm", h, m)
		} else {
			r.Duration = fmt.Sprintf("%dm", m)
		}
	}

	if s.LotName == "" && s.LotID != "" {
		if detail, err := client.GetLotDetail(s.LotID); err == nil && detail.Name != "" {
			r.Lot = detail.Name
		}
	}

	if carbon, err := client.GetCarbonForSession(sessionID); err == nil {
		r.Carbon = carbon
	}

	return r, nil
}

// ShareText is the prefilled message for the share action.
func (r *Receipt) ShareText() string {
	booking := r.BookingID
	if booking == "" {
		booking = "—"
	}
	return strings.Join([]string{
		"Parking Receipt",
		"Booking: " + booking,
		"Location: " + r.Lot,
		"Bay: " + r.Bay,
		"Duration: " + r.Duration,
		"Total: " + parksmart.FormatAmount(r.TotalCharged),
	}, "\n")
}

// SaveText writes the plain-text receipt, the export fallback.
func (r *Receipt) SaveText(path string) error {
	return os.WriteFile(path, []byte(r.ShareText()+"\n"), 0644)
}
