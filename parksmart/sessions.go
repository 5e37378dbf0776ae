package parksmart

import (
	"net/url"
	"strconv"
)

type ValidationMethod string

const (
	ValidationQR    ValidationMethod = "qr"
	ValidationNFC   ValidationMethod = "nfc"
	ValidationPlate ValidationMethod = "plate"
)

// Session is the server-authoritative parking session. Optional fields are
// pointers so an absent charge never turns into a displayed zero.
type Session struct {
	SessionID        string     `json:"session_id"`
	BookingID        string     `json:"booking_id"`
	StartedAt        *Timestamp `json:"started_at"`
	EndedAt          *Timestamp `json:"ended_at"`
	ValidationMethod string     `json:"validation_method"`
	BayLabel         string     `json:"bay_label"`
	GraceEndsAt      *Timestamp `json:"grace_ends_at"`
	LotName          string     `json:"lot_name"`
	LotID            string     `json:"lot_id"`
	LotLat           *float64   `json:"lot_lat"`
	LotLng           *float64   `json:"lot_lng"`
	SlotID           string     `json:"slot_id"`
	DynamicPrice     *float64   `json:"dynamic_price"`
	PaymentStatus    string     `json:"payment_status"`
	AmountAuthorized *float64   `json:"amount_authorized"`
	AmountCaptured   *float64   `json:"amount_captured"`
	DurationMinutes  *int       `json:"duration_minutes"`
	CostEstimated    *float64   `json:"cost_estimated"`
}

type startSessionRequest struct {
	BookingID        string `json:"booking_id"`
	ValidationMethod string `json:"validation_method"`
}

func (c *Client) StartSession(bookingID string, method ValidationMethod) (*Session, error) {
	req := startSessionRequest{
		BookingID:        bookingID,
		ValidationMethod: string(method),
	}
	var session Session
	if err := c.post("/sessions/start", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

type validateSessionRequest struct {
	ValidationMethod string `json:"validation_method"`
	BayLabel         string `json:"bay_label,omitempty"`
}

func (c *Client) ValidateSession(sessionID string, method ValidationMethod, bayLabel string) (*Session, error) {
	req := validateSessionRequest{
		ValidationMethod: string(method),
		BayLabel:         bayLabel,
	}
	var session Session
	if err := c.post("/sessions/"+sessionID+"/validate", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) EndSession(sessionID string) (*Session, error) {
	var session Session
	if err := c.post("/sessions/"+sessionID+"/end", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

type extendSessionRequest struct {
	Minutes int `json:"minutes"`
}

func (c *Client) ExtendSession(sessionID string, minutes int) (*Session, error) {
	var session Session
	if err := c.post("/sessions/"+sessionID+"/extend", extendSessionRequest{Minutes: minutes}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetLiveSessions lists active and recently ended sessions. recentHours
// widens the recency window; 0 means only live ones.
func (c *Client) GetLiveSessions(limit, recentHours int) ([]Session, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("recent_hours", strconv.Itoa(recentHours))
	var sessions []Session
	if err := c.get("/sessions/live", query, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ResolveSessionCharge picks the authoritative charge for display:
// captured, else authorized once the session has ended, else estimated,
// else the dynamic rate. Nil means unknown.
func ResolveSessionCharge(s *Session) *float64 {
	if s.AmountCaptured != nil {
		return s.AmountCaptured
	}
	if s.AmountAuthorized != nil && s.EndedAt != nil {
		return s.AmountAuthorized
	}
	if s.CostEstimated != nil {
		return s.CostEstimated
	}
	if s.DynamicPrice != nil {
		return s.DynamicPrice
	}
	return nil
}
