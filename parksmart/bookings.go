package parksmart

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

type BookingMode string

const (
	ModeGuaranteed BookingMode = "guaranteed"
	ModeSmartHold  BookingMode = "smart_hold"
)

type BookingBackup struct {
	SlotID     string   `json:"slot_id"`
	Confidence *float64 `json:"confidence"`
}

// Booking is the server-authoritative hold record. The client never mutates
// it; later stages read it back by id.
type Booking struct {
	BookingID   string          `json:"booking_id"`
	SlotID      string          `json:"slot_id"`
	ETAMinute   string          `json:"eta_minute"`
	Mode        BookingMode     `json:"mode"`
	Status      string          `json:"status"`
	PFreeAtHold *float64        `json:"p_free_at_hold"`
	Backups     []BookingBackup `json:"backups"`
}

type createBookingRequest struct {
	SlotID   string   `json:"slot_id"`
	ETA      string   `json:"eta"`
	Mode     string   `json:"mode"`
	AddOnIDs []string `json:"add_on_ids"`
}

func (c *Client) CreateBooking(slotID string, eta time.Time, mode BookingMode, addOnIDs []string) (*Booking, error) {
	if addOnIDs == nil {
		addOnIDs = []string{}
	}
	req := createBookingRequest{
		SlotID:   slotID,
		ETA:      eta.UTC().Format(time.RFC3339),
		Mode:     string(mode),
		AddOnIDs: addOnIDs,
	}
	var booking Booking
	if err := c.post("/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetBooking(bookingID string) (*Booking, error) {
	var booking Booking
	if err := c.get("/bookings/"+bookingID, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// RecentBooking matches the ledger shape of /bookings/recent. Amounts come
// back preformatted with a currency symbol; use ParseAmount for math.
type RecentBooking struct {
	ID            string  `json:"id"`
	Customer      *string `json:"customer"`
	Email         *string `json:"email"`
	Lot           *string `json:"lot"`
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
	Duration      *string `json:"duration"`
	Amount        *string `json:"amount"`
	PaymentMethod *string `json:"paymentMethod"`
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
	SlotID        *string `json:"slot_id"`
}

func (c *Client) GetRecentBookings(limit int) ([]RecentBooking, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	var bookings []RecentBooking
	if err := c.get("/bookings/recent", query, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ParseAmount strips currency symbols and separators from a ledger amount
// string. Returns nil when no number remains.
func ParseAmount(amount *string) *float64 {
	if amount == nil {
		return nil
	}
	var b strings.Builder
	for _, r := range *amount {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &n
}
