package parksmart

import "time"

type AddOn struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price_inr"`
	Category    string  `json:"category"`
	Recommended bool    `json:"recommended"`
}

func (c *Client) GetAddOns() ([]AddOn, error) {
	var addons []AddOn
	if err := c.get("/services/addons", nil, &addons); err != nil {
		return nil, err
	}
	return addons, nil
}

type evPairingRequest struct {
	BookingSlotID string   `json:"booking_slot_id"`
	DesiredKWh    *float64 `json:"desired_kwh,omitempty"`
	ETA           string   `json:"eta"`
}

// EVPairing is the ephemeral charger assignment for a booking. Once
// obtained it is persisted locally and never re-fetched.
type EVPairing struct {
	SlotID     string  `json:"slot_id"`
	ChargerID  string  `json:"charger_id"`
	EstKWh     float64 `json:"est_kwh"`
	EstTimeMin int     `json:"est_time_min"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) RequestEVPairing(bookingSlotID string, desiredKWh *float64, eta time.Time) (*EVPairing, error) {
	req := evPairingRequest{
		BookingSlotID: bookingSlotID,
		DesiredKWh:    desiredKWh,
		ETA:           eta.UTC().Format(time.RFC3339),
	}
	var pairing EVPairing
	if err := c.post("/services/ev_pair", req, &pairing); err != nil {
		return nil, err
	}
	return &pairing, nil
}
