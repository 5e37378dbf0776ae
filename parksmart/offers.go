package parksmart

import (
	"net/url"
	"strconv"
	"time"
)

// Offer is the raw predictive search result. p_free is the backend's free
// probability estimate at the requested arrival time.
type Offer struct {
	SlotID      string   `json:"slot_id"`
	ClusterID   string   `json:"cluster_id"`
	DistanceM   int      `json:"distance_m"`
	ETAMinute   string   `json:"eta_minute"`
	PFree       float64  `json:"p_free"`
	Price       float64  `json:"price"`
	ModeOptions []string `json:"mode_options"`
	EV          bool     `json:"ev"`
	Accessible  bool     `json:"accessible"`
}

func (c *Client) SearchOffers(lat, lng float64, eta time.Time) ([]Offer, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("eta", eta.UTC().Format(time.RFC3339))

	var offers []Offer
	if err := c.get("/offers/search", query, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}
