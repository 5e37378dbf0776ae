package parksmart

import (
	"net/url"
	"strconv"
)

type NavNode struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Level string  `json:"level,omitempty"`
}

type NavStep struct {
	Instruction string `json:"instruction"`
	DistanceM   int    `json:"distance_m"`
	Level       string `json:"level,omitempty"`
}

// NavPath is an indoor route. Recomputed on demand, never cached.
type NavPath struct {
	Origin      NavNode   `json:"origin"`
	Destination NavNode   `json:"destination"`
	Nodes       []NavNode `json:"nodes"`
	Steps       []NavStep `json:"steps"`
}

// GetIndoorPath fetches the last-200m path from the given position to the
// slot's bay. Entrance coordinates are optional hints.
func (c *Client) GetIndoorPath(originLat, originLng float64, slotID string, entranceLat, entranceLng *float64) (*NavPath, error) {
	query := url.Values{}
	query.Set("origin_lat", strconv.FormatFloat(originLat, 'f', -1, 64))
	query.Set("origin_lng", strconv.FormatFloat(originLng, 'f', -1, 64))
	query.Set("slot_id", slotID)
	if entranceLat != nil {
		query.Set("entrance_lat", strconv.FormatFloat(*entranceLat, 'f', -1, 64))
	}
	if entranceLng != nil {
		query.Set("entrance_lng", strconv.FormatFloat(*entranceLng, 'f', -1, 64))
	}
	var path NavPath
	if err := c.get("/navigation/path", query, &path); err != nil {
		return nil, err
	}
	return &path, nil
}

type locateRequest struct {
	SessionID  string  `json:"session_id"`
	CurrentLat float64 `json:"current_lat"`
	CurrentLng float64 `json:"current_lng"`
	BayLabel   string  `json:"bay_label,omitempty"`
}

func (c *Client) LocateCar(sessionID string, currentLat, currentLng float64, bayLabel string) (*NavPath, error) {
	req := locateRequest{
		SessionID:  sessionID,
		CurrentLat: currentLat,
		CurrentLng: currentLng,
		BayLabel:   bayLabel,
	}
	var path NavPath
	if err := c.post("/navigation/locate", req, &path); err != nil {
		return nil, err
	}
	return &path, nil
}
