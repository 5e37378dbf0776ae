package parksmart

// Lot is an inventory listing entry. Coordinates are optional; lots without
// them fall back to the search origin when rendered.
type Lot struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Capacity  int      `json:"capacity"`
	Occupancy int      `json:"occupancy"`
	Amenities []string `json:"amenities"`
}

type LotSlot struct {
	SlotID       string  `json:"slot_id"`
	IsEV         bool    `json:"is_ev"`
	IsAccessible bool    `json:"is_accessible"`
	Occupied     bool    `json:"occupied"`
	DynamicPrice float64 `json:"dynamic_price"`
}

type LotDetail struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
	Amenities []string  `json:"amenities"`
	Slots     []LotSlot `json:"slots"`
}

func (c *Client) GetLots() ([]Lot, error) {
	var lots []Lot
	if err := c.get("/inventory/lots", nil, &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

func (c *Client) GetLotDetail(lotID string) (*LotDetail, error) {
	var detail LotDetail
	if err := c.get("/inventory/lots/"+lotID, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
