package parksmart

type Vehicle struct {
	ID                 string `json:"id"`
	Plate              string `json:"plate"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Type               string `json:"type"`
	IsEV               bool   `json:"isEV"`
	NeedsAccessibility bool   `json:"needsAccessibility"`
}

func (c *Client) GetVehicles() ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := c.get("/vehicles/", nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *Client) AddVehicle(v Vehicle) (*Vehicle, error) {
	v.ID = ""
	var created Vehicle
	if err := c.post("/vehicles/", v, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteVehicle(id string) error {
	var res struct {
		OK bool `json:"ok"`
	}
	return c.delete("/vehicles/"+id, &res)
}
