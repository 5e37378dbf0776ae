package parksmart

type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

func (c *Client) GetProfile() (*Profile, error) {
	var profile Profile
	if err := c.get("/profile/", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(partial map[string]any) (*Profile, error) {
	var profile Profile
	if err := c.put("/profile/", partial, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
