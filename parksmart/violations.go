package parksmart

type Violation struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	Kind              string    `json:"kind"`
	Severity          string    `json:"severity"`
	DetectedAt        Timestamp `json:"detected_at"`
	RecommendedAction string    `json:"recommended_action"`
}

type ViolationStats struct {
	Active   int `json:"active"`
	Today    int `json:"today"`
	Overstay int `json:"overstay"`
	Misuse   int `json:"misuse"`
}

func (c *Client) GetActiveViolations() ([]Violation, error) {
	var violations []Violation
	if err := c.get("/violations/active", nil, &violations); err != nil {
		return nil, err
	}
	return violations, nil
}

func (c *Client) GetViolationStats() (*ViolationStats, error) {
	var stats ViolationStats
	if err := c.get("/violations/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
