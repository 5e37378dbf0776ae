package parksmart

type CarbonSession struct {
	SessionID       string   `json:"session_id"`
	GramsCO2        float64  `json:"grams_co2"`
	EfficiencyScore float64  `json:"efficiency_score"`
	Recommendations []string `json:"recommendations"`
}

type CarbonDashboard struct {
	TotalSessions int     `json:"total_sessions"`
	TotalCO2Grams float64 `json:"total_co2_grams"`
	AvgPerSession float64 `json:"avg_per_session"`
	TopReducerTip string  `json:"top_reducer_tip"`
}

func (c *Client) GetCarbonForSession(sessionID string) (*CarbonSession, error) {
	var carbon CarbonSession
	if err := c.get("/carbon/session/"+sessionID, nil, &carbon); err != nil {
		return nil, err
	}
	return &carbon, nil
}

func (c *Client) GetCarbonDashboard() (*CarbonDashboard, error) {
	var dashboard CarbonDashboard
	if err := c.get("/carbon/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
