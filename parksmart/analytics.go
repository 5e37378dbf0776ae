package parksmart

import (
	"net/url"
	"strconv"
)

type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type OccupancyPoint struct {
	Date      string  `json:"date"`
	Occupancy float64 `json:"occupancy"`
}

type PaymentsSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	PaidCount     int     `json:"paid_count"`
	PendingAmount float64 `json:"pending_amount"`
	FailedCount   int     `json:"failed_count"`
}

func (c *Client) GetDailyRevenue(days int) ([]RevenuePoint, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))
	var points []RevenuePoint
	if err := c.get("/analytics/revenue/daily", query, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) GetDailyOccupancy(days int) ([]OccupancyPoint, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))
	var points []OccupancyPoint
	if err := c.get("/analytics/occupancy/daily", query, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) GetPaymentsSummary() (*PaymentsSummary, error) {
	var summary PaymentsSummary
	if err := c.get("/analytics/payments/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
