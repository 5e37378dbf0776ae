package parksmart

import (
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(&Config{})
	assert.Nil(t, err)
	return c
}

func TestClient_SearchOffers(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/offers/search").
		MatchParam("lat", "12.9716").
		MatchParam("lng", "77.5946").
		Reply(200).
		File("../resources/offers-search.json")

	c := newTestClient(t)
	eta := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	offers, err := c.SearchOffers(12.9716, 77.5946, eta)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(offers))
	assert.Equal(t, "S1", offers[0].SlotID)
	assert.Equal(t, 0.82, offers[0].PFree)
	assert.True(t, offers[0].EV)
	assert.Equal(t, []string{"guaranteed", "smart_hold"}, offers[0].ModeOptions)
}

func TestClient_SearchOffers_SendsAPIKey(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/offers/search").
		MatchHeader("Authorization", "Bearer secret").
		Reply(200).
		File("../resources/offers-search-empty.json")

	c, err := New(&Config{APIKey: "secret"})
	assert.Nil(t, err)
	offers, err := c.SearchOffers(12.9716, 77.5946, time.Now())
	assert.Nil(t, err)
	assert.Empty(t, offers)
}

func TestClient_CreateBooking(t *testing.T) {
	defer gock.Off()
	eta := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	gock.New(DefaultBackend).
		Post("/bookings").
		JSON(map[string]any{
			"slot_id":    "S1",
			"eta":        "2026-09-01T10:30:00Z",
			"mode":       "guaranteed",
			"add_on_ids": []string{},
		}).
		Reply(200).
		File("../resources/booking.json")

	c := newTestClient(t)
	booking, err := c.CreateBooking("S1", eta, ModeGuaranteed, nil)
	assert.Nil(t, err)
	assert.Equal(t, "B1", booking.BookingID)
	assert.Equal(t, "S1", booking.SlotID)
	assert.Equal(t, ModeGuaranteed, booking.Mode)
	assert.Equal(t, 1, len(booking.Backups))
	assert.Equal(t, "S9", booking.Backups[0].SlotID)
}

func TestClient_GetBooking(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/bookings/B1").
		Reply(200).
		File("../resources/booking.json")

	c := newTestClient(t)
	booking, err := c.GetBooking("B1")
	assert.Nil(t, err)
	assert.Equal(t, "B1", booking.BookingID)
	assert.NotNil(t, booking.PFreeAtHold)
	assert.Equal(t, 0.82, *booking.PFreeAtHold)
}

func TestClient_GetLots(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/inventory/lots").
		Reply(200).
		File("../resources/lots.json")

	c := newTestClient(t)
	lots, err := c.GetLots()
	assert.Nil(t, err)
	assert.Equal(t, 2, len(lots))
	assert.NotNil(t, lots[0].Latitude)
	assert.Nil(t, lots[1].Latitude)
}

func TestClient_GetLotDetail(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(200).
		File("../resources/lot-detail.json")

	c := newTestClient(t)
	detail, err := c.GetLotDetail("L1")
	assert.Nil(t, err)
	assert.Equal(t, "MG Road Parking Complex", detail.Name)
	assert.Equal(t, 3, len(detail.Slots))
	assert.True(t, detail.Slots[0].IsEV)
}

func TestClient_GetLiveSessions(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/sessions/live").
		MatchParam("limit", "100").
		MatchParam("recent_hours", "2").
		Reply(200).
		File("../resources/live-sessions.json")

	c := newTestClient(t)
	sessions, err := c.GetLiveSessions(100, 2)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(sessions))
	// naive ISO timestamps parse as UTC
	assert.Equal(t, time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC), sessions[0].StartedAt.Time)
	assert.Nil(t, sessions[0].EndedAt)
	assert.NotNil(t, sessions[1].EndedAt)
}

func TestClient_EndSession(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Post("/sessions/SESS1/end").
		Reply(200).
		File("../resources/session-started.json")

	c := newTestClient(t)
	session, err := c.EndSession("SESS1")
	assert.Nil(t, err)
	assert.Equal(t, "SESS1", session.SessionID)
}

func TestClient_RequestEVPairing(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Post("/services/ev_pair").
		Reply(200).
		File("../resources/ev-pairing.json")

	c := newTestClient(t)
	pairing, err := c.RequestEVPairing("S1", nil, time.Now())
	assert.Nil(t, err)
	assert.Equal(t, "CH-42", pairing.ChargerID)
	assert.Equal(t, 18.5, pairing.EstKWh)
}

func TestClient_APIError(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/bookings/nope").
		Reply(404).
		BodyString("booking not found")

	c := newTestClient(t)
	_, err := c.GetBooking("nope")
	assert.NotNil(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "booking not found", apiErr.Error())
}

func TestClient_APIError_EmptyBody(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultBackend).
		Get("/inventory/lots").
		Reply(500)

	c := newTestClient(t)
	_, err := c.GetLots()
	assert.NotNil(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "request failed (500)", apiErr.Error())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.NotNil(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New(&Config{Backend: "http://example.com/"})
	assert.Nil(t, err)
	assert.Equal(t, "http://example.com", c.Backend())
}
