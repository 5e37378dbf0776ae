package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/parksmart/parkctl/parksmart"
)

func TestSessionMonitor_Load(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		MatchParam("limit", "100").
		MatchParam("recent_hours", "2").
		Reply(200).
		File("../resources/live-sessions.json")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.Load(context.Background()))
	assert.Equal(t, "SESS1", m.Session().SessionID)
	// the server-reported duration seeds the local clock
	assert.Equal(t, 46*time.Minute, m.Elapsed())
}

func TestSessionMonitor_Load_NotFound(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		Reply(200).
		File("../resources/live-sessions.json")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS999")
	assert.ErrorIs(t, m.Load(context.Background()), parksmart.ErrSessionNotFound)
}

func TestSessionMonitor_ExtendEligibility(t *testing.T) {
	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")

	// 44 elapsed minutes leave 16 remaining: not yet
	m.baseElapsed = 44 * time.Minute
	assert.False(t, m.CanExtend())
	assert.ErrorIs(t, m.Extend(context.Background()), ErrExtendNotEligible)

	// 46 elapsed minutes leave 14 remaining: eligible
	m.baseElapsed = 46 * time.Minute
	assert.True(t, m.CanExtend())
}

func TestSessionMonitor_Extend(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/sessions/SESS1/extend").
		JSON(map[string]any{"minutes": 15}).
		Reply(200).
		File("../resources/session-started.json")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	m.baseElapsed = 50 * time.Minute
	assert.Nil(t, m.Extend(context.Background()))
}

func TestSessionMonitor_CurrentCost(t *testing.T) {
	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.CurrentCost())

	rate := 60.0
	m.session = &parksmart.Session{DynamicPrice: &rate}
	m.baseElapsed = 30 * time.Minute
	cost := m.CurrentCost()
	assert.NotNil(t, cost)
	assert.InDelta(t, 30.0, *cost, 0.01)
}

func TestSessionMonitor_End_AlwaysHandsOff(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/sessions/SESS1/end").
		Reply(500).
		BodyString("backend exploded")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	// a failed end call still hands the session id to the receipt stage
	assert.Equal(t, "SESS1", m.End(context.Background()))
}

func TestSessionMonitor_GraceWarning(t *testing.T) {
	defer gock.Off()
	soon := time.Now().Add(5 * time.Minute).UTC().Format(time.RFC3339)
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		Reply(200).
		BodyString(`[{"session_id":"SESS1","booking_id":"B1","grace_ends_at":"` + soon + `","slot_id":"S1"}]`)

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.Load(context.Background()))
	assert.True(t, m.GraceWarning())
}

func TestSessionMonitor_Rules(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		Reply(200).
		File("../resources/live-sessions.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(200).
		File("../resources/lot-detail.json")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.Load(context.Background()))

	rules := m.Rules(context.Background())
	assert.Equal(t, []string{"EV charging on P2", "Height limit 2.1m", "CCTV monitored"}, rules)

	// fetched once, then served from memory
	assert.Equal(t, rules, m.Rules(context.Background()))
}

func TestSessionMonitor_Rules_Fallback(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		Reply(200).
		File("../resources/live-sessions.json")
	gock.New(parksmart.DefaultBackend).
		Get("/inventory/lots/L1").
		Reply(500)

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.Load(context.Background()))
	assert.Equal(t, fallbackRules, m.Rules(context.Background()))
}

func TestSessionMonitor_Locate(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Get("/sessions/live").
		Reply(200).
		File("../resources/live-sessions.json")
	gock.New(parksmart.DefaultBackend).
		Post("/navigation/locate").
		JSON(map[string]any{
			"session_id":  "SESS1",
			"current_lat": 12.9752,
			"current_lng": 77.6057,
			"bay_label":   "P2-A1",
		}).
		Reply(200).
		File("../resources/nav-path.json")

	m := NewSessionMonitor(newTestClient(t), newMemPairingStore(), "SESS1")
	assert.Nil(t, m.Load(context.Background()))

	// without a fix the lot coordinates stand in for the user position
	path, err := m.Locate(context.Background(), nil)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(path.Steps))
}

func TestSessionMonitor_Pairing(t *testing.T) {
	store := newMemPairingStore()
	store.bySession["SESS1"] = parksmart.EVPairing{ChargerID: "CH-42"}

	m := NewSessionMonitor(newTestClient(t), store, "SESS1")
	assert.Equal(t, "CH-42", m.Pairing().ChargerID)

	other := NewSessionMonitor(newTestClient(t), store, "SESS2")
	assert.Nil(t, other.Pairing())
}
