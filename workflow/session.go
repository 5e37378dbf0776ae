package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parksmart/parkctl/parksmart"
)

var (
	ErrExtendNotEligible = errors.New("extend is only available in the last 15 minutes of the slot period")
	ErrActionPending     = errors.New("action already pending")
)

const (
	// NominalSlotMinutes is the assumed slot period used for extend
	// eligibility until the backend exposes a real one.
	NominalSlotMinutes = 60
	// ExtendWindowMinutes is the remaining-time window in which extending
	// is permitted.
	ExtendWindowMinutes = 15
	// ExtendIncrementMinutes is the fixed extension requested.
	ExtendIncrementMinutes = 15
	// GraceWarningWindow triggers the warning banner when less time than
	// this remains until grace_ends_at. Checked once at load.
	GraceWarningWindow = 10 * time.Minute

	liveSessionLimit       = 100
	liveSessionRecentHours = 2
)

var fallbackRules = []string{
	"Max 4h parking",
	"Grace period: 10 minutes after time limit",
	"Overstay fee applies beyond grace",
	"Validation required on exit",
}

// SessionMonitor tracks the active session: a server-seeded duration that
// ticks locally between polls, cost estimation, and the extend/end/locate
// actions. Each action has its own pending flag so one action's latency
// never blocks another.
type SessionMonitor struct {
	client    *parksmart.Client
	store     PairingStore
	sessionID string

	mu           sync.Mutex
	session      *parksmart.Session
	baseElapsed  time.Duration
	graceWarning bool
	rules        []string
	rulesOnce    sync.Once

	ticks int64 // seconds since Load, advanced by the local ticker

	extendPending atomic.Bool
	endPending    atomic.Bool
	locatePending atomic.Bool

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSessionMonitor(client *parksmart.Client, store PairingStore, sessionID string) *SessionMonitor {
	return &SessionMonitor{
		client:    client,
		store:     store,
		sessionID: sessionID,
		stopChan:  make(chan struct{}),
	}
}

// Load seeds the monitor from the live-sessions listing. The grace warning
// is evaluated once here, not re-checked against the ticking clock.
func (m *SessionMonitor) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sessions, err := m.client.GetLiveSessions(liveSessionLimit, liveSessionRecentHours)
	if err != nil {
		return err
	}
	var found *parksmart.Session
	for i := range sessions {
		if sessions[i].SessionID == m.sessionID {
			found = &sessions[i]
			break
		}
	}
	if found == nil {
		return parksmart.ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = found
	switch {
	case found.DurationMinutes != nil:
		m.baseElapsed = time.Duration(*found.DurationMinutes) * time.Minute
	case found.StartedAt != nil:
		m.baseElapsed = time.Since(found.StartedAt.Time)
		if m.baseElapsed < 0 {
			m.baseElapsed = 0
		}
	}
	if found.GraceEndsAt != nil {
		m.graceWarning = time.Until(found.GraceEndsAt.Time) < GraceWarningWindow
	}
	return nil
}

// StartTicker advances the displayed duration once per second so the UI
// stays smooth between polls. The value is a hybrid of the last server
// reading and local ticks, not continuously re-synced.
func (m *SessionMonitor) StartTicker(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-ticker.C:
				atomic.AddInt64(&m.ticks, 1)
			}
		}
	}()
}

func (m *SessionMonitor) Session() *parksmart.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *SessionMonitor) GraceWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graceWarning
}

// Elapsed is the hybrid duration: server-seeded base plus local ticks.
func (m *SessionMonitor) Elapsed() time.Duration {
	m.mu.Lock()
	base := m.baseElapsed
	m.mu.Unlock()
	return base + time.Duration(atomic.LoadInt64(&m.ticks))*time.Second
}

// CurrentCost estimates the running cost from elapsed time and the dynamic
// rate. Nil when no rate is known; the authoritative charge comes from the
// receipt.
func (m *SessionMonitor) CurrentCost() *float64 {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()
	if session == nil || session.DynamicPrice == nil {
		return nil
	}
	cost := m.Elapsed().Hours() * *session.DynamicPrice
	return &cost
}

// CanExtend reports extend eligibility: with a 60-minute nominal period,
// extending is allowed only once 15 or fewer minutes remain.
func (m *SessionMonitor) CanExtend() bool {
	elapsedMin := int(m.Elapsed().Minutes())
	remaining := NominalSlotMinutes - elapsedMin
	return remaining <= ExtendWindowMinutes
}

// Extend requests the fixed 15-minute extension. Grace and duration are
// not mutated locally; the next poll reflects them.
func (m *SessionMonitor) Extend(ctx context.Context) error {
	if !m.CanExtend() {
		return ErrExtendNotEligible
	}
	if !m.extendPending.CompareAndSwap(false, true) {
		return ErrActionPending
	}
	defer m.extendPending.Store(false)
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.client.ExtendSession(m.sessionID, ExtendIncrementMinutes)
	return err
}

// End closes the session and always hands off to the receipt: a failed end
// call is logged and swallowed so the user is never stuck in the session
// screen.
func (m *SessionMonitor) End(ctx context.Context) string {
	if !m.endPending.CompareAndSwap(false, true) {
		return m.sessionID
	}
	defer m.endPending.Store(false)
	if ctx.Err() == nil {
		if _, err := m.client.EndSession(m.sessionID); err != nil {
			log.Warnf("end session %s failed, proceeding to receipt: %v", m.sessionID, err)
		}
	}
	return m.sessionID
}

// Locate fetches walk-back directions to the bay. pos may be nil; the
// lot's coordinates (or the fallback origin) then stand in for the user's
// position, matching the placeholder the original flow sends.
func (m *SessionMonitor) Locate(ctx context.Context, pos *Position) (*parksmart.NavPath, error) {
	if !m.locatePending.CompareAndSwap(false, true) {
		return nil, ErrActionPending
	}
	defer m.locatePending.Store(false)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	lat, lng := FallbackLat, FallbackLng
	bay := ""
	if session != nil {
		if session.LotLat != nil {
			lat = *session.LotLat
		}
		if session.LotLng != nil {
			lng = *session.LotLng
		}
		bay = session.BayLabel
	}
	if pos != nil {
		lat, lng = pos.Lat, pos.Lng
	}
	return m.client.LocateCar(m.sessionID, lat, lng, bay)
}

// Rules returns the lot's amenities as a rules substitute, fetched lazily
// on first call, with a fixed fallback when the lot detail is unavailable.
func (m *SessionMonitor) Rules(ctx context.Context) []string {
	m.rulesOnce.Do(func() {
		rules := fallbackRules
		m.mu.Lock()
		session := m.session
		m.mu.Unlock()
		if session != nil && session.LotID != "" && ctx.Err() == nil {
			if detail, err := m.client.GetLotDetail(session.LotID); err == nil && len(detail.Amenities) > 0 {
				rules = detail.Amenities
			} else if err != nil {
				log.Debugf("lot detail for rules unavailable: %v", err)
			}
		}
		m.mu.Lock()
		m.rules = rules
		m.mu.Unlock()
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules
}

// Pairing surfaces the session-keyed EV pairing, if one was carried over.
func (m *SessionMonitor) Pairing() *parksmart.EVPairing {
	pairing, err := m.store.SessionPairing(m.sessionID)
	if err != nil {
		return nil
	}
	return pairing
}

func (m *SessionMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}
