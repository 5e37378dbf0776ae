package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	geo "github.com/kellydunn/golang-geo"

	"github.com/parksmart/parkctl/parksmart"
)

// Position is a device fix from the position source.
type Position struct {
	Lat float64
	Lng float64
}

const (
	// Assumed urban driving speed for deriving an arrival estimate from the
	// remaining great-circle distance.
	drivingSpeedKmh = 24.0

	// Confidence-drop detection: a held slot whose p_free falls below
	// DropThreshold on ConsecutiveLowReadings successive polls raises a swap
	// proposal; a reading above ClearThreshold resets the streak.
	DefaultDropThreshold   = 0.45
	DefaultClearThreshold  = 0.55
	ConsecutiveLowReadings = 2
)

// SwapProposal offers the user a move to a backup slot when availability
// confidence on the held slot degrades.
type SwapProposal struct {
	FromSlotID   string
	ToSlotID     string
	Confidence   *float64
	TimeDeltaMin int
}

// EnRouteTracker follows the drive to the held slot: live ETA from the
// position stream, a confidence watch over the held slot, and on-demand
// indoor guidance for the last stretch.
type EnRouteTracker struct {
	client *parksmart.Client
	store  PairingStore

	bookingID string

	DropThreshold  float64
	ClearThreshold float64

	mu           sync.Mutex
	booking      *parksmart.Booking
	pairing      *parksmart.EVPairing
	targetSlotID string
	target       *Location
	lastPos      *Position
	etaText      string
	indoorPath   *parksmart.NavPath
	lowStreak    int
	proposal     *SwapProposal

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewEnRouteTracker(client *parksmart.Client, store PairingStore, bookingID string) *EnRouteTracker {
	return &EnRouteTracker{
		client:         client,
		store:          store,
		bookingID:      bookingID,
		DropThreshold:  DefaultDropThreshold,
		ClearThreshold: DefaultClearThreshold,
		stopChan:       make(chan struct{}),
	}
}

// Load reads the booking back by id to resolve the held slot, and restores
// any pairing stored at confirmation time. Pairing absence is not an error.
func (t *EnRouteTracker) Load(ctx context.Context) error {
	if t.bookingID == "" {
		return fmt.Errorf("missing booking id")
	}
	booking, err := t.client.GetBooking(t.bookingID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.booking = booking
	t.targetSlotID = booking.SlotID
	t.mu.Unlock()

	pairing, err := t.store.BookingPairing(t.bookingID)
	if err != nil {
		log.Debugf("no stored pairing for booking %s: %v", t.bookingID, err)
		return nil
	}
	t.mu.Lock()
	t.pairing = pairing
	t.mu.Unlock()
	return nil
}

// SetTarget pins the destination coordinates (from the offer's location).
func (t *EnRouteTracker) SetTarget(loc Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = &loc
}

func (t *EnRouteTracker) Booking() *parksmart.Booking {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.booking
}

func (t *EnRouteTracker) Pairing() *parksmart.EVPairing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pairing
}

func (t *EnRouteTracker) TargetSlotID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.targetSlotID
}

// ETAText is the display estimate, "Calculating..." until a fix and a
// target exist. Route derivation failures leave the previous text alone.
func (t *EnRouteTracker) ETAText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.etaText == "" {
		return "Calculating..."
	}
	return t.etaText
}

// Track consumes the position stream until it closes or ctx is done. The
// caller owns the stream's teardown; stopping the tracker does not cancel
// an upstream watch.
func (t *EnRouteTracker) Track(ctx context.Context, positions <-chan Position) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stopChan:
				return
			case pos, ok := <-positions:
				if !ok {
					return
				}
				t.UpdatePosition(pos)
			}
		}
	}()
}

// UpdatePosition recomputes the ETA from a new fix.
func (t *EnRouteTracker) UpdatePosition(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastPos = &pos
	if t.target == nil {
		return
	}
	p1 := geo.NewPoint(pos.Lat, pos.Lng)
	p2 := geo.NewPoint(t.target.Lat, t.target.Lng)
	distanceKm := p1.GreatCircleDistance(p2)
	minutes := int(distanceKm / drivingSpeedKmh * 60)
	if minutes < 1 {
		minutes = 1
	}
	t.etaText = fmt.Sprintf("%d min • %.1f km", minutes, distanceKm)
}

// WatchConfidence polls the predictive search for the held slot and raises
// a swap proposal when its confidence degrades past the threshold with
// hysteresis.
func (t *EnRouteTracker) WatchConfidence(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stopChan:
				return
			case <-ticker.C:
				t.checkConfidence(ctx)
			}
		}
	}()
}

func (t *EnRouteTracker) checkConfidence(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	t.mu.Lock()
	slotID := t.targetSlotID
	target := t.target
	t.mu.Unlock()
	if slotID == "" {
		return
	}
	lat, lng := FallbackLat, FallbackLng
	if target != nil {
		lat, lng = target.Lat, target.Lng
	}
	offers, err := t.client.SearchOffers(lat, lng, time.Now().Add(15*time.Minute))
	if err != nil {
		log.Debugf("confidence poll failed: %v", err)
		return
	}
	for _, o := range offers {
		if o.SlotID == slotID {
			t.observeConfidence(o.PFree)
			return
		}
	}
}

// observeConfidence applies the threshold/hysteresis rules to one reading.
func (t *EnRouteTracker) observeConfidence(pFree float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pFree > t.ClearThreshold {
		t.lowStreak = 0
		return
	}
	if pFree >= t.DropThreshold {
		return
	}
	t.lowStreak++
	if t.lowStreak < ConsecutiveLowReadings || t.proposal != nil {
		return
	}
	if t.booking == nil || len(t.booking.Backups) == 0 {
		log.Warnf("confidence dropped on %s but no backup slot is held", t.targetSlotID)
		return
	}
	backup := t.booking.Backups[0]
	t.proposal = &SwapProposal{
		FromSlotID:   t.targetSlotID,
		ToSlotID:     backup.SlotID,
		Confidence:   backup.Confidence,
		TimeDeltaMin: 2,
	}
	log.Infof("confidence dropped on %s, proposing swap to %s", t.targetSlotID, backup.SlotID)
}

// Proposal returns the pending swap proposal, if any.
func (t *EnRouteTracker) Proposal() *SwapProposal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.proposal
}

// AcceptSwap re-targets routing and guidance to the proposed backup slot
// and dismisses the banner. The authoritative re-bind of the hold is the
// backend's smart-hold responsibility.
func (t *EnRouteTracker) AcceptSwap() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.proposal == nil {
		return
	}
	t.targetSlotID = t.proposal.ToSlotID
	t.proposal = nil
	t.lowStreak = 0
	t.etaText = ""
	t.indoorPath = nil
}

// DeclineSwap keeps the original target and clears the streak.
func (t *EnRouteTracker) DeclineSwap() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.proposal = nil
	t.lowStreak = 0
}

// GuideToBay fetches the last-200m indoor path. It requires a live fix; a
// fetch failure clears any previously shown path.
func (t *EnRouteTracker) GuideToBay(ctx context.Context) (*parksmart.NavPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	pos := t.lastPos
	slotID := t.targetSlotID
	t.mu.Unlock()
	if pos == nil {
		return nil, fmt.Errorf("no live position available")
	}
	if slotID == "" {
		return nil, fmt.Errorf("no target slot resolved")
	}
	path, err := t.client.GetIndoorPath(pos.Lat, pos.Lng, slotID, nil, nil)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.indoorPath = nil
		return nil, err
	}
	t.indoorPath = path
	return path, nil
}

func (t *EnRouteTracker) IndoorPath() *parksmart.NavPath {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indoorPath
}

// Stop tears the tracker's goroutines down.
func (t *EnRouteTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}
