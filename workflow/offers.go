package workflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/parksmart/parkctl/parksmart"
)

var log = logrus.StandardLogger()

const (
	// DefaultRefreshInterval is how often the searcher re-runs while polling.
	DefaultRefreshInterval = 5 * time.Minute
	// DefaultETALead is the arrival horizon used when none is given. It is
	// fixed once per searcher so re-renders never shift the search key.
	DefaultETALead = 30 * time.Minute

	fallbackLotLimit    = 5
	fallbackSlotsPerLot = 2
)

type SearchParams struct {
	Lat   *float64
	Lng   *float64
	ETA   *time.Time
	LotID string
}

// OfferSearcher fetches and caches predictive offers. A single searcher
// serves a workflow instance; its ETA is pinned at construction time.
type OfferSearcher struct {
	client *parksmart.Client
	cache  Cache

	lat   float64
	lng   float64
	eta   time.Time
	lotID string

	inFlight atomic.Bool
	visible  atomic.Bool

	mu      sync.Mutex
	lastErr error

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewOfferSearcher(client *parksmart.Client, cache Cache, params SearchParams) *OfferSearcher {
	lat, lng := FallbackLat, FallbackLng
	if params.Lat != nil {
		lat = *params.Lat
	}
	if params.Lng != nil {
		lng = *params.Lng
	}
	eta := time.Now().Add(DefaultETALead)
	if params.ETA != nil {
		eta = *params.ETA
	}
	s := &OfferSearcher{
		client:   client,
		cache:    cache,
		lat:      lat,
		lng:      lng,
		eta:      eta,
		lotID:    params.LotID,
		stopChan: make(chan struct{}),
	}
	s.visible.Store(true)
	return s
}

// SetVisible toggles the visibility gate. While hidden, poll ticks are
// skipped; in-flight requests are not cancelled.
func (s *OfferSearcher) SetVisible(visible bool) {
	s.visible.Store(visible)
}

// Offers returns the cached offers, possibly stale. ok reports whether the
// cache holds a usable entry.
func (s *OfferSearcher) Offers() (offers []Offer, lastUpdated time.Time, ok bool) {
	return s.cache.Get()
}

// LastError returns the most recent fetch error. Stale offers stay cached
// across failures so callers can degrade gracefully.
func (s *OfferSearcher) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Fetch runs one search. It never overlaps with itself: a call while a
// previous fetch is in flight returns the cached offers unchanged.
func (s *OfferSearcher) Fetch(ctx context.Context) ([]Offer, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		offers, _, _ := s.cache.Get()
		return offers, nil
	}
	defer s.inFlight.Store(false)

	offers, err := s.fetchOnce(ctx)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.cache.Set(offers)
	return offers, nil
}

func (s *OfferSearcher) fetchOnce(ctx context.Context) ([]Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.client.SearchOffers(s.lat, s.lng, s.eta)
	if err != nil {
		return nil, fmt.Errorf("searching offers: %w", err)
	}
	lots, err := s.client.GetLots()
	if err != nil {
		// Lots only enrich coordinates and feed the fallback path.
		log.Debugf("lot listing unavailable: %v", err)
		lots = nil
	}

	mapped := make([]Offer, 0, len(raw))
	for _, o := range raw {
		mapped = append(mapped, MapOffer(o, lots))
	}
	if len(mapped) > 0 {
		return mapped, nil
	}
	return s.fallbackOffers(lots), nil
}

// fallbackOffers synthesizes offers from the inventory when the predictive
// search comes back empty. Slots from lot details are preferred so a later
// booking references a real slot id; whole lots are the degraded last
// resort.
func (s *OfferSearcher) fallbackOffers(lots []parksmart.Lot) []Offer {
	candidates := lots
	if s.lotID != "" {
		candidates = nil
		for _, l := range lots {
			if l.ID == s.lotID {
				candidates = append(candidates, l)
			}
		}
	}
	if len(candidates) > fallbackLotLimit {
		candidates = candidates[:fallbackLotLimit]
	}

	var offers []Offer
	for _, lot := range candidates {
		detail, err := s.client.GetLotDetail(lot.ID)
		if err != nil {
			log.Debugf("lot detail for %s unavailable: %v", lot.ID, err)
			continue
		}
		n := 0
		for _, slot := range detail.Slots {
			if n >= fallbackSlotsPerLot {
				break
			}
			offers = append(offers, offerFromSlot(slot.SlotID, lot, s.lat, s.lng))
			n++
		}
	}
	if len(offers) > 0 {
		return offers
	}

	log.Warnf("no slot details available, falling back to lot-level offers")
	for _, lot := range candidates {
		offers = append(offers, offerFromLot(lot, s.lat, s.lng))
	}
	return offers
}

// Poll re-runs the search on the given interval until ctx is done or Stop
// is called. Ticks while hidden are skipped, not rescheduled.
func (s *OfferSearcher) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// tick runs one poll iteration, honoring the visibility gate. It reports
// whether a fetch was issued.
func (s *OfferSearcher) tick(ctx context.Context) bool {
	if !s.visible.Load() {
		log.Debugf("poll tick skipped: not visible")
		return false
	}
	if _, err := s.Fetch(ctx); err != nil {
		log.Warnf("offer refresh failed: %v", err)
	}
	return true
}

func (s *OfferSearcher) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
