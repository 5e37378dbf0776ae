// Package workflow implements the booking lifecycle: offer search, booking
// confirmation, en-route tracking, arrival validation, the active session
// and receipt reconciliation. All authoritative state lives in the backend;
// this package owns only the ephemeral workflow state between stages.
package workflow

import (
	"math"

	"github.com/parksmart/parkctl/parksmart"
)

type Trend string

const (
	TrendStable  Trend = "stable"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

type Availability struct {
	Percentage int
	Confidence int
	Trend      Trend
}

type Features struct {
	EV         bool
	Accessible bool
	Covered    bool
	Security   bool
}

type SLA struct {
	HasBackup      bool
	GuaranteedSpot bool
}

type Nudge struct {
	TimeAdjustmentMin  int
	SuccessIncreasePct int
	PriceReduction     float64
}

type Location struct {
	Lat float64
	Lng float64
}

// Offer is the bookable view-model built from a search response. ID is
// always a real slot id except in the degraded lot-as-offer fallback.
type Offer struct {
	ID             string
	Name           string
	Address        string
	DistanceKm     float64
	Price          float64
	Currency       string
	Availability   Availability
	Features       Features
	SLA            SLA
	Nudge          *Nudge
	Location       Location
	OperatingHours string
	EntranceInfo   string
	Rules          []string
}

const (
	defaultCurrency = "₹"
	// Fallback origin when neither device position nor lot coordinates exist.
	FallbackLat = 12.9716
	FallbackLng = 77.5946
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// MapOffer turns a raw predictive result into an Offer. The percentage is
// clamped to [0,100] and the confidence band to [1,10]. The first lot (if
// any) supplies display coordinates, matching the search origin cluster.
func MapOffer(o parksmart.Offer, lots []parksmart.Lot) Offer {
	pct := clampInt(int(math.Round(o.PFree*100)), 0, 100)
	confidence := clampInt(int(math.Round(o.PFree*10)), 1, 10)

	name := o.ClusterID
	if name == "" {
		name = "Lot " + o.SlotID
	}
	address := "Near city center"
	if o.ClusterID != "" {
		address = "Near " + o.ClusterID
	}

	loc := Location{Lat: FallbackLat, Lng: FallbackLng}
	if len(lots) > 0 {
		if lots[0].Latitude != nil {
			loc.Lat = *lots[0].Latitude
		}
		if lots[0].Longitude != nil {
			loc.Lng = *lots[0].Longitude
		}
	}

	hasBackup := true
	guaranteed := true
	if len(o.ModeOptions) > 0 {
		hasBackup = contains(o.ModeOptions, string(parksmart.ModeSmartHold))
		guaranteed = contains(o.ModeOptions, string(parksmart.ModeGuaranteed))
	}

	return Offer{
		ID:         o.SlotID,
		Name:       name,
		Address:    address,
		DistanceKm: math.Round(float64(o.DistanceM)/1000*10) / 10,
		Price:      math.Round(o.Price),
		Currency:   defaultCurrency,
		Availability: Availability{
			Percentage: pct,
			Confidence: confidence,
			Trend:      TrendStable,
		},
		Features: Features{
			EV:         o.EV,
			Accessible: o.Accessible,
			Covered:    true,
			Security:   true,
		},
		SLA: SLA{
			HasBackup:      hasBackup,
			GuaranteedSpot: guaranteed,
		},
		Location:       loc,
		OperatingHours: "24/7",
		EntranceInfo:   "Use main entrance; follow signs",
		Rules: []string{
			"Follow on-site instructions",
			"Max height 2.1m",
			"EV charging subject to availability",
		},
	}
}

func lotAvailabilityPct(lot parksmart.Lot) int {
	if lot.Capacity == 0 {
		return 50
	}
	free := 1 - float64(lot.Occupancy)/math.Max(1, float64(lot.Capacity))
	return clampInt(int(math.Round(free*100)), 0, 100)
}

func lotPrice(lot parksmart.Lot) float64 {
	if lot.Capacity == 0 {
		return 50
	}
	return math.Round(float64(lot.Occupancy) / math.Max(1, float64(lot.Capacity)) * 100)
}

func lotLocation(lot parksmart.Lot, fallbackLat, fallbackLng float64) Location {
	loc := Location{Lat: fallbackLat, Lng: fallbackLng}
	if lot.Latitude != nil {
		loc.Lat = *lot.Latitude
	}
	if lot.Longitude != nil {
		loc.Lng = *lot.Longitude
	}
	return loc
}

// offerFromSlot synthesizes an offer for a real slot id taken from a lot's
// detail listing, so a later booking call references a bookable slot.
func offerFromSlot(slotID string, lot parksmart.Lot, fallbackLat, fallbackLng float64) Offer {
	return Offer{
		ID:         slotID,
		Name:       lot.Name,
		Address:    lot.Name,
		DistanceKm: 0.5,
		Price:      lotPrice(lot),
		Currency:   defaultCurrency,
		Availability: Availability{
			Percentage: lotAvailabilityPct(lot),
			Confidence: 6,
			Trend:      TrendStable,
		},
		Features:       Features{EV: true, Accessible: true, Covered: true, Security: true},
		SLA:            SLA{HasBackup: true, GuaranteedSpot: true},
		Location:       lotLocation(lot, fallbackLat, fallbackLng),
		OperatingHours: "24/7",
		EntranceInfo:   "Use main entrance",
		Rules:          []string{"Max 4h parking", "Validation required"},
	}
}

// offerFromLot is the degraded last resort: the lot id stands in for a slot
// id, so a booking against it may fail.
func offerFromLot(lot parksmart.Lot, fallbackLat, fallbackLng float64) Offer {
	o := offerFromSlot(lot.ID, lot, fallbackLat, fallbackLng)
	o.Availability.Confidence = 5
	return o
}

// FindOffer returns the offer with the given id, or nil.
func FindOffer(offers []Offer, id string) *Offer {
	if id == "" {
		return nil
	}
	for i := range offers {
		if offers[i].ID == id {
			return &offers[i]
		}
	}
	return nil
}
