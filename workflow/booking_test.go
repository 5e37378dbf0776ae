package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/parksmart/parkctl/parksmart"
)

// memPairingStore is an in-memory PairingStore for tests.
type memPairingStore struct {
	byBooking map[string]parksmart.EVPairing
	bySession map[string]parksmart.EVPairing
}

func newMemPairingStore() *memPairingStore {
	return &memPairingStore{
		byBooking: map[string]parksmart.EVPairing{},
		bySession: map[string]parksmart.EVPairing{},
	}
}

var errNoPairing = errors.New("no pairing stored")

func (s *memPairingStore) SaveBookingPairing(bookingID string, p parksmart.EVPairing) error {
	s.byBooking[bookingID] = p
	return nil
}

func (s *memPairingStore) BookingPairing(bookingID string) (*parksmart.EVPairing, error) {
	p, ok := s.byBooking[bookingID]
	if !ok {
		return nil, errNoPairing
	}
	return &p, nil
}

func (s *memPairingStore) SaveSessionPairing(sessionID string, p parksmart.EVPairing) error {
	s.bySession[sessionID] = p
	return nil
}

func (s *memPairingStore) SessionPairing(sessionID string) (*parksmart.EVPairing, error) {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil, errNoPairing
	}
	return &p, nil
}

func TestBookingFlow_EVPrecondition(t *testing.T) {
	flow := NewBookingFlow(newTestClient(t), newMemPairingStore(), Offer{ID: "S2"}, parksmart.ModeGuaranteed)
	flow.Vehicle = &parksmart.Vehicle{ID: "V1", IsEV: true}

	assert.ErrorIs(t, flow.CanConfirm(), ErrEVIncompatible)
	_, err := flow.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrEVIncompatible)

	// an EV-capable offer clears the block
	flow.Offer.Features.EV = true
	assert.Nil(t, flow.CanConfirm())
}

func TestBookingFlow_PreAuthEstimate(t *testing.T) {
	flow := NewBookingFlow(newTestClient(t), newMemPairingStore(), Offer{ID: "S1", Price: 60}, parksmart.ModeGuaranteed)
	assert.Equal(t, 120.0, flow.PreAuthEstimate())

	flow.SelectedAddOns = []parksmart.AddOn{{ID: "car-wash", Price: 199}, {ID: "ev-boost", Price: 149}}
	assert.Equal(t, 468.0, flow.PreAuthEstimate())
}

func TestBookingFlow_Confirm(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/bookings").
		Reply(200).
		File("../resources/booking.json")

	store := newMemPairingStore()
	offer := Offer{ID: "S1", Price: 60}
	flow := NewBookingFlow(newTestClient(t), store, offer, parksmart.ModeGuaranteed)
	flow.HandoffDelay = 0

	var messages []string
	flow.Notify = func(msg string) { messages = append(messages, msg) }

	result, err := flow.Confirm(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "B1", result.Booking.BookingID)
	assert.Equal(t, PairingIdle, result.PairingStatus)
	assert.Equal(t, []string{"Booking confirmed!"}, messages)
}

func TestBookingFlow_Confirm_EVPairing(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/bookings").
		Reply(200).
		File("../resources/booking.json")
	gock.New(parksmart.DefaultBackend).
		Post("/services/ev_pair").
		Reply(200).
		File("../resources/ev-pairing.json")

	store := newMemPairingStore()
	offer := Offer{ID: "S1", Price: 60, Features: Features{EV: true}}
	flow := NewBookingFlow(newTestClient(t), store, offer, parksmart.ModeGuaranteed)
	flow.HandoffDelay = 0
	flow.Vehicle = &parksmart.Vehicle{ID: "V1", IsEV: true}

	result, err := flow.Confirm(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, PairingDone, result.PairingStatus)
	assert.Equal(t, "CH-42", result.Pairing.ChargerID)

	stored, err := store.BookingPairing("B1")
	assert.Nil(t, err)
	assert.Equal(t, "CH-42", stored.ChargerID)
}

func TestBookingFlow_Confirm_PairingFailureNotFatal(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/bookings").
		Reply(200).
		File("../resources/booking.json")
	gock.New(parksmart.DefaultBackend).
		Post("/services/ev_pair").
		Reply(503).
		BodyString("no chargers available")

	store := newMemPairingStore()
	offer := Offer{ID: "S1", Price: 60, Features: Features{EV: true}}
	flow := NewBookingFlow(newTestClient(t), store, offer, parksmart.ModeGuaranteed)
	flow.HandoffDelay = 0
	flow.Vehicle = &parksmart.Vehicle{ID: "V1", IsEV: true}

	result, err := flow.Confirm(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "B1", result.Booking.BookingID)
	assert.Equal(t, PairingError, result.PairingStatus)
	assert.NotNil(t, result.PairingErr)

	_, err = store.BookingPairing("B1")
	assert.NotNil(t, err)
}

func TestBookingFlow_Confirm_CreateFailure(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/bookings").
		Reply(409).
		BodyString("slot already held")

	flow := NewBookingFlow(newTestClient(t), newMemPairingStore(), Offer{ID: "S1"}, parksmart.ModeGuaranteed)
	flow.HandoffDelay = 0

	var messages []string
	flow.Notify = func(msg string) { messages = append(messages, msg) }

	_, err := flow.Confirm(context.Background())
	assert.NotNil(t, err)
	assert.Equal(t, 1, len(messages))
	assert.Contains(t, messages[0], "slot already held")
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, parksmart.ModeSmartHold, ParseMode("smart-hold"))
	assert.Equal(t, parksmart.ModeGuaranteed, ParseMode("guaranteed"))
	assert.Equal(t, parksmart.ModeGuaranteed, ParseMode("anything-else"))
}
