package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parksmart/parkctl/parksmart"
)

// ErrEVIncompatible blocks confirmation when the active vehicle is an EV
// but the offer is not EV-capable. This is a hard precondition, not a
// warning: the doomed request is never issued.
var ErrEVIncompatible = errors.New("active vehicle is an EV but the offer is not EV-compatible")

// PairingStore persists EV pairing results between workflow stages, keyed
// by booking id (and later by session id). Once stored, a pairing is never
// re-fetched from the backend.
type PairingStore interface {
	SaveBookingPairing(bookingID string, p parksmart.EVPairing) error
	BookingPairing(bookingID string) (*parksmart.EVPairing, error)
	SaveSessionPairing(sessionID string, p parksmart.EVPairing) error
	SessionPairing(sessionID string) (*parksmart.EVPairing, error)
}

type PairingStatus string

const (
	PairingIdle    PairingStatus = "idle"
	PairingPending PairingStatus = "pending"
	PairingDone    PairingStatus = "done"
	PairingError   PairingStatus = "error"
)

// DefaultHandoffDelay lets the confirmation render before the flow moves to
// en-route tracking.
const DefaultHandoffDelay = 1 * time.Second

// ParseMode maps the route-parameter spelling to the wire mode.
func ParseMode(routeParam string) parksmart.BookingMode {
	if routeParam == "smart-hold" {
		return parksmart.ModeSmartHold
	}
	return parksmart.ModeGuaranteed
}

// BookingFlow turns a selected offer into a confirmed booking. The steps
// are strictly sequential: create, notify, pair (EV only, non-fatal),
// persist the pairing, then hand off after a short delay.
type BookingFlow struct {
	client *parksmart.Client
	store  PairingStore

	Offer          Offer
	Mode           parksmart.BookingMode
	Vehicle        *parksmart.Vehicle
	SelectedAddOns []parksmart.AddOn

	HandoffDelay time.Duration

	// Notify surfaces user-facing confirmation/error messages. Optional.
	Notify func(msg string)
}

type ConfirmResult struct {
	Booking       *parksmart.Booking
	Pairing       *parksmart.EVPairing
	PairingStatus PairingStatus
	PairingErr    error
}

func NewBookingFlow(client *parksmart.Client, store PairingStore, offer Offer, mode parksmart.BookingMode) *BookingFlow {
	return &BookingFlow{
		client:       client,
		store:        store,
		Offer:        offer,
		Mode:         mode,
		HandoffDelay: DefaultHandoffDelay,
	}
}

// CanConfirm reports whether the confirm action is allowed.
func (f *BookingFlow) CanConfirm() error {
	if f.Vehicle != nil && f.Vehicle.IsEV && !f.Offer.Features.EV {
		return ErrEVIncompatible
	}
	return nil
}

// PreAuthEstimate is the displayed hold amount: a fixed two-hour estimate
// at the base rate plus selected add-ons. The actual charge is always
// reconciled later from the session, never assumed equal to this.
func (f *BookingFlow) PreAuthEstimate() float64 {
	total := f.Offer.Price * 2
	for _, a := range f.SelectedAddOns {
		total += a.Price
	}
	return total
}

func (f *BookingFlow) notify(msg string) {
	if f.Notify != nil {
		f.Notify(msg)
	}
}

// Confirm executes the confirmation sequence. A booking-create failure
// leaves the flow where it was; a pairing failure after a successful create
// does not roll the booking back. The method returns only after the
// hand-off delay has elapsed (or ctx is cancelled).
func (f *BookingFlow) Confirm(ctx context.Context) (*ConfirmResult, error) {
	if err := f.CanConfirm(); err != nil {
		return nil, err
	}

	eta := time.Now().Add(DefaultETALead)
	addOnIDs := make([]string, 0, len(f.SelectedAddOns))
	for _, a := range f.SelectedAddOns {
		addOnIDs = append(addOnIDs, a.ID)
	}

	booking, err := f.client.CreateBooking(f.Offer.ID, eta, f.Mode, addOnIDs)
	if err != nil {
		f.notify(fmt.Sprintf("Failed to create booking: %v", err))
		return nil, err
	}
	f.notify("Booking confirmed!")

	result := &ConfirmResult{
		Booking:       booking,
		PairingStatus: PairingIdle,
	}

	if f.Vehicle != nil && f.Vehicle.IsEV {
		result.PairingStatus = PairingPending
		pairing, err := f.client.RequestEVPairing(f.Offer.ID, nil, eta)
		if err != nil {
			log.Warnf("EV pairing failed for booking %s: %v", booking.BookingID, err)
			result.PairingStatus = PairingError
			result.PairingErr = err
		} else {
			result.Pairing = pairing
			result.PairingStatus = PairingDone
			if err := f.store.SaveBookingPairing(booking.BookingID, *pairing); err != nil {
				log.Warnf("persisting EV pairing: %v", err)
			}
		}
	}

	delay := f.HandoffDelay
	if delay > 0 {
		select {
		case <-ctx.Done():
			// Booking already exists server-side; the hand-off is the only
			// thing cancelled.
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}
	return result, nil
}
