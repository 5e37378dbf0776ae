package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/parksmart/parkctl/parksmart"
)

var (
	ErrValidationInFlight = errors.New("a validation attempt is already in flight")
	ErrPlateRequired      = errors.New("plate validation requires a plate number")
)

// ValidationInput is the tagged payload for one validation attempt. Only
// the plate method carries extra data.
type ValidationInput struct {
	Method parksmart.ValidationMethod
	Plate  string
}

func (i ValidationInput) normalize() (ValidationInput, error) {
	switch i.Method {
	case parksmart.ValidationQR, parksmart.ValidationNFC:
		i.Plate = ""
		return i, nil
	case parksmart.ValidationPlate:
		plate := strings.ToUpper(strings.TrimSpace(i.Plate))
		if plate == "" {
			return i, ErrPlateRequired
		}
		i.Plate = plate
		return i, nil
	default:
		return i, fmt.Errorf("unknown validation method %q", i.Method)
	}
}

// Validator confirms physical arrival and obtains the session. The three
// methods are interchangeable; one attempt may be in flight at a time.
type Validator struct {
	client *parksmart.Client
	store  PairingStore

	bookingID string
	inFlight  atomic.Bool
}

func NewValidator(client *parksmart.Client, store PairingStore, bookingID string) *Validator {
	return &Validator{client: client, store: store, bookingID: bookingID}
}

// StoredPairing surfaces the pairing saved at confirmation time for user
// reassurance. It is never re-derived here.
func (v *Validator) StoredPairing() *parksmart.EVPairing {
	pairing, err := v.store.BookingPairing(v.bookingID)
	if err != nil {
		return nil
	}
	return pairing
}

// Validate starts the session. On success the booking's stored pairing is
// re-keyed under the new session id so later stages can find it.
func (v *Validator) Validate(ctx context.Context, input ValidationInput) (*parksmart.Session, error) {
	if v.bookingID == "" {
		return nil, fmt.Errorf("missing booking id")
	}
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	if !v.inFlight.CompareAndSwap(false, true) {
		return nil, ErrValidationInFlight
	}
	defer v.inFlight.Store(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, err := v.client.StartSession(v.bookingID, input.Method)
	if err != nil {
		return nil, err
	}
	if pairing := v.StoredPairing(); pairing != nil {
		if err := v.store.SaveSessionPairing(session.SessionID, *pairing); err != nil {
			log.Warnf("re-keying pairing under session %s: %v", session.SessionID, err)
		}
	}
	return session, nil
}
