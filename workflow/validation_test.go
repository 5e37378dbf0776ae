package workflow

import (
	"context"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/parksmart/parkctl/parksmart"
)

func TestValidationInput_Normalize(t *testing.T) {
	// qr and nfc drop any stray plate
	in, err := ValidationInput{Method: parksmart.ValidationQR, Plate: "ka01"}.normalize()
	assert.Nil(t, err)
	assert.Equal(t, "", in.Plate)

	in, err = ValidationInput{Method: parksmart.ValidationNFC}.normalize()
	assert.Nil(t, err)
	assert.Equal(t, "", in.Plate)

	// plate is trimmed and upper-cased
	in, err = ValidationInput{Method: parksmart.ValidationPlate, Plate: "  ka01ab1234 "}.normalize()
	assert.Nil(t, err)
	assert.Equal(t, "KA01AB1234", in.Plate)

	_, err = ValidationInput{Method: parksmart.ValidationPlate, Plate: "   "}.normalize()
	assert.ErrorIs(t, err, ErrPlateRequired)

	_, err = ValidationInput{Method: "retina-scan"}.normalize()
	assert.NotNil(t, err)
}

func TestValidator_Validate(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/sessions/start").
		JSON(map[string]any{"booking_id": "B1", "validation_method": "qr"}).
		Reply(200).
		File("../resources/session-started.json")

	store := newMemPairingStore()
	store.byBooking["B1"] = parksmart.EVPairing{SlotID: "S1", ChargerID: "CH-42"}

	v := NewValidator(newTestClient(t), store, "B1")
	assert.Equal(t, "CH-42", v.StoredPairing().ChargerID)

	session, err := v.Validate(context.Background(), ValidationInput{Method: parksmart.ValidationQR})
	assert.Nil(t, err)
	assert.Equal(t, "SESS1", session.SessionID)

	// the pairing is re-keyed under the new session id
	carried, err := store.SessionPairing("SESS1")
	assert.Nil(t, err)
	assert.Equal(t, "CH-42", carried.ChargerID)
}

func TestValidator_Validate_PlateBody(t *testing.T) {
	defer gock.Off()
	gock.New(parksmart.DefaultBackend).
		Post("/sessions/start").
		JSON(map[string]any{"booking_id": "B1", "validation_method": "plate"}).
		Reply(200).
		File("../resources/session-started.json")

	v := NewValidator(newTestClient(t), newMemPairingStore(), "B1")
	session, err := v.Validate(context.Background(), ValidationInput{
		Method: parksmart.ValidationPlate,
		Plate:  "ka01ab1234",
	})
	assert.Nil(t, err)
	assert.Equal(t, "SESS1", session.SessionID)
}

func TestValidator_Validate_MissingBooking(t *testing.T) {
	v := NewValidator(newTestClient(t), newMemPairingStore(), "")
	_, err := v.Validate(context.Background(), ValidationInput{Method: parksmart.ValidationQR})
	assert.NotNil(t, err)
}
