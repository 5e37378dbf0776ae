// Package statestore persists the small amount of client-owned state that
// survives runs: the active vehicle selection, preference flags, and EV
// pairing results keyed by booking id and by session id. Everything
// authoritative stays server-side; this store is an embedded key-value
// database standing in for browser storage.
package statestore

import (
	"encoding/json"
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/parksmart/parkctl/parksmart"
)

var ErrNotFound = errors.New("key not found in state store")

const (
	keyActiveVehicle     = "active_vehicle_id"
	keyPreferences       = "preferences"
	prefixBookingPairing = "ev_pairing_"
	prefixSessionPairing = "ev_pairing_session_"
)

// Preferences are the user's sticky search flags.
type Preferences struct {
	PreferEV            bool `json:"prefer_ev"`
	PreferAccessibility bool `json:"prefer_accessibility"`
}

type Store struct {
	db *badger.DB
}

// DefaultPath resolves the state database location under the XDG state
// home.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "parkctl", "state")
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) setRaw(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *Store) getRaw(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *Store) deleteRaw(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (s *Store) ActiveVehicleID() (string, error) {
	raw, err := s.getRaw(keyActiveVehicle)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Store) SetActiveVehicleID(id string) error {
	return s.setRaw(keyActiveVehicle, []byte(id))
}

func (s *Store) ClearActiveVehicleID() error {
	return s.deleteRaw(keyActiveVehicle)
}

func (s *Store) Preferences() (Preferences, error) {
	var prefs Preferences
	raw, err := s.getRaw(keyPreferences)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return prefs, nil
		}
		return prefs, err
	}
	err = json.Unmarshal(raw, &prefs)
	return prefs, err
}

func (s *Store) SetPreferences(prefs Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.setRaw(keyPreferences, raw)
}

func (s *Store) savePairing(key string, p parksmart.EVPairing) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.setRaw(key, raw)
}

func (s *Store) loadPairing(key string) (*parksmart.EVPairing, error) {
	raw, err := s.getRaw(key)
	if err != nil {
		return nil, err
	}
	var p parksmart.EVPairing
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveBookingPairing(bookingID string, p parksmart.EVPairing) error {
	return s.savePairing(prefixBookingPairing+bookingID, p)
}

func (s *Store) BookingPairing(bookingID string) (*parksmart.EVPairing, error) {
	return s.loadPairing(prefixBookingPairing + bookingID)
}

func (s *Store) SaveSessionPairing(sessionID string, p parksmart.EVPairing) error {
	return s.savePairing(prefixSessionPairing+sessionID, p)
}

func (s *Store) SessionPairing(sessionID string) (*parksmart.EVPairing, error) {
	return s.loadPairing(prefixSessionPairing + sessionID)
}
