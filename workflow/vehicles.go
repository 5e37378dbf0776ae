package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/parksmart/parkctl/parksmart"
)

// VehicleSelectionStore persists the active vehicle choice across runs.
type VehicleSelectionStore interface {
	ActiveVehicleID() (string, error)
	SetActiveVehicleID(id string) error
	ClearActiveVehicleID() error
}

// VehicleRoster owns the vehicle list and the active-vehicle selection:
// initialized from the store, cleared when the selected vehicle is deleted,
// falling back to the first vehicle when the selection is gone.
type VehicleRoster struct {
	client *parksmart.Client
	store  VehicleSelectionStore

	mu       sync.Mutex
	vehicles []parksmart.Vehicle
	activeID string
}

func NewVehicleRoster(client *parksmart.Client, store VehicleSelectionStore) *VehicleRoster {
	return &VehicleRoster{client: client, store: store}
}

func (r *VehicleRoster) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	vehicles, err := r.client.GetVehicles()
	if err != nil {
		return err
	}
	activeID, err := r.store.ActiveVehicleID()
	if err != nil {
		log.Debugf("no stored active vehicle: %v", err)
		activeID = ""
	}
	r.mu.Lock()
	r.vehicles = vehicles
	r.activeID = activeID
	r.mu.Unlock()
	return nil
}

func (r *VehicleRoster) Vehicles() []parksmart.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vehicles
}

// Active resolves the active vehicle: the stored selection when it still
// exists, otherwise the first vehicle, otherwise nil.
func (r *VehicleRoster) Active() *parksmart.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.vehicles {
		if r.vehicles[i].ID == r.activeID {
			return &r.vehicles[i]
		}
	}
	if len(r.vehicles) > 0 {
		return &r.vehicles[0]
	}
	return nil
}

func (r *VehicleRoster) SetActive(id string) error {
	r.mu.Lock()
	found := false
	for i := range r.vehicles {
		if r.vehicles[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return fmt.Errorf("unknown vehicle %q", id)
	}
	r.activeID = id
	r.mu.Unlock()
	return r.store.SetActiveVehicleID(id)
}

func (r *VehicleRoster) Add(ctx context.Context, v parksmart.Vehicle) (*parksmart.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created, err := r.client.AddVehicle(v)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.vehicles = append(r.vehicles, *created)
	r.mu.Unlock()
	return created, nil
}

// Remove deletes a vehicle. Deleting the active one clears the persisted
// selection so the roster falls back to the first remaining vehicle.
func (r *VehicleRoster) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.client.DeleteVehicle(id); err != nil {
		return err
	}
	r.mu.Lock()
	kept := r.vehicles[:0]
	for _, v := range r.vehicles {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	r.vehicles = kept
	wasActive := r.activeID == id
	if wasActive {
		r.activeID = ""
	}
	r.mu.Unlock()
	if wasActive {
		return r.store.ClearActiveVehicleID()
	}
	return nil
}
