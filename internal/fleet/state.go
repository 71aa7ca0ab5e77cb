// Package fleet holds the fleet snapshot and the pure reducers that move it
// from one state to the next. Nothing in this package locks or performs I/O;
// callers serialize access and materialize the returned effects.
package fleet

import (
	"errors"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrEntryNotFound   = errors.New("cost entry not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvariant       = errors.New("fleet invariant violated")
)

// State is one immutable snapshot of the fleet.
type State struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Drivers  []models.Driver  `json:"drivers"`
	Settings models.Settings  `json:"settings"`
}

// Clone returns a deep copy. Reducers clone before writing so the caller's
// snapshot is never touched.
func (s State) Clone() State {
	out := State{Settings: s.Settings}
	out.Vehicles = make([]models.Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		out.Vehicles[i] = v.Clone()
	}
	out.Drivers = append(make([]models.Driver, 0, len(s.Drivers)), s.Drivers...)
	return out
}

// VehicleIndex returns the index of the vehicle with id, or -1.
func (s State) VehicleIndex(id string) int {
	for i := range s.Vehicles {
		if s.Vehicles[i].ID == id {
			return i
		}
	}
	return -1
}

// DriverIndex returns the index of the driver with id, or -1.
func (s State) DriverIndex(id int) int {
	for i := range s.Drivers {
		if s.Drivers[i].ID == id {
			return i
		}
	}
	return -1
}

// Vehicle looks up a vehicle by id.
func (s State) Vehicle(id string) (models.Vehicle, bool) {
	if i := s.VehicleIndex(id); i >= 0 {
		return s.Vehicles[i], true
	}
	return models.Vehicle{}, false
}

// Driver looks up a driver by id.
func (s State) Driver(id int) (models.Driver, bool) {
	if i := s.DriverIndex(id); i >= 0 {
		return s.Drivers[i], true
	}
	return models.Driver{}, false
}

// Reducer is a pure transition over the snapshot.
type Reducer func(State) (State, Effects, error)
