package fleet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// JobInput is the dispatch form for a new job.
type JobInput struct {
	Client      string             `json:"client"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	Type        models.VehicleType `json:"vehicleType"`
	DriverID    int                `json:"driverId,omitempty"`
	Driver      string             `json:"driver,omitempty"`
	Date        string             `json:"date,omitempty"`
	Time        string             `json:"time,omitempty"`
}

// CreateJob synthesizes a loading vehicle for the job and prepends it.
// Origin and destination are free text.
func CreateJob(s State, in JobInput, env Env) (State, Effects, error) {
	if strings.TrimSpace(in.Client) == "" {
		return s, Effects{}, fmt.Errorf("%w: client is required", ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = models.TypeClosedVan6W
	}
	if !models.IsValidVehicleType(in.Type) {
		return s, Effects{}, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, in.Type)
	}

	driverName := strings.TrimSpace(in.Driver)
	if in.DriverID != 0 {
		d, ok := s.Driver(in.DriverID)
		if !ok {
			return s, Effects{}, fmt.Errorf("%w: %d", ErrDriverNotFound, in.DriverID)
		}
		driverName = d.Name
	}
	if driverName == "" {
		driverName = models.UnassignedDriver
	}

	v := models.Vehicle{
		ID:          env.id("new"),
		Name:        fmt.Sprintf("RVL-%d", 1000+env.Rand.Intn(9000)),
		Type:        in.Type,
		Status:      models.StatusLoading,
		Origin:      in.Origin,
		Destination: in.Destination,
		ETA:         "Calculating...",
		Progress:    0,
		DriverID:    in.DriverID,
		Driver:      driverName,
		FuelLevel:   MaxFuelPercentage,
		CurrentJob:  in.Client + " - Logistics",
		Costs:       models.NewCostBreakdown(),
	}

	next := s.Clone()
	next.Vehicles = append([]models.Vehicle{v}, next.Vehicles...)

	var fx Effects
	fx.notify("New Job Created", fmt.Sprintf("Job created for %s. Awaiting loading at Warehouse.", v.Name), models.SeverityInfo)
	fx.toast("Job created: "+v.Name, models.SeveritySuccess)
	return next, fx, nil
}

// DockUpdate moves a vehicle between warehouse states.
type DockUpdate struct {
	Status   models.VehicleStatus `json:"status"`
	Progress float64              `json:"progress"`
}

// dockMoves lists the statuses a vehicle at each dock may move to.
var dockMoves = map[models.VehicleStatus][]models.VehicleStatus{
	models.StatusLoading:   {models.StatusLoading, models.StatusInTransit},
	models.StatusUnloading: {models.StatusUnloading, models.StatusStationary},
}

// UpdateDockStatus sets status and progress as given. The vehicle must be
// loading or unloading; loading leads to In transit and unloading to
// Stationary. Only a move into In transit announces a dispatch.
func UpdateDockStatus(s State, id string, in DockUpdate) (State, Effects, error) {
	if !models.IsValidVehicleStatus(in.Status) {
		return s, Effects{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	if in.Progress < 0 || in.Progress > MaxProgress {
		return s, Effects{}, fmt.Errorf("%w: progress %.2f out of range", ErrInvalidInput, in.Progress)
	}
	i := s.VehicleIndex(id)
	if i < 0 {
		return s, Effects{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}

	from := s.Vehicles[i].Status
	if !slices.Contains(dockMoves[from], in.Status) {
		return s, Effects{}, fmt.Errorf("%w: %s cannot move from %s to %s at the dock",
			ErrInvalidInput, s.Vehicles[i].Name, from, in.Status)
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	v.Status = in.Status
	v.Progress = models.Round2(in.Progress)

	var fx Effects
	if in.Status == models.StatusInTransit {
		fx.notify("Vehicle Dispatched", fmt.Sprintf("%s left the hub for %s", v.Name, v.Destination), models.SeverityInfo)
		fx.toast(v.Name+" dispatched", models.SeveritySuccess)
	}
	return next, fx, nil
}

// AdvanceDock is the warehouse dock button. An unfinished loading or
// unloading bay is filled to 100; a finished one needs confirmation and then
// dispatches the vehicle or frees it.
func AdvanceDock(s State, id string, confirmed bool) (State, Effects, error) {
	v, ok := s.Vehicle(id)
	if !ok {
		return s, Effects{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}

	switch {
	case v.Status == models.StatusLoading && v.Progress < MaxProgress:
		return UpdateDockStatus(s, id, DockUpdate{Status: models.StatusLoading, Progress: MaxProgress})
	case v.Status == models.StatusUnloading && v.Progress < MaxProgress:
		return UpdateDockStatus(s, id, DockUpdate{Status: models.StatusUnloading, Progress: MaxProgress})
	case v.Status == models.StatusLoading:
		if !confirmed {
			return s, aborted(), nil
		}
		return UpdateDockStatus(s, id, DockUpdate{Status: models.StatusInTransit})
	case v.Status == models.StatusUnloading:
		if !confirmed {
			return s, aborted(), nil
		}
		return UpdateDockStatus(s, id, DockUpdate{Status: models.StatusStationary})
	default:
		return s, Effects{}, fmt.Errorf("%w: %s is not at a dock (%s)", ErrInvalidInput, v.Name, v.Status)
	}
}

// CompleteTrip frees a vehicle for the next job. Costs and driver are kept,
// so repeating it on an available vehicle changes nothing.
func CompleteTrip(s State, id string, confirmed bool) (State, Effects, error) {
	i := s.VehicleIndex(id)
	if i < 0 {
		return s, Effects{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	if !confirmed {
		return s, aborted(), nil
	}

	next := s.Clone()
	v := &next.Vehicles[i]
	v.Status = models.StatusStationary
	v.Progress = 0
	v.CurrentJob = "Available"
	v.ETA = "-"

	var fx Effects
	fx.notify("Trip Completed", v.Name+" is now available", models.SeveritySuccess)
	fx.toast("Trip marked completed", models.SeveritySuccess)
	return next, fx, nil
}

// DeleteVehicle removes a vehicle by id. Driver back-references are left as is.
func DeleteVehicle(s State, id string, confirmed bool) (State, Effects, error) {
	i := s.VehicleIndex(id)
	if i < 0 {
		return s, Effects{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	if !confirmed {
		return s, aborted(), nil
	}

	next := s.Clone()
	next.Vehicles = append(next.Vehicles[:i], next.Vehicles[i+1:]...)

	var fx Effects
	fx.notify("Asset Deleted", "Vehicle removed from fleet inventory", models.SeverityWarning)
	fx.toast("Vehicle deleted", models.SeverityInfo)
	return next, fx, nil
}

// DeleteDriver removes a driver by id. Vehicles keep their driver name and id.
func DeleteDriver(s State, id int, confirmed bool) (State, Effects, error) {
	i := s.DriverIndex(id)
	if i < 0 {
		return s, Effects{}, fmt.Errorf("%w: %d", ErrDriverNotFound, id)
	}
	if !confirmed {
		return s, aborted(), nil
	}

	next := s.Clone()
	next.Drivers = append(next.Drivers[:i], next.Drivers[i+1:]...)

	var fx Effects
	fx.notify("Driver Removed", "Driver profile deleted", models.SeverityWarning)
	fx.toast("Driver removed", models.SeverityInfo)
	return next, fx, nil
}

func validateVehicle(v models.Vehicle) error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: vehicle name is required", ErrInvalidInput)
	}
	if !models.IsValidVehicleType(v.Type) {
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, v.Type)
	}
	if !models.IsValidVehicleStatus(v.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, v.Status)
	}
	if v.Progress < 0 || v.Progress > MaxProgress || v.FuelLevel < 0 || v.FuelLevel > MaxFuelPercentage {
		return fmt.Errorf("%w: progress and fuel level must be within 0..100", ErrInvalidInput)
	}
	return nil
}

// SaveVehicle is the asset form submit. A vehicle whose id is already in the
// fleet replaces that entry; any other vehicle gets a fresh id and is appended.
func SaveVehicle(s State, v models.Vehicle, env Env) (State, Effects, error) {
	if v.Driver == "" {
		v.Driver = models.UnassignedDriver
	}
	if err := validateVehicle(v); err != nil {
		return s, Effects{}, err
	}
	if v.Costs != nil {
		c := v.Costs.Clone()
		c.Recompute()
		v.Costs = &c
	}

	next := s.Clone()
	var fx Effects
	if i := next.VehicleIndex(v.ID); v.ID != "" && i >= 0 {
		next.Vehicles[i] = v
		fx.notify("Asset Updated", fmt.Sprintf("Details for %s saved", v.Name), models.SeveritySuccess)
		fx.toast("Vehicle updated", models.SeveritySuccess)
		return next, fx, nil
	}

	v.ID = env.id("rvl")
	next.Vehicles = append(next.Vehicles, v)
	fx.notify("Asset Added", fmt.Sprintf("New vehicle %s added to fleet", v.Name), models.SeveritySuccess)
	fx.toast("Vehicle added", models.SeveritySuccess)
	return next, fx, nil
}

// UpdateVehicle replaces an existing vehicle from the trip details view.
// Unlike SaveVehicle it never creates and emits only a toast.
func UpdateVehicle(s State, v models.Vehicle) (State, Effects, error) {
	i := s.VehicleIndex(v.ID)
	if i < 0 {
		return s, Effects{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, v.ID)
	}
	if err := validateVehicle(v); err != nil {
		return s, Effects{}, err
	}
	if v.Costs != nil {
		c := v.Costs.Clone()
		c.Recompute()
		v.Costs = &c
	}

	next := s.Clone()
	next.Vehicles[i] = v

	var fx Effects
	fx.toast("Vehicle details updated", models.SeveritySuccess)
	return next, fx, nil
}

// SaveDriver is the driver form submit. A driver whose id is in the roster
// replaces it; any other driver takes the next free id and is appended.
func SaveDriver(s State, d models.Driver) (State, Effects, error) {
	if strings.TrimSpace(d.Name) == "" {
		return s, Effects{}, fmt.Errorf("%w: driver name is required", ErrInvalidInput)
	}
	if d.Status == "" {
		d.Status = models.DriverAvailable
	}
	if !models.IsValidDriverStatus(d.Status) {
		return s, Effects{}, fmt.Errorf("%w: unknown driver status %q", ErrInvalidInput, d.Status)
	}
	if d.Rating < 0 || d.Rating > 5 || d.Trips < 0 {
		return s, Effects{}, fmt.Errorf("%w: rating must be 0..5 and trips non-negative", ErrInvalidInput)
	}
	if d.Vehicle == "" {
		d.Vehicle = models.NoVehicle
	}

	next := s.Clone()
	var fx Effects
	if i := next.DriverIndex(d.ID); d.ID != 0 && i >= 0 {
		next.Drivers[i] = d
		fx.notify("Driver Updated", fmt.Sprintf("Profile for %s updated", d.Name), models.SeveritySuccess)
		fx.toast("Driver updated", models.SeveritySuccess)
		return next, fx, nil
	}

	d.ID = nextDriverID(next)
	next.Drivers = append(next.Drivers, d)
	fx.notify("Driver Added", d.Name+" added to roster", models.SeveritySuccess)
	fx.toast("Driver added", models.SeveritySuccess)
	return next, fx, nil
}

// nextDriverID also skips ids still referenced by vehicles so a deleted
// driver's id is never handed to someone else.
func nextDriverID(s State) int {
	highest := 0
	for _, d := range s.Drivers {
		highest = max(highest, d.ID)
	}
	for _, v := range s.Vehicles {
		highest = max(highest, v.DriverID)
	}
	return highest + 1
}
