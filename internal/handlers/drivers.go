package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

// CreateJob books a job: a new loading vehicle at the top of the fleet.
func (a *API) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in fleet.JobInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	var jobID string
	fx, ok := a.apply(w, "create_job", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		next, fx, err := fleet.CreateJob(s, in, a.Env)
		if err == nil {
			jobID = next.Vehicles[0].ID
		}
		return next, fx, err
	})
	if ok {
		a.respond(w, fx, jobID, 0)
	}
}

// ListDrivers returns the roster.
func (a *API) ListDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Snapshot().Drivers)
}

func driverID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: driver id must be a positive integer", fleet.ErrInvalidInput)
	}
	return id, nil
}

// SaveDriver adds a driver, or replaces the one at {id}.
func (a *API) SaveDriver(w http.ResponseWriter, r *http.Request) {
	var d models.Driver
	if err := decode(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	if r.PathValue("id") != "" {
		id, err := driverID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		d.ID = id
	}

	savedID := d.ID
	fx, ok := a.apply(w, "save_driver", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		if r.Method == http.MethodPut && s.DriverIndex(d.ID) < 0 {
			return s, fleet.Effects{}, fmt.Errorf("%w: %d", fleet.ErrDriverNotFound, d.ID)
		}
		next, fx, err := fleet.SaveDriver(s, d)
		if err == nil && s.DriverIndex(d.ID) < 0 {
			savedID = next.Drivers[len(next.Drivers)-1].ID
		}
		return next, fx, err
	})
	if ok {
		a.respond(w, fx, "", savedID)
	}
}

// DeleteDriver removes a driver. It needs ?confirm=true.
func (a *API) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := driverID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	fx, ok := a.apply(w, "delete_driver", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.DeleteDriver(s, id, confirmed)
	})
	if ok {
		a.respond(w, fx, "", 0)
	}
}

type statusEvent struct {
	Status models.VehicleStatus `json:"status"`
}

var errUnknownEvent = errors.New("unknown driver event")

// DriverEvent takes the driver app's status, fuel, toll and issue reports.
func (a *API) DriverEvent(w http.ResponseWriter, r *http.Request) {
	id, err := driverID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var action string
	var reducer fleet.Reducer
	switch kind := r.PathValue("kind"); kind {
	case "status":
		var in statusEvent
		err = decode(w, r, &in)
		action = "driver_status"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverStatusChange(s, id, in.Status)
		}
	case "fuel":
		var e models.FuelEntry
		err = decode(w, r, &e)
		action = "driver_fuel"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverLogFuel(s, id, e, a.Env)
		}
	case "toll":
		var e models.TollEntry
		err = decode(w, r, &e)
		action = "driver_toll"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverLogToll(s, id, e, a.Env)
		}
	case "issue":
		var in fleet.IssueReport
		err = decode(w, r, &in)
		action = "driver_issue"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverReportIssue(s, id, in)
		}
	default:
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("%v: %s", errUnknownEvent, kind))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	fx, ok := a.apply(w, action, reducer)
	if !ok {
		return
	}
	var vehicleID string
	state := a.Store.Snapshot()
	if d, found := state.Driver(id); found {
		if i := fleet.DriverVehicle(state, d); i >= 0 {
			vehicleID = state.Vehicles[i].ID
		}
	}
	a.respond(w, fx, vehicleID, id)
}
