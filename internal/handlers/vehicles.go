package handlers

import (
	"net/http"
	"strconv"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

type confirmBody struct {
	Confirm bool `json:"confirm"`
}

// ListVehicles returns the fleet, optionally filtered by ?status=.
func (a *API) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := a.Store.Snapshot().Vehicles
	if status := models.VehicleStatus(r.URL.Query().Get("status")); status != "" {
		filtered := make([]models.Vehicle, 0, len(vehicles))
		for _, v := range vehicles {
			if v.Status == status {
				filtered = append(filtered, v)
			}
		}
		vehicles = filtered
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// SaveVehicle adds a vehicle, or updates it when the id already exists.
func (a *API) SaveVehicle(w http.ResponseWriter, r *http.Request) {
	var v models.Vehicle
	if err := decode(w, r, &v); err != nil {
		writeError(w, err)
		return
	}
	var savedID string
	fx, ok := a.apply(w, "save_vehicle", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		next, fx, err := fleet.SaveVehicle(s, v, a.Env)
		if err == nil {
			savedID = savedVehicleID(s, next, v.ID)
		}
		return next, fx, err
	})
	if ok {
		a.respond(w, fx, savedID, 0)
	}
}

// savedVehicleID is v's id when it existed, else the id of the appended vehicle.
func savedVehicleID(before, after fleet.State, id string) string {
	if _, ok := before.Vehicle(id); ok {
		return id
	}
	if n := len(after.Vehicles); n > 0 {
		return after.Vehicles[n-1].ID
	}
	return ""
}

// EditVehicle updates the trip details of an existing vehicle. With
// ?asset=true it runs the asset editor save instead.
func (a *API) EditVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var v models.Vehicle
	if err := decode(w, r, &v); err != nil {
		writeError(w, err)
		return
	}
	v.ID = id

	action, reducer := "update_vehicle", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.UpdateVehicle(s, v)
	}
	if r.URL.Query().Get("asset") == "true" {
		action, reducer = "save_vehicle", func(s fleet.State) (fleet.State, fleet.Effects, error) {
			if _, ok := s.Vehicle(id); !ok {
				return s, fleet.Effects{}, fleet.ErrVehicleNotFound
			}
			return fleet.SaveVehicle(s, v, a.Env)
		}
	}
	if fx, ok := a.apply(w, action, reducer); ok {
		a.respond(w, fx, id, 0)
	}
}

// DeleteVehicle removes a vehicle. It needs ?confirm=true.
func (a *API) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	fx, ok := a.apply(w, "delete_vehicle", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.DeleteVehicle(s, id, confirmed)
	})
	if ok {
		a.respond(w, fx, "", 0)
	}
}

// CompleteTrip marks the vehicle available. The body must confirm.
func (a *API) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body confirmBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	fx, ok := a.apply(w, "complete_trip", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.CompleteTrip(s, id, body.Confirm)
	})
	if ok {
		a.respond(w, fx, id, 0)
	}
}

// UpdateDock sets a bay's status and progress from the warehouse view.
func (a *API) UpdateDock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in fleet.DockUpdate
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	fx, ok := a.apply(w, "update_dock", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.UpdateDockStatus(s, id, in)
	})
	if ok {
		a.respond(w, fx, id, 0)
	}
}

// AdvanceDock presses the bay button: finish the job, or move the vehicle
// on once the job is finished and the body confirms.
func (a *API) AdvanceDock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body confirmBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	fx, ok := a.apply(w, "advance_dock", func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return fleet.AdvanceDock(s, id, body.Confirm)
	})
	if ok {
		a.respond(w, fx, id, 0)
	}
}

// ledgerEdit decodes an entry and runs one cost-ledger reducer on it.
func ledgerEdit[E any](a *API, action string, w http.ResponseWriter, r *http.Request,
	edit func(s fleet.State, vehicleID, entryID string, e E) (fleet.State, fleet.Effects, error)) {
	id, entryID := r.PathValue("id"), r.PathValue("entryId")
	var e E
	if r.Method != http.MethodDelete {
		if err := decode(w, r, &e); err != nil {
			writeError(w, err)
			return
		}
	}
	fx, ok := a.apply(w, action, func(s fleet.State) (fleet.State, fleet.Effects, error) {
		return edit(s, id, entryID, e)
	})
	if ok {
		a.respond(w, fx, id, 0)
	}
}

func (a *API) AddToll(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "add_toll", w, r, func(s fleet.State, id, _ string, e models.TollEntry) (fleet.State, fleet.Effects, error) {
		return fleet.AddTollEntry(s, id, e, a.Env)
	})
}

func (a *API) UpdateToll(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "update_toll", w, r, fleet.UpdateTollEntry)
}

func (a *API) RemoveToll(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "remove_toll", w, r, func(s fleet.State, id, entryID string, _ struct{}) (fleet.State, fleet.Effects, error) {
		return fleet.RemoveTollEntry(s, id, entryID)
	})
}

func (a *API) AddFuel(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "add_fuel", w, r, func(s fleet.State, id, _ string, e models.FuelEntry) (fleet.State, fleet.Effects, error) {
		return fleet.AddFuelEntry(s, id, e, a.Env)
	})
}

func (a *API) UpdateFuel(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "update_fuel", w, r, fleet.UpdateFuelEntry)
}

func (a *API) RemoveFuel(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "remove_fuel", w, r, func(s fleet.State, id, entryID string, _ struct{}) (fleet.State, fleet.Effects, error) {
		return fleet.RemoveFuelEntry(s, id, entryID)
	})
}

func (a *API) AddExpense(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "add_expense", w, r, func(s fleet.State, id, _ string, e models.ExpenseEntry) (fleet.State, fleet.Effects, error) {
		return fleet.AddExpenseEntry(s, id, e, a.Env)
	})
}

func (a *API) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	ledgerEdit(a, "remove_expense", w, r, func(s fleet.State, id, entryID string, _ struct{}) (fleet.State, fleet.Effects, error) {
		return fleet.RemoveExpenseEntry(s, id, entryID)
	})
}
