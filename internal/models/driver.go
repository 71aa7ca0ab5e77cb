package models

// DriverStatus is the duty state of a driver.
type DriverStatus string

const (
	DriverOnTrip    DriverStatus = "On Trip"
	DriverAvailable DriverStatus = "Available"
	DriverOffDuty   DriverStatus = "Off Duty"
	DriverOnLeave   DriverStatus = "On Leave"
)

// IsValidDriverStatus checks if a status is a known duty state
func IsValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverOnTrip, DriverAvailable, DriverOffDuty, DriverOnLeave:
		return true
	default:
		return false
	}
}

// NoVehicle is the vehicle reference of a driver with no assignment.
const NoVehicle = "-"

// Driver represents a person assignable to a vehicle.
type Driver struct {
	ID      int          `bson:"id" json:"id"`
	Name    string       `bson:"name" json:"name"`
	Status  DriverStatus `bson:"status" json:"status"`
	Vehicle string       `bson:"vehicle" json:"vehicle"` // vehicle name, "-" if unassigned
	Rating  float64      `bson:"rating" json:"rating"`
	Trips   int          `bson:"trips" json:"trips"`
	Phone   string       `bson:"phone,omitempty" json:"phone,omitempty"`
	License string       `bson:"license,omitempty" json:"license,omitempty"`
}
