package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FleetSnapshot is an archived copy of the fleet taken when a session ends.
type FleetSnapshot struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reason        string             `bson:"reason" json:"reason"` // "logout", "shutdown"
	Vehicles      []Vehicle          `bson:"vehicles" json:"vehicles"`
	Drivers       []Driver           `bson:"drivers" json:"drivers"`
	Notifications []Notification     `bson:"notifications" json:"notifications"`
	TakenAt       time.Time          `bson:"taken_at" json:"taken_at"`
}
