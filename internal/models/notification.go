package models

import "time"

// Severity tags a notification or toast.
type Severity string

const (
	SeverityAlert   Severity = "alert"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	// SeverityError is only used by toasts.
	SeverityError Severity = "error"
)

// Notification is a system message kept until the operator reads it.
type Notification struct {
	ID        int64     `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	Type      Severity  `bson:"type" json:"type"`
	CreatedAt time.Time `bson:"created_at" json:"time"`
	Read      bool      `bson:"read" json:"read"`
}

// Toast is transient feedback for one action outcome.
type Toast struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToastLifetime is how long a toast stays visible.
const ToastLifetime = 4 * time.Second

// Expired reports whether the toast should no longer be shown at now.
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
