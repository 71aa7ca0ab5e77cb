package fleet

import "github.com/ukydev/fleet-dispatch/internal/models"

// NoticeDraft is a notification before the store assigns it an id and time.
type NoticeDraft struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Type    models.Severity `json:"type"`
}

// ToastDraft is a toast before the store assigns it an id and expiry.
type ToastDraft struct {
	Message string          `json:"message"`
	Type    models.Severity `json:"type"`
}

// Effects are the side outputs of a reducer.
type Effects struct {
	Notifications []NoticeDraft `json:"notifications,omitempty"`
	Toasts        []ToastDraft  `json:"toasts,omitempty"`
	// Aborted is set when the operator declined a confirmation. The state
	// returned alongside it is the input state.
	Aborted bool `json:"aborted,omitempty"`
}

func (e *Effects) notify(title, message string, sev models.Severity) {
	e.Notifications = append(e.Notifications, NoticeDraft{Title: title, Message: message, Type: sev})
}

func (e *Effects) toast(message string, sev models.Severity) {
	e.Toasts = append(e.Toasts, ToastDraft{Message: message, Type: sev})
}

// Merge appends other's drafts after e's.
func (e *Effects) Merge(other Effects) {
	e.Notifications = append(e.Notifications, other.Notifications...)
	e.Toasts = append(e.Toasts, other.Toasts...)
	e.Aborted = e.Aborted || other.Aborted
}

// Empty reports whether there is nothing to emit.
func (e Effects) Empty() bool {
	return len(e.Notifications) == 0 && len(e.Toasts) == 0
}

func aborted() Effects {
	return Effects{Aborted: true}
}
