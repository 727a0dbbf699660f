// Package model defines the core domain types shared by the activities API
// and the activity board.
package model

// Activity is a signup-able offering with a capacity and a participant list.
// Participants are email addresses in registration order.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
	Category        string   `json:"category,omitempty"`
	Date            string   `json:"date,omitempty"`
}

// SpotsLeft returns the number of free places. The server keeps it
// non-negative; it is not clamped here.
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// IsFull returns true when no spots remain.
func (a *Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// HasParticipant reports whether email is registered for the activity.
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// ActivityRecord is an activity together with its unique name, the form used
// by storage and the service layer.
type ActivityRecord struct {
	Name string `json:"name"`
	Activity
}

// Criteria holds the filter values the control panel sends with a fetch.
// Empty fields mean "no constraint".
type Criteria struct {
	Category string
	Sort     string
	Search   string
}

// Sort keys understood by the activities API.
const (
	SortNone = ""
	SortName = "name"
	SortDate = "date"
)

// StatusKind classifies a status message.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the transient feedback shown after a write action.
type Status struct {
	Text string
	Kind StatusKind
}

// MessageResponse is the body of a successful signup or unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
