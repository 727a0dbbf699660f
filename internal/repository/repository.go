// Package repository implements activity storage for the activities API.
// Three backends share one contract: a JSON file (the default), SQLite and
// PostgreSQL.
package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// ErrNotFound is returned when the named activity does not exist.
var ErrNotFound = errors.New("activity not found")

// ErrAlreadyRegistered is returned when the same email signs up twice.
var ErrAlreadyRegistered = errors.New("email already registered for this activity")

// ErrNotRegistered is returned when removing an email that is not signed up.
var ErrNotRegistered = errors.New("email not registered for this activity")

// ErrActivityFull is returned when an activity has no spots left.
var ErrActivityFull = errors.New("activity is full")

// ActivityRepository stores activities and their participants. List returns
// activities in storage order; participants keep registration order.
type ActivityRepository interface {
	List(ctx context.Context) ([]model.ActivityRecord, error)
	Signup(ctx context.Context, name, email string) error
	Unregister(ctx context.Context, name, email string) error
}

//go:embed seed/activities.json
var seedJSON []byte

// DefaultActivities returns the activities a fresh store starts with.
func DefaultActivities() ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	if err := json.Unmarshal(seedJSON, &records); err != nil {
		return nil, fmt.Errorf("decode seed activities: %w", err)
	}
	return records, nil
}

// signupInPlace applies a signup to an in-memory slice of records.
func signupInPlace(records []model.ActivityRecord, name, email string) error {
	i := indexOf(records, name)
	if i < 0 {
		return ErrNotFound
	}
	a := &records[i].Activity
	if a.HasParticipant(email) {
		return ErrAlreadyRegistered
	}
	if a.IsFull() {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// unregisterInPlace removes email from the named record.
func unregisterInPlace(records []model.ActivityRecord, name, email string) error {
	i := indexOf(records, name)
	if i < 0 {
		return ErrNotFound
	}
	a := &records[i].Activity
	for j, p := range a.Participants {
		if p == email {
			a.Participants = append(a.Participants[:j], a.Participants[j+1:]...)
			return nil
		}
	}
	return ErrNotRegistered
}

func indexOf(records []model.ActivityRecord, name string) int {
	for i := range records {
		if records[i].Name == name {
			return i
		}
	}
	return -1
}
