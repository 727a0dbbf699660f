// Package board holds the state of one user's activity board: the last
// fetched activity set, the dropdown options, the status message slot and
// the bookkeeping that decides which fetch response is shown.
//
// The server is the only authority over activities. The board never edits
// a fetched set; after every successful write it fetches again.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Shivanand-hulikatti/school-activities/internal/client"
	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// User-facing messages for failures without a usable server answer.
const (
	LoadFailedMessage       = "Failed to load activities. Please try again later."
	SignupFailedMessage     = "Failed to sign up. Please try again."
	UnregisterFailedMessage = "Failed to unregister. Please try again."
	FallbackErrorMessage    = "An error occurred"
)

// API is the part of the activities API the board uses. *client.Client
// implements it.
type API interface {
	Activities(ctx context.Context, c model.Criteria) (*model.ActivitySet, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// View is a snapshot of what the board displays.
type View struct {
	// Criteria are the filter inputs of the last applied fetch.
	Criteria model.Criteria
	// Activities is nil until a fetch succeeds and after a failed one.
	Activities *model.ActivitySet
	// Options are the activity names offered in the signup dropdown. A
	// failed fetch leaves them as they were.
	Options    []string
	LoadFailed bool
}

// Outcome describes the effects of a signup or unregister action.
type Outcome struct {
	Status    model.Status
	ResetForm bool
	Refetched bool
	View      View
}

// Board is one user's board state. It is safe for concurrent use.
type Board struct {
	api      API
	log      *slog.Logger
	notifier *Notifier

	mu   sync.Mutex
	view View
	// issued counts started fetches; applied is the sequence number of the
	// fetch whose result is in view.
	issued  uint64
	applied uint64
}

// New returns an empty board.
func New(api API, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{api: api, log: log, notifier: NewNotifier()}
}

// Notifier returns the board's status slot.
func (b *Board) Notifier() *Notifier {
	return b.notifier
}

// Snapshot returns the current view without fetching.
func (b *Board) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Load fetches the activities for c and replaces the view with the result.
// A response that resolves after a newer fetch has already been applied is
// discarded and the newer view returned instead. Failures never escape:
// the list is replaced by LoadFailedMessage and the dropdown is kept.
func (b *Board) Load(ctx context.Context, c model.Criteria) View {
	b.mu.Lock()
	b.issued++
	seq := b.issued
	b.mu.Unlock()

	set, err := b.api.Activities(ctx, c)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq < b.applied {
		b.log.Debug("discarding stale activities response", slog.Uint64("seq", seq), slog.Uint64("applied", b.applied))
		return b.view
	}
	b.applied = seq
	b.view.Criteria = c

	if err != nil {
		b.log.Error("fetch activities failed", slog.Any("err", err))
		b.view.Activities = nil
		b.view.LoadFailed = true
		return b.view
	}

	b.view.Activities = set
	b.view.Options = set.Names()
	b.view.LoadFailed = false
	return b.view
}

// Signup submits a signup for email. On success the form is reset and the
// board re-fetches with c, the filter inputs visible at submit time.
func (b *Board) Signup(ctx context.Context, activity, email string, c model.Criteria) Outcome {
	msg, err := b.api.Signup(ctx, activity, email)
	out := b.settle(ctx, msg, err, SignupFailedMessage, c)
	out.ResetForm = err == nil
	return out
}

// Unregister removes email from activity. On success the board re-fetches
// with c.
func (b *Board) Unregister(ctx context.Context, activity, email string, c model.Criteria) Outcome {
	msg, err := b.api.Unregister(ctx, activity, email)
	return b.settle(ctx, msg, err, UnregisterFailedMessage, c)
}

// settle turns the result of a write into a status message and, for a
// success, a fresh view.
func (b *Board) settle(ctx context.Context, msg string, err error, transportMsg string, c model.Criteria) Outcome {
	var out Outcome
	var apiErr *client.APIError

	switch {
	case err == nil:
		out.Status = model.Status{Text: msg, Kind: model.StatusSuccess}
	case errors.As(err, &apiErr):
		text := apiErr.Detail
		if text == "" {
			text = FallbackErrorMessage
		}
		out.Status = model.Status{Text: text, Kind: model.StatusError}
	default:
		b.log.Error("activities api request failed", slog.Any("err", err))
		out.Status = model.Status{Text: transportMsg, Kind: model.StatusError}
	}

	b.notifier.Show(out.Status.Text, out.Status.Kind)

	if err == nil {
		out.View = b.Load(ctx, c)
		out.Refetched = true
	} else {
		out.View = b.Snapshot()
	}
	return out
}
