// Package service implements the activities API business rules: filtering,
// searching and sorting the activity list, and validating signups and
// removals before they reach the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/Shivanand-hulikatti/school-activities/internal/repository"
)

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ActivityService orchestrates activity operations.
type ActivityService struct {
	activities repository.ActivityRepository
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities repository.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activities}
}

// List returns the activities matching c, in result order.
//
// Category matches case-insensitively; search is a case-insensitive
// substring of the name or the description; sort "name" orders by the
// lower-cased name and "date" by the date string. Any other sort value keeps
// storage order.
func (s *ActivityService) List(ctx context.Context, c model.Criteria) (*model.ActivitySet, error) {
	records, err := s.activities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	if c.Category != "" {
		records = filter(records, func(r model.ActivityRecord) bool {
			return strings.EqualFold(r.Category, c.Category)
		})
	}
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		records = filter(records, func(r model.ActivityRecord) bool {
			return strings.Contains(strings.ToLower(r.Name), needle) ||
				strings.Contains(strings.ToLower(r.Description), needle)
		})
	}

	switch c.Sort {
	case model.SortName:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		})
	case model.SortDate:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date < records[j].Date
		})
	}

	return model.NewActivitySet(records...), nil
}

// Signup validates the request and registers email for the named activity.
// It returns the confirmation message shown to the user.
func (s *ActivityService) Signup(ctx context.Context, name, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate(name, email); err != nil {
		return "", err
	}

	if err := s.activities.Signup(ctx, name, email); err != nil {
		// Surface domain errors directly so handlers can set the right status.
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("signup for activity: %w", err)
	}
	return fmt.Sprintf("Signed up %s for %s", email, name), nil
}

// Unregister removes email from the named activity and returns the
// confirmation message.
func (s *ActivityService) Unregister(ctx context.Context, name, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate(name, email); err != nil {
		return "", err
	}

	if err := s.activities.Unregister(ctx, name, email); err != nil {
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("unregister from activity: %w", err)
	}
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

func validate(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: email is not a valid email address", ErrInvalidInput)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrAlreadyRegistered) ||
		errors.Is(err, repository.ErrNotRegistered) ||
		errors.Is(err, repository.ErrActivityFull)
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

func filter(records []model.ActivityRecord, keep func(model.ActivityRecord) bool) []model.ActivityRecord {
	out := records[:0]
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
