// Package mocks provides testify mocks for the service layer dependencies.
package mocks

import (
	"context"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock of repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

// List provides a mock function.
func (m *ActivityRepository) List(ctx context.Context) ([]model.ActivityRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]model.ActivityRecord)
	return records, args.Error(1)
}

// Signup provides a mock function.
func (m *ActivityRepository) Signup(ctx context.Context, name, email string) error {
	return m.Called(ctx, name, email).Error(0)
}

// Unregister provides a mock function.
func (m *ActivityRepository) Unregister(ctx context.Context, name, email string) error {
	return m.Called(ctx, name, email).Error(0)
}
