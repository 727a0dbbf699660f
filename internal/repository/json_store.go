package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// JSONFileRepository keeps all activities in one JSON array on disk and
// rewrites the whole file on every change.
type JSONFileRepository struct {
	mu   sync.Mutex
	path string
}

// NewJSONFileRepository opens the file at path, creating it from seed when
// it does not exist yet.
func NewJSONFileRepository(path string, seed []model.ActivityRecord) (*JSONFileRepository, error) {
	r := &JSONFileRepository{path: path}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if seed == nil {
			seed = []model.ActivityRecord{}
		}
		if err := r.save(seed); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("stat activities file: %w", err)
	default:
		if _, err := r.load(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// List returns all activities in file order.
func (r *JSONFileRepository) List(_ context.Context) ([]model.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Signup adds email to the named activity.
func (r *JSONFileRepository) Signup(_ context.Context, name, email string) error {
	return r.update(func(records []model.ActivityRecord) error {
		return signupInPlace(records, name, email)
	})
}

// Unregister removes email from the named activity.
func (r *JSONFileRepository) Unregister(_ context.Context, name, email string) error {
	return r.update(func(records []model.ActivityRecord) error {
		return unregisterInPlace(records, name, email)
	})
}

func (r *JSONFileRepository) update(apply func([]model.ActivityRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	if err := apply(records); err != nil {
		return err
	}
	return r.save(records)
}

func (r *JSONFileRepository) load() ([]model.ActivityRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read activities file: %w", err)
	}
	var records []model.ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode activities file: %w", err)
	}
	for i := range records {
		if records[i].Participants == nil {
			records[i].Participants = []string{}
		}
	}
	return records, nil
}

// save writes through a temp file in the same directory so readers never
// observe a half-written file.
func (r *JSONFileRepository) save(records []model.ActivityRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".activities-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write activities: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace activities file: %w", err)
	}
	return nil
}
