// Package file stores the snapshot as an indented JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/repository"
)

// Repository keeps the snapshot in a single JSON file, e.g. data/products.json.
type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Path returns the location of the snapshot file.
func (r *Repository) Path() string {
	return r.path
}

// GetState implements repository.StateRepository.
func (r *Repository) GetState(_ context.Context) (*models.State, error) {
	const opn = "repository.file.GetState"

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrStateNotFound
		}
		return nil, fmt.Errorf("%s: failed to read %s: %w", opn, r.path, err)
	}

	var state models.State
	if err = json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%s: failed to decode %s: %w", opn, r.path, err)
	}

	return &state, nil
}

// UpdateState implements repository.StateRepository. The file is replaced atomically.
func (r *Repository) UpdateState(_ context.Context, state *models.State) error {
	const opn = "repository.file.UpdateState"

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: failed to create directory %s: %w", opn, dir, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to encode state: %w", opn, err)
	}

	tmp, err := os.CreateTemp(dir, ".products-*.json")
	if err != nil {
		return fmt.Errorf("%s: failed to create temp file: %w", opn, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op once the rename succeeded

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: failed to write state: %w", opn, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: failed to flush state: %w", opn, err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%s: failed to replace %s: %w", opn, r.path, err)
	}

	return nil
}
