// Package cache keeps Source responses so repeated runs avoid refetching.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store is a byte-oriented key/value cache. persistence.Redis satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DirStore keeps one "<key>.json" file per entry under Dir.
type DirStore struct {
	Dir string
}

// NewDirStore creates dir when missing.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &DirStore{Dir: dir}, nil
}

func (d *DirStore) path(key string) string {
	return filepath.Join(d.Dir, key+".json")
}

// Get reads the file for key. A missing file is a miss.
func (d *DirStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes value through a temp file so readers never see partial entries.
func (d *DirStore) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(d.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), d.path(key))
}
