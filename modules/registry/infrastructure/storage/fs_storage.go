package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
)

// FSStorage keeps attachment payloads on the local filesystem under a single
// root. Keys are relative paths; writes go through a temp file and rename so
// a crash never leaves a half-written attachment at its final key.
type FSStorage struct {
	root string
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{root: root}
}

var _ attachment.Storage = (*FSStorage)(nil)

func (s *FSStorage) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, errors.Wrapf(err, "create storage dir for %s", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return 0, errors.Wrapf(err, "write attachment %s", key)
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrapf(err, "close attachment %s", key)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, errors.Wrapf(err, "finalize attachment %s", key)
	}
	return n, nil
}

func (s *FSStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, errors.Wrapf(err, "open attachment %s", key)
	}
	return f, nil
}

func (s *FSStorage) Remove(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove attachment %s", key)
	}
	return nil
}
