package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
)

// Store files committed containers under archives/{year}/{month}/{package
// code}/ and removes the managed copy. Paths returned are absolute.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Archive moves the container at containerPath into the archive slot for
// packageCode, keyed by the commit time.
func (s *Store) Archive(containerPath, packageCode string, at time.Time) (string, error) {
	dir := filepath.Join(s.root, fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), packageCode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create archive directory")
	}

	dest := filepath.Join(dir, filepath.Base(containerPath))
	if err := os.Rename(containerPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy and remove.
		if err := copyFile(containerPath, dest); err != nil {
			return "", errors.Wrap(err, "copy container into archive")
		}
		if err := os.Remove(containerPath); err != nil {
			return "", errors.Wrap(err, "remove archived container")
		}
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dest), ".archive-*")
	if err != nil {
		return err
	}
	defer os.Remove(out.Name())

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(out.Name(), dest)
}
