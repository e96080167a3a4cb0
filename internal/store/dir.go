package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/engine/internal/errors"
)

// DirStore stores snapshots as files below a directory.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E301").WithDetail("create " + dir).Wrap(err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("E301").WithDetail(fmt.Sprintf("invalid snapshot key %q", key))
	}
	return filepath.Join(s.dir, clean), nil
}

// Get reads the snapshot file for key.
func (s *DirStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.New("E301").WithDetail("read " + key).Wrap(err)
	}
	return data, nil
}

// Put writes the snapshot through a temp file so readers never see a
// partial file.
func (s *DirStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errors.New("E301").WithDetail("write " + key).Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".snapshot-*")
	if err != nil {
		return errors.New("E301").WithDetail("write " + key).Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.New("E301").WithDetail("write " + key).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.New("E301").WithDetail("write " + key).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return errors.New("E301").WithDetail("write " + key).Wrap(err)
	}
	return nil
}
