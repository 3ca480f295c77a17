package file

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Sink is a lake.Sink backed by a directory on the local filesystem.
// Keys map to slash-separated paths below the root.
type Sink struct {
	root string
}

// NewSink creates the root directory if needed and returns a Sink over
// it.
func NewSink(root string) (*Sink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating sink root")
	}
	return &Sink{root: root}, nil
}

func (s *Sink) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put implements lake.Sink.
func (s *Sink) Put(ctx context.Context, key string, body io.Reader) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(err, "creating directories")
	}
	f, err := os.Create(p)
	if err != nil {
		return errors.Wrapf(err, "creating %s", p)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", p)
	}
	return errors.Wrapf(f.Close(), "closing %s", p)
}

// List implements lake.Sink.
func (s *Sink) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking sink root")
	}
	sort.Strings(keys)
	return keys, nil
}

// Copy implements lake.Sink.
func (s *Sink) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := os.Open(s.path(srcKey))
	if err != nil {
		return errors.Wrapf(err, "opening %s", srcKey)
	}
	defer src.Close()
	return s.Put(ctx, dstKey, src)
}

// Delete implements lake.Sink. Empty parent directories are pruned so a
// cleared table prefix disappears entirely, matching object storage.
func (s *Sink) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		p := s.path(key)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", key)
		}
		for dir := filepath.Dir(p); dir != s.root && strings.HasPrefix(dir, s.root); dir = filepath.Dir(dir) {
			if err := os.Remove(dir); err != nil {
				break
			}
		}
	}
	return nil
}
