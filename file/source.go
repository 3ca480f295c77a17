package file

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sparkify/lake"
	"github.com/sparkify/lake/json"
)

// NewSource gets a lake.Source which reads json records from the given
// file, or from every file under the given directory. The raw datasets
// nest files several directories deep (song data by id characters, log
// data by year and month), so discovery is recursive.
func NewSource(pathname string) (lake.Source, error) {
	rs, err := NewRawSource(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "getting raw source")
	}
	return json.NewSourceFromRawSource(rs), nil
}

// RawSource is a lake.RawSource over local files.
type RawSource struct {
	root    string
	files   []string
	fileIdx *uint64
}

// NewRawSource discovers the files under pathname. Files are delivered
// in sorted path order.
func NewRawSource(pathname string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		root:    pathname,
		fileIdx: &fileIdx,
	}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		s.files = []string{pathname}
		s.root = filepath.Dir(pathname)
		return s, nil
	}
	err = filepath.WalkDir(pathname, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		s.files = append(s.files, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking directory")
	}
	sort.Strings(s.files)
	return s, nil
}

// NextReader implements lake.RawSource.
func (s *RawSource) NextReader() (lake.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}
	f, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	return &namedFile{File: f, root: s.root}, nil
}

type namedFile struct {
	*os.File
	root string
}

// Name returns the file's path relative to the source root, slash
// separated, so that record paths are stable across machines.
func (f *namedFile) Name() string {
	rel, err := filepath.Rel(f.root, f.File.Name())
	if err != nil {
		return filepath.ToSlash(f.File.Name())
	}
	return filepath.ToSlash(rel)
}
