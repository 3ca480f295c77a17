package lake

import "io"

// Record is one raw JSON record along with where it came from. Path is the
// object key or file name the record was decoded from, and Index is the
// record's position within that object. Together they impose a total order
// over an input set, which the table builders use to break duplicate-key
// ties deterministically.
type Record struct {
	Data  map[string]interface{}
	Path  string
	Index int
}

// Before reports whether r comes before other in input order. Paths are
// compared lexically, matching the order in which object listings return
// keys.
func (r *Record) Before(other *Record) bool {
	if r.Path != other.Path {
		return r.Path < other.Path
	}
	return r.Index < other.Index
}

// Source is the interface for getting raw data one record at a time.
// Implementations of Source should be thread safe. Record returns io.EOF
// once the source is exhausted.
type Source interface {
	Record() (*Record, error)
}

// NamedReadCloser is an io.ReadCloser which also knows the name of the
// object or file being read.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}

// RawSource is implemented by sources which deliver whole objects rather
// than individual records. A json.Source can be layered on top of a
// RawSource to get a Source.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}
