package json

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/sparkify/lake"
)

// Source is a lake.Source which decodes a stream of JSON objects from a
// reader. It handles both whole-file records (one object per file) and
// line-separated logs, since the decoder does not care about the
// whitespace between values.
type Source struct {
	name string
	dec  *json.Decoder
	idx  int
}

// NewSource gets a new json source which will decode from the given
// reader. name is recorded as the Path of every record produced.
func NewSource(r io.Reader, name string) *Source {
	return &Source{
		name: name,
		dec:  json.NewDecoder(r),
	}
}

// Record implements lake.Source. It returns the next json object that
// can be decoded from the reader.
func (s *Source) Record() (*lake.Record, error) {
	var data map[string]interface{}
	if err := s.dec.Decode(&data); err != nil {
		return nil, err
	}
	rec := &lake.Record{Data: data, Path: s.name, Index: s.idx}
	s.idx++
	return rec, nil
}

type rawSourceSource struct {
	rs lake.RawSource

	cur lake.NamedReadCloser
	s   *Source
}

// NewSourceFromRawSource chains the records of every reader produced by
// rs into a single lake.Source.
func NewSourceFromRawSource(rs lake.RawSource) lake.Source {
	return &rawSourceSource{rs: rs}
}

func (r *rawSourceSource) Record() (*lake.Record, error) {
	if r.s == nil {
		reader, err := r.rs.NextReader()
		if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.Wrap(err, "getting next reader")
		}
		r.cur = reader
		r.s = NewSource(reader, reader.Name())
	}
	rec, err := r.s.Record()
	if err == io.EOF {
		r.cur.Close()
		r.s = nil
		return r.Record()
	} else if err != nil {
		return nil, errors.Wrapf(err, "decoding json from %s", r.cur.Name())
	}
	return rec, nil
}
