package lake

import (
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SongRecord is one song-catalog record, one per raw JSON file.
type SongRecord struct {
	SongID          string
	Title           string
	ArtistID        string
	ArtistName      string
	ArtistLocation  string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	Duration        float64
	Year            int32
	NumSongs        int32

	Path  string
	Index int
}

func (s *SongRecord) before(o *SongRecord) bool {
	return posBefore(s.Path, s.Index, o.Path, o.Index)
}

// NextSongPage marks the log events which represent actual song plays.
// Everything else (navigation, auth, etc.) is noise relative to the fact
// table.
const NextSongPage = "NextSong"

// LogEvent is one user-interaction record from the raw event logs, one
// per line.
type LogEvent struct {
	Artist        string
	Auth          string
	FirstName     string
	Gender        string
	ItemInSession int32
	LastName      string
	Length        float64
	Level         string
	Location      string
	Method        string
	Page          string
	Registration  int64
	SessionID     int64
	Song          string
	Status        int32
	TS            int64
	UserAgent     string
	UserID        string

	Path  string
	Index int
}

func (e *LogEvent) before(o *LogEvent) bool {
	return posBefore(e.Path, e.Index, o.Path, o.Index)
}

// IsNextSong reports whether the event is an actual song play.
func (e *LogEvent) IsNextSong() bool { return e.Page == NextSongPage }

// StartTime converts the raw epoch-millisecond ts field into a UTC
// timestamp.
func (e *LogEvent) StartTime() time.Time { return time.UnixMilli(e.TS).UTC() }

// SongRecordFromMap builds a SongRecord from a decoded JSON object.
// Missing or mistyped fields are left at their zero values rather than
// treated as errors; the raw data is never validated.
func SongRecordFromMap(m map[string]interface{}) *SongRecord {
	s := &SongRecord{
		SongID:         stringField(m, "song_id"),
		Title:          stringField(m, "title"),
		ArtistID:       stringField(m, "artist_id"),
		ArtistName:     stringField(m, "artist_name"),
		ArtistLocation: stringField(m, "artist_location"),
	}
	if f, ok := floatField(m, "artist_latitude"); ok {
		s.ArtistLatitude = &f
	}
	if f, ok := floatField(m, "artist_longitude"); ok {
		s.ArtistLongitude = &f
	}
	if f, ok := floatField(m, "duration"); ok {
		s.Duration = f
	}
	if f, ok := floatField(m, "year"); ok {
		s.Year = int32(f)
	}
	if f, ok := floatField(m, "num_songs"); ok {
		s.NumSongs = int32(f)
	}
	return s
}

// LogEventFromMap builds a LogEvent from a decoded JSON object with the
// same lenient policy as SongRecordFromMap. The userId field appears as
// a string of digits in most of the data but as a bare number in some
// files; both forms are accepted.
func LogEventFromMap(m map[string]interface{}) *LogEvent {
	e := &LogEvent{
		Artist:    stringField(m, "artist"),
		Auth:      stringField(m, "auth"),
		FirstName: stringField(m, "firstName"),
		Gender:    stringField(m, "gender"),
		LastName:  stringField(m, "lastName"),
		Level:     stringField(m, "level"),
		Location:  stringField(m, "location"),
		Method:    stringField(m, "method"),
		Page:      stringField(m, "page"),
		Song:      stringField(m, "song"),
		UserAgent: stringField(m, "userAgent"),
	}
	if f, ok := floatField(m, "itemInSession"); ok {
		e.ItemInSession = int32(f)
	}
	if f, ok := floatField(m, "length"); ok {
		e.Length = f
	}
	if f, ok := floatField(m, "registration"); ok {
		e.Registration = int64(f)
	}
	if f, ok := floatField(m, "sessionId"); ok {
		e.SessionID = int64(f)
	}
	if f, ok := floatField(m, "status"); ok {
		e.Status = int32(f)
	}
	if f, ok := floatField(m, "ts"); ok {
		e.TS = int64(f)
	}
	if v, ok := m["userId"].(string); ok {
		e.UserID = v
	} else if f, ok := floatField(m, "userId"); ok {
		e.UserID = strconv.FormatInt(int64(f), 10)
	}
	return e
}

// ReadSongRecords drains src, converting every raw record into a
// SongRecord.
func ReadSongRecords(src Source) ([]*SongRecord, error) {
	var recs []*SongRecord
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading song data")
		}
		s := SongRecordFromMap(rec.Data)
		s.Path, s.Index = rec.Path, rec.Index
		recs = append(recs, s)
	}
}

// ReadLogEvents drains src, converting every raw record into a LogEvent.
func ReadLogEvents(src Source) ([]*LogEvent, error) {
	var events []*LogEvent
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading log data")
		}
		e := LogEventFromMap(rec.Data)
		e.Path, e.Index = rec.Path, rec.Index
		events = append(events, e)
	}
}

func posBefore(path1 string, idx1 int, path2 string, idx2 int) bool {
	if path1 != path2 {
		return path1 < path2
	}
	return idx1 < idx2
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// floatField pulls a numeric field out of a decoded JSON object. The
// stdlib decoder produces float64 for every JSON number.
func floatField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}
