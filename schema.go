package lake

import (
	"fmt"
	"time"
)

// The row types below describe the columns stored in each table's
// parquet data files. Partition columns (songs: year/artist_id, time and
// songplays: year/month) are not repeated inside the files; they are
// encoded in the directory path, which is how downstream engines expect
// partitioned datasets to be laid out.

// SongRow is one row of the songs dimension, keyed by song_id.
type SongRow struct {
	SongID   string  `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title    string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Duration float64 `parquet:"name=duration, type=DOUBLE"`
}

// ArtistRow is one row of the artists dimension, keyed by artist_id.
type ArtistRow struct {
	ArtistID  string   `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name      string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Location  string   `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude  *float64 `parquet:"name=latitude, type=DOUBLE, repetitiontype=OPTIONAL"`
	Longitude *float64 `parquet:"name=longitude, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// UserRow is one row of the users dimension, keyed by user_id, holding
// the user's latest known state.
type UserRow struct {
	UserID    string `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	FirstName string `parquet:"name=first_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	LastName  string `parquet:"name=last_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Gender    string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level     string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// TimeRow is one row of the time dimension, keyed by start_time. The
// year and month components live in the partition path.
type TimeRow struct {
	StartTime int64 `parquet:"name=start_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Hour      int32 `parquet:"name=hour, type=INT32"`
	Day       int32 `parquet:"name=day, type=INT32"`
	Week      int32 `parquet:"name=week, type=INT32"`
	Weekday   int32 `parquet:"name=weekday, type=INT32"`
}

// SongplayRow is one row of the songplays fact table, one per NextSong
// event. SongID and ArtistID are nil when the event's (song, artist,
// length) triple matched nothing in the song catalog.
type SongplayRow struct {
	SongplayID int64   `parquet:"name=songplay_id, type=INT64"`
	StartTime  int64   `parquet:"name=start_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	UserID     string  `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level      string  `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8"`
	SongID     *string `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ArtistID   *string `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SessionID  int64   `parquet:"name=session_id, type=INT64"`
	Location   string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	UserAgent  string  `parquet:"name=user_agent, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// SongPartition is the (year, artist_id) partition key of the songs
// table.
type SongPartition struct {
	Year     int32
	ArtistID string
}

// Path returns the partition's directory path below the table root.
func (p SongPartition) Path() string {
	return fmt.Sprintf("year=%d/artist_id=%s", p.Year, p.ArtistID)
}

// MonthPartition is the (year, month) partition key of the time and
// songplays tables.
type MonthPartition struct {
	Year  int32
	Month int32
}

// Path returns the partition's directory path below the table root.
func (p MonthPartition) Path() string {
	return fmt.Sprintf("year=%d/month=%d", p.Year, p.Month)
}

// Prefix returns the partition's id prefix for PartitionNexter.
func (p MonthPartition) Prefix() uint64 {
	return uint64(p.Year)*100 + uint64(p.Month)
}

// TimeParts is the calendar decomposition of a timestamp. Conventions
// follow the downstream engine: weekday runs 1 (Sunday) through 7
// (Saturday) and week is the ISO week of year. Fields are derived in
// UTC so that a stored start_time always reproduces the same parts.
type TimeParts struct {
	Hour    int32
	Day     int32
	Week    int32
	Month   int32
	Year    int32
	Weekday int32
}

func timeFromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// DecomposeTime splits t into its calendar components.
func DecomposeTime(t time.Time) TimeParts {
	t = t.UTC()
	_, week := t.ISOWeek()
	return TimeParts{
		Hour:    int32(t.Hour()),
		Day:     int32(t.Day()),
		Week:    int32(week),
		Month:   int32(t.Month()),
		Year:    int32(t.Year()),
		Weekday: int32(t.Weekday()) + 1,
	}
}
