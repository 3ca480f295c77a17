package lake_test

import (
	"testing"
	"time"

	"github.com/sparkify/lake"
)

func songRecord(id, title, artistID, artistName string, duration float64, year int32) *lake.SongRecord {
	return &lake.SongRecord{
		SongID:     id,
		Title:      title,
		ArtistID:   artistID,
		ArtistName: artistName,
		Duration:   duration,
		Year:       year,
	}
}

func nextSong(song, artist string, length float64, userID string, ts int64) *lake.LogEvent {
	return &lake.LogEvent{
		Song:      song,
		Artist:    artist,
		Length:    length,
		UserID:    userID,
		TS:        ts,
		SessionID: 38,
		Level:     "free",
		Page:      "NextSong",
	}
}

func TestBuildSongplaysResolvesIDs(t *testing.T) {
	songs := []*lake.SongRecord{
		songRecord("S1", "Song A", "AR1", "Artist X", 200.0, 2000),
	}
	plays := []*lake.LogEvent{
		nextSong("Song A", "Artist X", 200.0, "7", 1541105830796),
	}
	out := lake.BuildSongplays(songs, plays)

	p := lake.MonthPartition{Year: 2018, Month: 11}
	rows := out[p]
	if len(rows) != 1 {
		t.Fatalf("expected 1 row in %v, got %d", p, len(rows))
	}
	row := rows[0]
	if row.SongID == nil || *row.SongID != "S1" {
		t.Fatalf("song id not resolved: %v", row.SongID)
	}
	if row.ArtistID == nil || *row.ArtistID != "AR1" {
		t.Fatalf("artist id not resolved: %v", row.ArtistID)
	}
	if row.UserID != "7" || row.Level != "free" || row.SessionID != 38 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.StartTime != 1541105830796 {
		t.Fatalf("unexpected start time: %d", row.StartTime)
	}
}

func TestBuildSongplaysKeepsUnmatchedEvents(t *testing.T) {
	songs := []*lake.SongRecord{
		songRecord("S1", "Song A", "AR1", "Artist X", 200.0, 2000),
	}
	// Same song and artist but a mismatched duration: the triple does
	// not match, the row is kept with null ids.
	plays := []*lake.LogEvent{
		nextSong("Song A", "Artist X", 999.0, "7", 1541105830796),
	}
	out := lake.BuildSongplays(songs, plays)

	rows := out[lake.MonthPartition{Year: 2018, Month: 11}]
	if len(rows) != 1 {
		t.Fatalf("unmatched event must not be dropped, got %d rows", len(rows))
	}
	if rows[0].SongID != nil || rows[0].ArtistID != nil {
		t.Fatalf("expected null ids, got %v/%v", rows[0].SongID, rows[0].ArtistID)
	}
	if rows[0].UserID != "7" || rows[0].SessionID != 38 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestBuildSongplaysUniqueIDs(t *testing.T) {
	var plays []*lake.LogEvent
	// Events across two months so two partitions get ids.
	for i := 0; i < 5; i++ {
		e := nextSong("Song A", "Artist X", 200.0, "7", 1541105830796+int64(i))
		e.Index = i
		plays = append(plays, e)
	}
	dec := nextSong("Song B", "Artist Y", 100.0, "8", 1543968000000) // 2018-12-05
	dec.Index = 5
	plays = append(plays, dec)

	out := lake.BuildSongplays(nil, plays)
	seen := make(map[int64]bool)
	n := 0
	for _, rows := range out {
		for _, r := range rows {
			if seen[r.SongplayID] {
				t.Fatalf("duplicate songplay id %d", r.SongplayID)
			}
			seen[r.SongplayID] = true
			n++
		}
	}
	if n != len(plays) {
		t.Fatalf("expected %d rows, got %d", len(plays), n)
	}
}

func TestFilterNextSong(t *testing.T) {
	events := []*lake.LogEvent{
		nextSong("Song A", "Artist X", 200.0, "7", 1541105830796),
		{Page: "Home", UserID: "9", TS: 1541105830796},
		{Page: "Logout", UserID: "9", TS: 1541105830797},
	}
	plays := lake.FilterNextSong(events)
	if len(plays) != 1 {
		t.Fatalf("expected 1 play, got %d", len(plays))
	}

	users := lake.BuildUsers(plays)
	if len(users) != 1 || users[0].UserID != "7" {
		t.Fatalf("non-NextSong users leaked into the table: %+v", users)
	}
	times := lake.BuildTime(plays)
	if n := 1; len(times[lake.MonthPartition{Year: 2018, Month: 11}]) != n {
		t.Fatalf("unexpected time rows: %+v", times)
	}
}

func TestBuildSongsDeduplicates(t *testing.T) {
	a := songRecord("S1", "Song A", "AR1", "Artist X", 200.0, 2000)
	a.Path, a.Index = "song_data/A/A/A/S1.json", 0
	b := songRecord("S1", "Song A (remaster)", "AR1", "Artist X", 201.0, 2001)
	b.Path, b.Index = "song_data/A/A/B/S1.json", 0
	c := songRecord("S2", "Song B", "AR1", "Artist X", 100.0, 0)
	c.Path, c.Index = "song_data/A/A/C/S2.json", 0

	out := lake.BuildSongs([]*lake.SongRecord{a, b, c})
	total := 0
	for _, rows := range out {
		total += len(rows)
	}
	if total != 2 {
		t.Fatalf("expected one row per distinct song id, got %d", total)
	}
	// The record latest in input order wins.
	rows := out[lake.SongPartition{Year: 2001, ArtistID: "AR1"}]
	if len(rows) != 1 || rows[0].Title != "Song A (remaster)" {
		t.Fatalf("wrong duplicate kept: %+v", out)
	}
}

func TestBuildArtistsDeduplicates(t *testing.T) {
	lat := 37.8
	a := songRecord("S1", "Song A", "AR1", "Artist X", 200.0, 2000)
	a.ArtistLatitude = &lat
	a.Path = "a.json"
	b := songRecord("S2", "Song B", "AR1", "Artist X", 100.0, 2001)
	b.Path = "b.json"

	artists := lake.BuildArtists([]*lake.SongRecord{a, b})
	if len(artists) != 1 {
		t.Fatalf("expected 1 artist, got %d", len(artists))
	}
	if artists[0].ArtistID != "AR1" || artists[0].Name != "Artist X" {
		t.Fatalf("unexpected artist: %+v", artists[0])
	}
	// b came later, and b has no latitude.
	if artists[0].Latitude != nil {
		t.Fatalf("wrong duplicate kept: %+v", artists[0])
	}
}

func TestBuildUsersKeepsLatestState(t *testing.T) {
	early := nextSong("Song A", "Artist X", 200.0, "7", 1541105830796)
	early.Level = "free"
	late := nextSong("Song B", "Artist Y", 100.0, "7", 1541109999999)
	late.Level = "paid"

	// Input order should not matter; the greater ts wins.
	users := lake.BuildUsers([]*lake.LogEvent{late, early})
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Level != "paid" {
		t.Fatalf("expected latest level to win, got %q", users[0].Level)
	}
}

func TestBuildTimeRoundTrip(t *testing.T) {
	plays := []*lake.LogEvent{
		nextSong("Song A", "Artist X", 200.0, "7", 1541105830796),
		nextSong("Song A", "Artist X", 200.0, "8", 1541105830796), // duplicate ts
		nextSong("Song B", "Artist Y", 100.0, "7", 1543968000000),
	}
	out := lake.BuildTime(plays)
	total := 0
	for p, rows := range out {
		for _, row := range rows {
			total++
			// Re-deriving every field from the stored start_time must
			// reproduce the stored values exactly.
			parts := lake.DecomposeTime(time.UnixMilli(row.StartTime))
			if parts.Hour != row.Hour || parts.Day != row.Day || parts.Week != row.Week || parts.Weekday != row.Weekday {
				t.Fatalf("stored parts diverge from start_time: %+v vs %+v", row, parts)
			}
			if parts.Year != p.Year || parts.Month != p.Month {
				t.Fatalf("row filed under wrong partition: %+v in %v", row, p)
			}
		}
	}
	if total != 2 {
		t.Fatalf("expected 2 distinct timestamps, got %d", total)
	}
}
