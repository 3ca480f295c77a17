package fake_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sparkify/lake"
	"github.com/sparkify/lake/fake"
	"github.com/sparkify/lake/file"
)

func TestGeneratorDeterministic(t *testing.T) {
	a, b := fake.NewGenerator(42), fake.NewGenerator(42)
	for i := 0; i < 10; i++ {
		if a.Song() != b.Song() {
			t.Fatalf("same seed produced different songs at %d", i)
		}
	}
}

func TestNextSongMatchesCatalog(t *testing.T) {
	g := fake.NewGenerator(1)
	s := g.Song()
	ev := g.NextSong(s, 7, 38, 1541105830796)
	// A play event carries the exact triple the pipeline joins on.
	if ev["song"] != s.Title || ev["artist"] != s.Artist || ev["length"] != s.Duration {
		t.Fatalf("event does not reference its song: %v vs %+v", ev, s)
	}
	if ev["page"] != "NextSong" {
		t.Fatalf("unexpected page: %v", ev["page"])
	}
}

func TestMainLayout(t *testing.T) {
	dir := t.TempDir()
	m := fake.NewMain()
	m.Output = dir
	m.Songs = 5
	m.Events = 40
	if err := m.Run(); err != nil {
		t.Fatalf("generating dataset: %v", err)
	}

	songs, err := file.NewSource(filepath.Join(dir, "song_data"))
	if err != nil {
		t.Fatalf("opening song data: %v", err)
	}
	recs, err := lake.ReadSongRecords(songs)
	if err != nil {
		t.Fatalf("reading song data: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 song records, got %d", len(recs))
	}
	for _, r := range recs {
		// song_data/<c>/<c>/<c>/<id>.json, keyed off the id characters
		// after the SO prefix.
		parts := strings.Split(r.Path, "/")
		if len(parts) != 4 || parts[3] != r.SongID+".json" {
			t.Fatalf("unexpected song file layout: %s", r.Path)
		}
	}

	logs, err := file.NewSource(filepath.Join(dir, "log_data"))
	if err != nil {
		t.Fatalf("opening log data: %v", err)
	}
	events, err := lake.ReadLogEvents(logs)
	if err != nil {
		t.Fatalf("reading log data: %v", err)
	}
	if len(events) != 40 {
		t.Fatalf("expected 40 events, got %d", len(events))
	}
	for _, e := range events {
		if !strings.HasPrefix(e.Path, "2018/11/2018-11-") || !strings.HasSuffix(e.Path, "-events.json") {
			t.Fatalf("unexpected log file layout: %s", e.Path)
		}
		if e.UserID == "" || e.TS == 0 {
			t.Fatalf("event missing identity fields: %+v", e)
		}
	}
}
