package json_test

import (
	"io"
	"strings"
	"testing"

	"github.com/sparkify/lake/json"
)

func TestSourceLineDelimited(t *testing.T) {
	data := `{"page":"NextSong","userId":"7"}
{"page":"Home","userId":"7"}
{"page":"NextSong","userId":"8"}
`
	src := json.NewSource(strings.NewReader(data), "2018-11-01-events.json")
	for i := 0; i < 3; i++ {
		rec, err := src.Record()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if rec.Path != "2018-11-01-events.json" || rec.Index != i {
			t.Fatalf("record %d has position %s/%d", i, rec.Path, rec.Index)
		}
		if _, ok := rec.Data["page"].(string); !ok {
			t.Fatalf("record %d missing page: %v", i, rec.Data)
		}
	}
	if _, err := src.Record(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSourceSingleObject(t *testing.T) {
	src := json.NewSource(strings.NewReader(`{"song_id":"S1","duration":200.0}`), "S1.json")
	rec, err := src.Record()
	if err != nil {
		t.Fatalf("getting record: %v", err)
	}
	if rec.Data["song_id"] != "S1" {
		t.Fatalf("unexpected record: %v", rec.Data)
	}
	// JSON numbers always come back as float64.
	if d, ok := rec.Data["duration"].(float64); !ok || d != 200.0 {
		t.Fatalf("unexpected duration: %v", rec.Data["duration"])
	}
	if _, err := src.Record(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSourceMalformed(t *testing.T) {
	src := json.NewSource(strings.NewReader(`{"ok":true} {not json`), "bad.json")
	if _, err := src.Record(); err != nil {
		t.Fatalf("first record should decode: %v", err)
	}
	if _, err := src.Record(); err == nil || err == io.EOF {
		t.Fatalf("expected a decode error, got %v", err)
	}
}
