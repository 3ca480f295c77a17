package etl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sparkify/lake/etl"
	"github.com/sparkify/lake/fake"
)

// TestRunLocal generates a small raw dataset and runs the whole job
// against local directories, checking that all five tables come out the
// other end.
func TestRunLocal(t *testing.T) {
	raw := t.TempDir()
	gen := fake.NewMain()
	gen.Output = raw
	gen.Songs = 10
	gen.Events = 100
	if err := gen.Run(); err != nil {
		t.Fatalf("generating raw data: %v", err)
	}

	out := t.TempDir()
	m := etl.NewMain()
	m.SongData = filepath.Join(raw, "song_data")
	m.LogData = filepath.Join(raw, "log_data")
	m.Output = out
	if err := m.Run(); err != nil {
		t.Fatalf("running job: %v", err)
	}

	for _, table := range []string{"songs", "artists", "users", "time", "songplays"} {
		entries, err := os.ReadDir(filepath.Join(out, table))
		if err != nil {
			t.Fatalf("missing table %s: %v", table, err)
		}
		if len(entries) == 0 {
			t.Fatalf("table %s is empty", table)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "_staging")); !os.IsNotExist(err) {
		t.Fatalf("staging prefix left behind: %v", err)
	}
}

func TestRunRequiresOutput(t *testing.T) {
	m := etl.NewMain()
	m.Output = ""
	if err := m.Run(); err == nil {
		t.Fatal("expected an error for a missing output path")
	}
}
