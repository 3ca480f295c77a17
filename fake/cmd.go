package fake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sparkify/lake/file"
)

// Main contains the configuration for generating a miniature raw
// dataset laid out the way the real one is: one JSON file per song
// nested by id characters, and line separated event logs nested by year
// and month.
type Main struct {
	Output string `help:"Directory under which song_data/ and log_data/ are written."`
	Songs  int    `help:"Number of song records to generate."`
	Events int    `help:"Number of log events to generate."`
	Seed   int64  `help:"Random seed; the same seed regenerates the same dataset."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Output: "fakedata",
		Songs:  50,
		Events: 500,
	}
}

// Run generates the dataset.
func (m *Main) Run() error {
	ctx := context.Background()
	sink, err := file.NewSink(m.Output)
	if err != nil {
		return errors.Wrap(err, "opening output")
	}
	g := NewGenerator(m.Seed)

	songs := make([]Song, m.Songs)
	for i := range songs {
		songs[i] = g.Song()
		rec, err := json.Marshal(g.SongRecord(songs[i]))
		if err != nil {
			return errors.Wrap(err, "encoding song record")
		}
		id := songs[i].ID
		key := fmt.Sprintf("song_data/%c/%c/%c/%s.json", id[2], id[3], id[4], id)
		if err := sink.Put(ctx, key, bytes.NewReader(rec)); err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
	}

	// Events walk forward in time from Nov 1 2018, a line per event,
	// grouped into one file per day.
	ts := time.Date(2018, time.November, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	byDay := make(map[string][]byte)
	for i := 0; i < m.Events; i++ {
		ts += int64(g.rand.Intn(120_000))
		userID := 1 + g.rand.Intn(25)
		sessionID := 1 + g.rand.Intn(100)
		var ev map[string]interface{}
		if g.rand.Intn(10) < 7 {
			ev = g.NextSong(songs[g.rand.Intn(len(songs))], userID, sessionID, ts)
		} else {
			ev = g.PageView(userID, sessionID, ts)
		}
		line, err := json.Marshal(ev)
		if err != nil {
			return errors.Wrap(err, "encoding event")
		}
		day := time.UnixMilli(ts).UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], append(line, '\n')...)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		t, _ := time.Parse("2006-01-02", day)
		key := fmt.Sprintf("log_data/%d/%02d/%s-events.json", t.Year(), int(t.Month()), day)
		if err := sink.Put(ctx, key, bytes.NewReader(byDay[day])); err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
	}
	return nil
}
