package lake

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline is the single forward pass of the job: read the song catalog,
// read the event logs, derive the five tables, write them. There are no
// retries and no checkpoints; the first error aborts the run.
type Pipeline struct {
	SongData Source
	LogData  Source
	Writer   *Writer
	Logger   *zap.Logger
}

// Run executes the pass.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	songs, err := ReadSongRecords(p.SongData)
	if err != nil {
		return errors.Wrap(err, "loading song data")
	}
	log.Info("loaded song data", zap.Int("records", len(songs)))

	events, err := ReadLogEvents(p.LogData)
	if err != nil {
		return errors.Wrap(err, "loading log data")
	}
	log.Info("loaded log data", zap.Int("records", len(events)))

	tables := BuildTables(songs, events)
	log.Info("built tables",
		zap.Int("songs", rowCount(tables.Songs)),
		zap.Int("artists", len(tables.Artists)),
		zap.Int("users", len(tables.Users)),
		zap.Int("time", rowCount(tables.Time)),
		zap.Int("songplays", rowCount(tables.Songplays)),
	)

	if err := p.Writer.WriteTables(ctx, tables); err != nil {
		return errors.Wrap(err, "writing tables")
	}
	log.Info("pipeline complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}
