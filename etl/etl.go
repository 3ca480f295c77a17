// Package etl wires the full Sparkify job together: configuration in, a
// run of the pipeline out. All parameters, including AWS credentials,
// live on the Main struct and are passed down explicitly; nothing reads
// ambient global state.
package etl

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sparkify/lake"
	"github.com/sparkify/lake/file"
	"github.com/sparkify/lake/s3"
)

// Main contains the configuration for a run. Paths may be
// s3://bucket/prefix (s3a:// is accepted for parity with the original
// dataset references) or local directories.
type Main struct {
	SongData        string `help:"Root path of the raw song data."`
	LogData         string `help:"Root path of the raw event log data."`
	Output          string `help:"Root path under which the five output tables are written."`
	Region          string `help:"AWS region for S3 paths."`
	AccessKeyID     string `help:"AWS access key id. With secret-access-key, used instead of the ambient credential chain."`
	SecretAccessKey string `help:"AWS secret access key."`
	Concurrency     int    `help:"Concurrent object fetches per source."`
	Staged          bool   `help:"Stage all five tables and publish them together at the end of the run."`
	Verbose         bool   `help:"Log at debug level."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		SongData:    "s3://udacity-dend/song_data",
		LogData:     "s3://udacity-dend/log_data",
		Region:      "us-west-2",
		Concurrency: 8,
		Staged:      true,
	}
}

// Run executes the job.
func (m *Main) Run() error {
	if m.Output == "" {
		return errors.New("output path is required")
	}
	log, err := m.logger()
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer log.Sync()
	ctx := context.Background()

	var sess *session.Session
	if isS3Path(m.SongData) || isS3Path(m.LogData) || isS3Path(m.Output) {
		sess, err = m.session()
		if err != nil {
			return errors.Wrap(err, "getting aws session")
		}
	}

	songSrc, err := m.openSource(sess, m.SongData)
	if err != nil {
		return errors.Wrap(err, "opening song data")
	}
	logSrc, err := m.openSource(sess, m.LogData)
	if err != nil {
		return errors.Wrap(err, "opening log data")
	}
	sink, err := m.openSink(sess, m.Output)
	if err != nil {
		return errors.Wrap(err, "opening output")
	}

	p := &lake.Pipeline{
		SongData: songSrc,
		LogData:  logSrc,
		Writer:   lake.NewWriter(sink, lake.OptWriterStaged(m.Staged), lake.OptWriterLogger(log)),
		Logger:   log,
	}
	return p.Run(ctx)
}

func (m *Main) logger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if m.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// session builds the one AWS session shared by every S3 source and the
// sink. Credentials from the configuration take precedence over the
// ambient chain.
func (m *Main) session() (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(m.Region)}
	if m.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(m.AccessKeyID, m.SecretAccessKey, "")
	}
	return session.NewSession(cfg)
}

func (m *Main) openSource(sess *session.Session, pth string) (lake.Source, error) {
	if bucket, prefix, ok := splitS3Path(pth); ok {
		return s3.NewSource(
			s3.OptSrcSession(sess),
			s3.OptSrcBucket(bucket),
			s3.OptSrcPrefix(prefix),
			s3.OptSrcConcurrency(m.Concurrency),
		)
	}
	return file.NewSource(pth)
}

func (m *Main) openSink(sess *session.Session, pth string) (lake.Sink, error) {
	if bucket, prefix, ok := splitS3Path(pth); ok {
		return s3.NewSink(sess, bucket, prefix), nil
	}
	return file.NewSink(pth)
}

func isS3Path(pth string) bool {
	_, _, ok := splitS3Path(pth)
	return ok
}

// splitS3Path splits "s3://bucket/some/prefix" into its bucket and
// prefix. ok is false for anything that is not an S3 URL.
func splitS3Path(pth string) (bucket, prefix string, ok bool) {
	for _, scheme := range []string{"s3://", "s3a://", "s3n://"} {
		if strings.HasPrefix(pth, scheme) {
			rest := strings.TrimPrefix(pth, scheme)
			bucket, prefix, _ = strings.Cut(rest, "/")
			return bucket, strings.Trim(prefix, "/"), bucket != ""
		}
	}
	return "", "", false
}
