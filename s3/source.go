package s3

import (
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/sparkify/lake"
	"github.com/sparkify/lake/json"
)

// SrcOption is a functional option type for s3.Source.
type SrcOption func(s *Source)

// OptSrcBucket is a SrcOption which sets the S3 bucket for a Source.
func OptSrcBucket(bucket string) SrcOption {
	return func(s *Source) {
		s.bucket = bucket
	}
}

// OptSrcPrefix tells the source to list only the objects in the bucket
// that match the specified prefix.
func OptSrcPrefix(prefix string) SrcOption {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// OptSrcRegion is a SrcOption which sets the AWS region for a Source.
// Ignored when a session is supplied with OptSrcSession.
func OptSrcRegion(region string) SrcOption {
	return func(s *Source) {
		s.region = region
	}
}

// OptSrcSession supplies the AWS session to use. This is how credentials
// from the job configuration reach the storage layer; without it a
// session is built from the ambient credential chain.
func OptSrcSession(sess *session.Session) SrcOption {
	return func(s *Source) {
		s.sess = sess
	}
}

// OptSrcBufSize sets the number of records to buffer while waiting for
// Record to be called.
func OptSrcBufSize(bufsize int) SrcOption {
	return func(s *Source) {
		s.records = make(chan *lake.Record, bufsize)
	}
}

// OptSrcConcurrency sets the number of goroutines fetching objects.
func OptSrcConcurrency(n int) SrcOption {
	return func(s *Source) {
		if n > 0 {
			s.fetchers = n
		}
	}
}

// Source is a lake.Source which reads json records from the objects
// under an S3 prefix. Objects are fetched concurrently and decoded into
// a shared buffer of records.
type Source struct {
	bucket string
	prefix string
	region string

	sess *session.Session
	svc  *s3.S3
	keys []string

	fetchers int
	records  chan *lake.Record
	errs     chan error
}

// NewSource returns a new Source with the options applied. The object
// listing happens up front; fetching and decoding start immediately in
// the background.
func NewSource(opts ...SrcOption) (*Source, error) {
	s := &Source{
		fetchers: 4,
		records:  make(chan *lake.Record, 1000),
		errs:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sess == nil {
		var err error
		s.sess, err = session.NewSession(&aws.Config{Region: aws.String(s.region)})
		if err != nil {
			return nil, errors.Wrap(err, "getting aws session")
		}
	}
	s.svc = s3.New(s.sess)

	err := s.svc.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(s.prefix),
		},
		func(page *s3.ListObjectsV2Output, last bool) bool {
			for _, obj := range page.Contents {
				s.keys = append(s.keys, *obj.Key)
			}
			return true
		})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}

	go s.populateRecords()
	return s, nil
}

func (s *Source) populateRecords() {
	keys := make(chan string)
	go func() {
		for _, k := range s.keys {
			keys <- k
		}
		close(keys)
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.fetchers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			failed := false
			for key := range keys {
				if failed {
					continue
				}
				if err := s.fetchObject(key); err != nil {
					select {
					case s.errs <- err:
					default:
					}
					failed = true
				}
			}
		}()
	}
	wg.Wait()
	close(s.records)
	close(s.errs)
}

func (s *Source) fetchObject(key string) error {
	result, err := s.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "fetching %s", key)
	}
	defer result.Body.Close()

	src := json.NewSource(result.Body, key)
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "decoding json from %s", key)
		}
		s.records <- rec
	}
}

// Record implements lake.Source. It returns the next record decoded from
// any object under the prefix, io.EOF once all objects are exhausted, or
// the first fetch/decode error.
func (s *Source) Record() (*lake.Record, error) {
	rec, ok := <-s.records
	if ok {
		return rec, nil
	}
	if err, ok := <-s.errs; ok {
		return nil, err
	}
	return nil, io.EOF
}
