package s3

import (
	"context"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// deleteBatchSize is the most keys a single DeleteObjects call accepts.
const deleteBatchSize = 1000

// Sink is a lake.Sink which stores objects under a prefix in an S3
// bucket.
type Sink struct {
	bucket   string
	prefix   string
	svc      *s3.S3
	uploader *s3manager.Uploader
}

// NewSink returns a Sink writing to the given bucket and key prefix
// using the supplied session.
func NewSink(sess *session.Session, bucket, prefix string) *Sink {
	return &Sink{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		svc:      s3.New(sess),
		uploader: s3manager.NewUploader(sess),
	}
}

func (s *Sink) fullKey(key string) string {
	return path.Join(s.prefix, key)
}

// Put implements lake.Sink.
func (s *Sink) Put(ctx context.Context, key string, body io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   body,
	})
	return errors.Wrapf(err, "uploading %s", key)
}

// List implements lake.Sink.
func (s *Sink) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.fullKey(prefix)
	if strings.HasSuffix(prefix, "/") {
		full += "/"
	}
	var keys []string
	err := s.svc.ListObjectsV2PagesWithContext(ctx,
		&s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(full),
		},
		func(page *s3.ListObjectsV2Output, last bool) bool {
			for _, obj := range page.Contents {
				k := *obj.Key
				if s.prefix != "" {
					k = strings.TrimPrefix(k, s.prefix+"/")
				}
				keys = append(keys, k)
			}
			return true
		})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// Copy implements lake.Sink.
func (s *Sink) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.svc.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.fullKey(dstKey)),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + s.fullKey(srcKey))),
	})
	return errors.Wrapf(err, "copying %s to %s", srcKey, dstKey)
}

// Delete implements lake.Sink.
func (s *Sink) Delete(ctx context.Context, keys ...string) error {
	for len(keys) > 0 {
		batch := keys
		if len(batch) > deleteBatchSize {
			batch = batch[:deleteBatchSize]
		}
		keys = keys[len(batch):]

		objects := make([]*s3.ObjectIdentifier, len(batch))
		for i, k := range batch {
			objects[i] = &s3.ObjectIdentifier{Key: aws.String(s.fullKey(k))}
		}
		_, err := s.svc.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return errors.Wrap(err, "deleting objects")
		}
	}
	return nil
}
