package etl

import "testing"

func TestSplitS3Path(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
		prefix string
		ok     bool
	}{
		{"s3://udacity-dend/song_data", "udacity-dend", "song_data", true},
		{"s3a://udacity-dend/log_data/", "udacity-dend", "log_data", true},
		{"s3n://bucket/a/b/c", "bucket", "a/b/c", true},
		{"s3://bucket", "bucket", "", true},
		{"s3://", "", "", false},
		{"/local/dir", "", "", false},
		{"relative/dir", "", "", false},
	}
	for _, tt := range tests {
		bucket, prefix, ok := splitS3Path(tt.path)
		if bucket != tt.bucket || prefix != tt.prefix || ok != tt.ok {
			t.Fatalf("splitS3Path(%q) = %q, %q, %v", tt.path, bucket, prefix, ok)
		}
	}
}
