// Package archive records each extract run in a YAML manifest and
// optionally ships the run's output files to S3-compatible storage.
package archive

import "context"

// Config controls run archival.
type Config struct {
	Enabled   bool
	BucketURL string

	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3SessionToken string
	S3UseSSL       bool
}

// Uploader uploads one run artifact.
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) error
}
