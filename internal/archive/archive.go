package archive

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// Archiver writes run manifests and optionally uploads run outputs.
type Archiver struct {
	cfg      Config
	uploader Uploader
}

// NewArchiver initializes the archiver. It returns nil when archival is
// disabled.
func NewArchiver(cfg Config) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var uploader Uploader
	if strings.TrimSpace(cfg.BucketURL) != "" {
		s3u, err := NewS3Uploader(S3Config{
			BucketURL:    cfg.BucketURL,
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			SessionToken: cfg.S3SessionToken,
			UseSSL:       cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("archive: init s3 uploader: %w", err)
		}
		uploader = s3u
	}

	return &Archiver{cfg: cfg, uploader: uploader}, nil
}

// ArchiveRun writes the manifest next to the run's outputs and uploads
// the outputs plus the manifest when a bucket is configured. Upload
// failures are logged per file; the run itself is already complete.
func (a *Archiver) ArchiveRun(ctx context.Context, m Manifest, dir, stamp string) error {
	manifestPath, err := WriteManifest(m, dir, stamp)
	if err != nil {
		return err
	}
	log.Printf("archive: wrote manifest %s", manifestPath)

	if a.uploader == nil {
		return nil
	}

	for _, output := range append(m.Outputs, manifestPath) {
		localPath := output
		if !filepath.IsAbs(localPath) {
			localPath = filepath.Join(dir, output)
		}
		if err := a.uploader.UploadFile(ctx, localPath); err != nil {
			log.Printf("archive: uploading %s: %v", filepath.Base(localPath), err)
			continue
		}
		log.Printf("archive: uploaded %s", filepath.Base(localPath))
	}
	return nil
}
