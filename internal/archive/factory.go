package archive

import (
	"fmt"

	"nameforge/internal/config"
	"nameforge/internal/core"
)

// NewArchiveFromConfig builds the configured archive backend. Returns
// nil for type "none": archiving is off by default.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (core.Archive, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryArchive(), nil
	case "filesystem":
		return NewFileSystemArchive(cfg.FSRoot)
	case "s3":
		return NewS3Archive(cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
