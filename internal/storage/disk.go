// Package storage keeps uploaded product images on a local directory or an
// S3-compatible bucket.
//
// Names are flat object keys such as "productImage_1700000000000000000.jpg".
// Delete and Open report a missing object with an error wrapping fs.ErrNotExist
// so callers can decide whether absence matters to them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"organic-be/internal/config"
)

var ErrInvalidName = errors.New("storage: invalid file name")

// Disk is the image store used by the product catalog.
type Disk interface {
	// Put writes r under name, replacing any existing object.
	Put(ctx context.Context, name string, r io.Reader) error

	// Open returns a reader for name. Caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists reports whether name is present.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes name. A missing object yields an error wrapping fs.ErrNotExist.
	Delete(ctx context.Context, name string) error

	// URL returns the public URL for name.
	URL(name string) string
}

// New returns the disk selected by cfg.StorageDisk ("local" or "s3").
func New(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "", "local":
		return NewLocalDisk(cfg.StorageLocalRoot, cfg.StorageURL)
	case "s3":
		return NewS3Disk(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.StorageDisk)
	}
}

// CleanName rejects names that would escape the storage root.
func CleanName(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
