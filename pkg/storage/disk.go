// Package storage abstracts where uploaded files live.
//
// Two drivers exist:
//
//   - "local": a directory on the server's filesystem, served under STORAGE_URL
//
//   - "s3":    any S3-compatible bucket (AWS S3, MinIO, R2)
//
//     disks, _ := storage.New(ctx, storage.ConfigFromEnv())
//     d := disks.Default()
//     _ = d.Put(ctx, "delivery-photos/a.jpg", file, "image/jpeg")
//     d.URL("delivery-photos/a.jpg") // "/uploads/delivery-photos/a.jpg"
package storage

import (
	"context"
	"io"
)

// Disk is the driver contract. Paths are slash-separated and relative to the
// disk root.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Size returns the byte size of the file.
	Size(ctx context.Context, path string) (int64, error)

	// MakeDirectory ensures directory exists. No-op for object stores.
	MakeDirectory(ctx context.Context, path string) error

	// URL returns the public URL or path for path.
	URL(path string) string
}
