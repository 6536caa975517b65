// Package media accepts image uploads and stores them on a storage disk.
// It knows nothing about orders: Parse validates a multipart request and
// Intake.Save writes the files and returns their public paths.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

const (
	// Field is the multipart field carrying delivery photos.
	Field = "photos"
	// Dir is the directory on the disk that receives delivery photos.
	Dir = "delivery-photos"

	MaxFiles    = 5
	MaxFileSize = 5 << 20

	memoryLimit  = 8 << 20
	formOverhead = 1 << 20
)

// Error is a rejected upload. Its message is safe to show to the client.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func reject(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Limits bounds one upload request.
type Limits struct {
	Field       string
	MaxFiles    int
	MaxFileSize int64
}

// DefaultLimits are the delivery-photo limits.
func DefaultLimits() Limits {
	return Limits{Field: Field, MaxFiles: MaxFiles, MaxFileSize: MaxFileSize}
}

// Upload is one validated file waiting to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64

	open func() (io.ReadCloser, error)
}

// Open returns the file contents.
func (u Upload) Open() (io.ReadCloser, error) { return u.open() }

// NewUpload wraps in-memory data as an Upload.
func NewUpload(filename, contentType string, data []byte) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func fromHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Parse reads the multipart body of r and returns the files under l.Field.
// Any violation rejects the whole request with an *Error.
func Parse(w http.ResponseWriter, r *http.Request, l Limits) ([]Upload, error) {
	// Room for every file at the cap plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, int64(l.MaxFiles)*l.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return nil, reject("Upload too large")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, reject("No photos uploaded")
		default:
			return nil, reject("Malformed upload: %v", err)
		}
	}

	headers := r.MultipartForm.File[l.Field]
	uploads, err := Check(headers, l)
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

// Check validates file headers against l.
func Check(headers []*multipart.FileHeader, l Limits) ([]Upload, error) {
	if len(headers) == 0 {
		return nil, reject("No photos uploaded")
	}
	if len(headers) > l.MaxFiles {
		return nil, reject("Too many files: at most %d photos per upload", l.MaxFiles)
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		u := fromHeader(fh)
		if err := checkOne(u, l); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func checkOne(u Upload, l Limits) error {
	if u.Size > l.MaxFileSize {
		return reject("%s is larger than %s", u.Filename, humanSize(l.MaxFileSize))
	}
	mt, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return reject("Only image files are allowed!")
	}
	return nil
}

// Intake stores uploads on a disk, writing one batch in parallel on a
// shared worker pool.
type Intake struct {
	disk storage.Disk
	pool *workerpool.Pool
	dir  string

	now   func() time.Time
	newID func() string
}

// NewIntake stores under Dir on disk.
func NewIntake(disk storage.Disk, pool *workerpool.Pool) *Intake {
	return &Intake{
		disk:  disk,
		pool:  pool,
		dir:   Dir,
		now:   time.Now,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

// Save writes uploads and returns their public paths in upload order.
func (in *Intake) Save(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, reject("No photos uploaded")
	}
	if err := in.disk.MakeDirectory(ctx, in.dir); err != nil {
		return nil, fmt.Errorf("media: prepare %s: %w", in.dir, err)
	}

	paths := make([]string, len(uploads))
	tasks := make([]func(context.Context) error, len(uploads))
	for i, u := range uploads {
		p := path.Join(in.dir, in.filename(u))
		paths[i] = p
		tasks[i] = func(ctx context.Context) error {
			return in.put(ctx, p, u)
		}
	}

	if err := in.pool.Run(ctx, tasks...); err != nil {
		return nil, err
	}

	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = in.disk.URL(p)
	}
	logger.WithCtx(ctx).Info("media: stored uploads", "count", len(urls), "dir", in.dir)
	return urls, nil
}

func (in *Intake) put(ctx context.Context, p string, u Upload) error {
	rc, err := u.Open()
	if err != nil {
		return fmt.Errorf("media: open %s: %w", u.Filename, err)
	}
	defer rc.Close()

	if err := in.disk.Put(ctx, p, rc, u.ContentType); err != nil {
		return fmt.Errorf("media: store %s: %w", u.Filename, err)
	}
	return nil
}

// filename is delivery-<unix millis>-<random><ext>.
func (in *Intake) filename(u Upload) string {
	return fmt.Sprintf("delivery-%d-%s%s", in.now().UnixMilli(), in.newID(), extension(u))
}

func extension(u Upload) string {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if len(ext) < 2 || len(ext) > 8 || strings.ContainsAny(ext[1:], "./\\ ") {
		ext = ""
		if mt, _, err := mime.ParseMediaType(u.ContentType); err == nil {
			if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
				ext = exts[0]
			}
		}
	}
	return ext
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
