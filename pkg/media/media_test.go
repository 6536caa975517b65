package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

type part struct {
	name, contentType string
	data              []byte
}

func multipartRequest(t *testing.T, field string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jpeg(name string) part { return part{name, "image/jpeg", []byte("jpeg:" + name)} }

func TestParseAcceptsImages(t *testing.T) {
	req := multipartRequest(t, Field, jpeg("a.jpg"), part{"b.png", "image/png", []byte("png")})
	uploads, err := Parse(httptest.NewRecorder(), req, DefaultLimits())
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "a.jpg", uploads[0].Filename)
	assert.Equal(t, "image/png", uploads[1].ContentType)

	rc, err := uploads[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "jpeg:a.jpg", string(body))
}

func TestParseRejects(t *testing.T) {
	six := make([]part, 6)
	for i := range six {
		six[i] = jpeg(fmt.Sprintf("%d.jpg", i))
	}

	cases := []struct {
		name  string
		req   *http.Request
		limit Limits
		msg   string
	}{
		{"six files", multipartRequest(t, Field, six...), DefaultLimits(), "Too many files: at most 5 photos per upload"},
		{"one non-image", multipartRequest(t, Field, jpeg("a.jpg"), part{"notes.txt", "text/plain", []byte("x")}, jpeg("b.jpg")), DefaultLimits(), "Only image files are allowed!"},
		{"wrong field", multipartRequest(t, "files", jpeg("a.jpg")), DefaultLimits(), "No photos uploaded"},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")), DefaultLimits(), "No photos uploaded"},
		{"too large", multipartRequest(t, Field, part{"big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 64)}),
			Limits{Field: Field, MaxFiles: 5, MaxFileSize: 32}, "big.jpg is larger than 32 bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(httptest.NewRecorder(), tc.req, tc.limit)
			var me *Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tc.msg, me.Message)
		})
	}
}

func TestIntakeSaveKeepsOrder(t *testing.T) {
	root := t.TempDir()
	disk := storage.NewLocalDisk(root, "/uploads")
	pool := workerpool.New(3)
	defer pool.Shutdown()

	in := NewIntake(disk, pool)
	in.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	n := 0
	in.newID = func() string { n++; return fmt.Sprintf("id%02d", n) }

	uploads := []Upload{
		NewUpload("first.JPG", "image/jpeg", []byte("1")),
		NewUpload("second", "image/png", []byte("2")),
		NewUpload("third.webp", "image/webp", []byte("3")),
	}
	urls, err := in.Save(context.Background(), uploads)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/uploads/delivery-photos/delivery-1700000000000-id01.jpg",
		"/uploads/delivery-photos/delivery-1700000000000-id02.png",
		"/uploads/delivery-photos/delivery-1700000000000-id03.webp",
	}, urls)

	data, err := os.ReadFile(filepath.Join(root, "delivery-photos", "delivery-1700000000000-id02.png"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestIntakeSaveRequiresFiles(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	_, err := NewIntake(storage.NewLocalDisk(t.TempDir(), "/uploads"), pool).Save(context.Background(), nil)
	var me *Error
	assert.ErrorAs(t, err, &me)
}

func TestFilenameIsUnique(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	in := NewIntake(storage.NewLocalDisk(t.TempDir(), "/uploads"), pool)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := in.filename(NewUpload("a.jpg", "image/jpeg", nil))
		assert.True(t, strings.HasPrefix(name, "delivery-"))
		assert.True(t, strings.HasSuffix(name, ".jpg"))
		assert.False(t, seen[name])
		seen[name] = true
	}
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "5 MB", humanSize(MaxFileSize))
	assert.Equal(t, "1500 bytes", humanSize(1500))
}
