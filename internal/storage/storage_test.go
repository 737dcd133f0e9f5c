package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://bucket.s3.amazonaws.com/img1.png?X-Amz-Signature=abc", "https://bucket.s3.amazonaws.com/img1.png"},
		{"https://bucket.s3.amazonaws.com/uploads/a.png?X-Amz-Algorithm=AWS4&X-Amz-Expires=3600?x", "https://bucket.s3.amazonaws.com/uploads/a.png"},
		{"https://bucket.s3.amazonaws.com/plain.png", "https://bucket.s3.amazonaws.com/plain.png"},
		{"https://bucket.s3.amazonaws.com/empty.png?", "https://bucket.s3.amazonaws.com/empty.png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.in))
		})
	}
}

func TestNewFile(t *testing.T) {
	t.Run("keeps declared type", func(t *testing.T) {
		f := NewFile("photo.jpg", "image/jpeg", []byte("data"))
		assert.Equal(t, "image/jpeg", f.ContentType)
		assert.Equal(t, 4, f.Size())
	})

	t.Run("sniffs generic type", func(t *testing.T) {
		f := NewFile("photo", "application/octet-stream", pngHeader)
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("sniffs missing type", func(t *testing.T) {
		f := NewFile("photo", "", pngHeader)
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("strips directories from name", func(t *testing.T) {
		f := NewFile("/home/me/pics/cat.png", "image/png", pngHeader)
		assert.Equal(t, "cat.png", f.Name)
	})
}

func TestUploader_Put(t *testing.T) {
	t.Run("puts bytes with content type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/uploads/cat.png", r.URL.Path)
			assert.Equal(t, "abc", r.URL.Query().Get("X-Amz-Signature"))
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, pngHeader, body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tracker := health.New()
		u := NewUploader(Config{Health: tracker})
		err := u.Put(context.Background(), server.URL+"/uploads/cat.png?X-Amz-Signature=abc", NewFile("cat.png", "image/png", pngHeader))

		require.NoError(t, err)
		assert.True(t, tracker.Get(health.ComponentStorage).Healthy)
	})

	t.Run("non-success status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`<Error><Code>SignatureDoesNotMatch</Code></Error>`))
		}))
		defer server.Close()

		u := NewUploader(Config{})
		err := u.Put(context.Background(), server.URL+"/x.png?sig=1", NewFile("x.png", "image/png", pngHeader))

		var ue *UploadError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusForbidden, ue.StatusCode)
		assert.Contains(t, ue.Body, "SignatureDoesNotMatch")
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		tracker := health.New()
		u := NewUploader(Config{Health: tracker})
		err := u.Put(context.Background(), server.URL+"/x.png", NewFile("x.png", "image/png", pngHeader))

		var te *api.TransportError
		require.ErrorAs(t, err, &te)
		assert.False(t, tracker.Get(health.ComponentStorage).Healthy)
	})
}
