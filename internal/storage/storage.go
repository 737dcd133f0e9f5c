// Package storage uploads image bytes directly to object storage through a
// presigned URL issued by the blog API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/health"
	"github.com/abdulachik/blogfront/internal/metrics"
)

const opPut = "storage-put"

// File is an image the user picked, held in memory until it is uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFile builds a File. An empty or generic declared content type is
// replaced by one sniffed from the data.
func NewFile(name, contentType string, data []byte) File {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	return File{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
}

// Size returns the file length in bytes.
func (f File) Size() int {
	return len(f.Data)
}

// UploadError is returned when storage rejects the PUT.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Image upload failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Uploader PUTs files to presigned URLs.
type Uploader struct {
	httpClient *http.Client
	health     *health.Tracker
}

// Config holds configuration for the uploader.
type Config struct {
	// Timeout bounds each upload; zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Health     *health.Tracker
}

// NewUploader creates a new uploader.
func NewUploader(cfg Config) *Uploader {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Uploader{httpClient: hc, health: cfg.Health}
}

// Put uploads f to presignedURL with the file's content type. Success is
// decided by the HTTP status alone.
func (u *Uploader) Put(ctx context.Context, presignedURL string, f File) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveRemote(opPut, start, err)
		if _, rejected := err.(*UploadError); rejected {
			u.health.Record(health.ComponentStorage, nil)
		} else {
			u.health.Record(health.ComponentStorage, err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(f.Data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = int64(len(f.Data))
	req.Header.Set("Content-Type", f.ContentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return &api.TransportError{Op: opPut, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	slog.Info("uploaded image",
		"file", f.Name,
		"content_type", f.ContentType,
		"bytes", len(f.Data),
		"url", PublicURL(presignedURL),
	)
	return nil
}

// PublicURL derives the servable object URL from a presigned URL by dropping
// everything from the first '?' onward.
func PublicURL(presignedURL string) string {
	if i := strings.IndexByte(presignedURL, '?'); i >= 0 {
		return presignedURL[:i]
	}
	return presignedURL
}
