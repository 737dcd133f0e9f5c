// Package workflow implements the post-creation upload workflow: presign,
// direct upload to storage, and post submission, as one explicit state machine
// per form instance.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/metrics"
	"github.com/abdulachik/blogfront/internal/storage"
)

// API is the part of the blog API the workflow needs.
type API interface {
	RequestUploadURL(ctx context.Context, fileName string) (string, error)
	SubmitPost(ctx context.Context, title, content, imageURL string) (*api.SubmitResult, error)
}

// Uploader puts file bytes to a presigned URL.
type Uploader interface {
	Put(ctx context.Context, presignedURL string, f storage.File) error
}

var validate = validator.New()

type draft struct {
	Title    string `validate:"required"`
	Content  string `validate:"required"`
	FileName string `validate:"required"`
}

// Session is the state of one post form. The mutex guards state changes only;
// it is never held across a network call. Busy states block a second
// operation instead.
type Session struct {
	api      API
	uploader Uploader

	mu           sync.Mutex
	state        State
	title        string
	content      string
	file         *storage.File
	presignedURL string
	err          string
	warning      string
	detail       string
	flash        string
	lastActive   time.Time
}

// NewSession creates an empty session in Idle.
func NewSession(a API, u Uploader) *Session {
	return &Session{
		api:        a,
		uploader:   u,
		lastActive: time.Now(),
	}
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	State        State
	Title        string
	Content      string
	FileName     string
	FileSize     int
	PresignedURL string
	Error        string
	Warning      string
	// Detail is the server text that accompanied a warning.
	Detail string
	Flash  string
}

// Uploading reports whether the form's submit control should be disabled.
func (s Snapshot) Uploading() bool {
	return s.State.Busy()
}

// HasFile reports whether an image is selected.
func (s Snapshot) HasFile() bool {
	return s.FileName != ""
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// View returns the state for rendering the form. A Done session is shown once
// and then starts over empty.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	if s.state == Done {
		s.flash = ""
		s.transitionLocked(Idle)
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        s.state,
		Title:        s.title,
		Content:      s.content,
		PresignedURL: s.presignedURL,
		Error:        s.err,
		Warning:      s.warning,
		Detail:       s.detail,
		Flash:        s.flash,
	}
	if s.file != nil {
		snap.FileName = s.file.Name
		snap.FileSize = s.file.Size()
	}
	return snap
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive returns when the session was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SetDraft stores the form's text fields.
func (s *Session) SetDraft(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.content = content
	s.lastActive = time.Now()
}

// Reject records a message for a request the form could not even read (for
// example an oversized upload). The state is unchanged.
func (s *Session) Reject(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	if !s.state.Busy() {
		s.err = msg
	}
}

// SelectFile picks f as the post image and requests a presigned URL for it.
// On failure the file stays selected and the session is Failed; selecting a
// file again retries.
func (s *Session) SelectFile(ctx context.Context, f storage.File) error {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.state.Busy() {
		s.mu.Unlock()
		return &ValidationError{Message: MsgStillUploading}
	}
	if f.Name == "" || f.Size() == 0 {
		s.err = MsgNoImage
		s.mu.Unlock()
		return &ValidationError{Message: MsgNoImage}
	}

	s.file = &f
	s.presignedURL = ""
	s.clearMessagesLocked()
	s.transitionLocked(Presigning)
	s.mu.Unlock()

	uploadURL, err := s.api.RequestUploadURL(ctx, f.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	if err != nil {
		s.failLocked("Error getting pre-signed URL: " + err.Error())
		return fmt.Errorf("request upload url: %w", err)
	}
	s.presignedURL = uploadURL
	s.transitionLocked(Ready)
	return nil
}

// Submit uploads the selected image and creates the post. Missing fields or a
// missing presigned URL are rejected without any network call. A moderation
// warning keeps the form populated and is returned in the result, not as an
// error.
func (s *Session) Submit(ctx context.Context, title, content string) (*api.SubmitResult, error) {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.title = title
	s.content = content

	if s.state.Busy() {
		s.mu.Unlock()
		return nil, &ValidationError{Message: MsgStillUploading}
	}

	d := draft{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}
	if s.file != nil {
		d.FileName = s.file.Name
	}
	if err := validate.Struct(d); err != nil {
		s.err = MsgFieldsRequired
		s.mu.Unlock()
		return nil, &ValidationError{Message: MsgFieldsRequired}
	}
	if s.presignedURL == "" {
		s.err = MsgStillUploading
		s.mu.Unlock()
		return nil, &ValidationError{Message: MsgStillUploading}
	}

	file := *s.file
	presignedURL := s.presignedURL
	s.clearMessagesLocked()
	s.transitionLocked(Uploading)
	s.mu.Unlock()

	if err := s.uploader.Put(ctx, presignedURL, file); err != nil {
		s.fail("Error creating post: " + err.Error())
		return nil, fmt.Errorf("upload image: %w", err)
	}

	imageURL := storage.PublicURL(presignedURL)
	s.setState(Submitting)

	result, err := s.api.SubmitPost(ctx, title, content, imageURL)
	if err != nil {
		var se *api.ServerError
		if errors.As(err, &se) {
			s.fail("Error: " + se.Message)
		} else {
			s.fail("Error creating post: " + err.Error())
		}
		return nil, fmt.Errorf("submit post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if result.Warning != "" {
		s.warning = result.Warning
		s.detail = result.Message
		s.transitionLocked(Failed)
		return result, nil
	}

	s.title = ""
	s.content = ""
	s.file = nil
	s.presignedURL = ""
	s.flash = MsgCreated
	s.transitionLocked(Done)
	return result, nil
}

func (s *Session) setState(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	s.transitionLocked(to)
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	s.failLocked(msg)
}

func (s *Session) failLocked(msg string) {
	s.err = msg
	s.transitionLocked(Failed)
}

func (s *Session) clearMessagesLocked() {
	s.err = ""
	s.warning = ""
	s.detail = ""
	s.flash = ""
}

func (s *Session) transitionLocked(to State) {
	if s.state == to {
		return
	}
	slog.Debug("workflow transition", "from", s.state, "to", to)
	metrics.WorkflowTransitionsTotal.WithLabelValues(to.String()).Inc()
	s.state = to
}
