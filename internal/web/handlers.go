package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/blogfront/internal/storage"
	"github.com/abdulachik/blogfront/internal/workflow"
)

// multipartOverhead is the allowance over MaxUploadBytes for the text fields
// and part headers of the create form.
const multipartOverhead = 64 << 10

var errTooLarge = errors.New("upload too large")

type card struct {
	Key      string
	Title    string
	ImageURL string
	Excerpt  string
}

func (h *handlers) home(c *gin.Context) {
	data := gin.H{
		"PageTitle":    "Home",
		"Placeholders": make([]struct{}, h.placeholderCount),
	}
	if c.Query("render") == "full" {
		data["Inline"] = true
		data["Cards"] = h.cards(c)
	}
	c.HTML(http.StatusOK, "home.tmpl", data)
}

func (h *handlers) grid(c *gin.Context) {
	c.HTML(http.StatusOK, "grid", gin.H{"Cards": h.cards(c)})
}

// cards fetches the posts. Any failure renders as the empty state.
func (h *handlers) cards(c *gin.Context) []card {
	posts, err := h.posts.FetchPosts(c.Request.Context())
	if err != nil {
		slog.Error("failed to fetch posts", "error", err)
		return nil
	}

	cards := make([]card, 0, len(posts))
	for i, p := range posts {
		cards = append(cards, card{
			Key:      p.Key(i),
			Title:    p.Title,
			ImageURL: p.ImageURL,
			Excerpt:  p.Excerpt(h.excerptLength),
		})
	}
	return cards
}

func (h *handlers) createForm(c *gin.Context) {
	s := session(c)
	c.HTML(http.StatusOK, "create.tmpl", gin.H{
		"PageTitle": "Create Blog",
		"Session":   s.View(),
	})
}

func (h *handlers) selectImage(c *gin.Context) {
	s := session(c)
	defer redirectToForm(c)

	f, err := h.readImage(c)
	if err != nil {
		h.reject(s, err)
		return
	}
	s.SetDraft(c.PostForm("title"), c.PostForm("content"))

	if f == nil {
		s.Reject(workflow.MsgNoImage)
		return
	}
	if err := s.SelectFile(c.Request.Context(), *f); err != nil {
		logWorkflowError("select image", err)
	}
}

func (h *handlers) submit(c *gin.Context) {
	s := session(c)
	defer redirectToForm(c)

	f, err := h.readImage(c)
	if err != nil {
		h.reject(s, err)
		return
	}
	title, content := c.PostForm("title"), c.PostForm("content")

	if f != nil && changedFile(s.Snapshot(), *f) {
		s.SetDraft(title, content)
		if err := s.SelectFile(c.Request.Context(), *f); err != nil {
			logWorkflowError("select image", err)
			return
		}
	}

	if _, err := s.Submit(c.Request.Context(), title, content); err != nil {
		logWorkflowError("submit post", err)
	}
}

func (h *handlers) healthz(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if !h.health.Healthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"components": h.health.Snapshot(),
	})
}

// readImage returns the uploaded "image" part, or nil when the request
// carries none.
func (h *handlers) readImage(c *gin.Context) (*storage.File, error) {
	limit := h.maxUploadBytes
	if limit > 0 {
		if c.Request.ContentLength > limit+multipartOverhead {
			return nil, errTooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	err := c.Request.ParseMultipartForm(32 << 20)
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return nil, errTooLarge
	case errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("parse form: %w", err)
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image part: %w", err)
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}
	if limit > 0 && fh.Size > limit {
		return nil, errTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	f := storage.NewFile(fh.Filename, fh.Header.Get("Content-Type"), data)
	return &f, nil
}

func (h *handlers) reject(s *workflow.Session, err error) {
	if errors.Is(err, errTooLarge) {
		s.Reject(workflow.MsgImageTooLarge)
		return
	}
	slog.Warn("unreadable form", "error", err)
	s.Reject(workflow.MsgNoImage)
}

// changedFile reports whether f must be presigned before submitting: it is
// not the file already selected, or the selection never got a URL.
func changedFile(snap workflow.Snapshot, f storage.File) bool {
	return snap.PresignedURL == "" || snap.FileName != f.Name || snap.FileSize != f.Size()
}

func session(c *gin.Context) *workflow.Session {
	return c.MustGet(sessionKey).(*workflow.Session)
}

func redirectToForm(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/create")
}

func logWorkflowError(op string, err error) {
	var ve *workflow.ValidationError
	if errors.As(err, &ve) {
		slog.Debug("form rejected", "op", op, "reason", ve.Message)
		return
	}
	slog.Warn("workflow step failed", "op", op, "error", err)
}
