// Package api is the client for the serverless blog API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdulachik/blogfront/internal/health"
	"github.com/abdulachik/blogfront/internal/metrics"
	"github.com/abdulachik/blogfront/internal/post"
)

const (
	opGetPosts     = "get-posts"
	opGetUploadURL = "get-upload-url"
	opCreatePost   = "create-post"
)

// Client talks to the blog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	health     *health.Tracker
}

// Config holds configuration for the API client.
type Config struct {
	BaseURL string
	// Timeout bounds each call; zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client (Timeout is then ignored).
	HTTPClient *http.Client
	Health     *health.Tracker
}

// New creates a new API client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		health:     cfg.Health,
	}
}

// SubmitResult is the outcome of a create-post call the API accepted or flagged.
type SubmitResult struct {
	PostID string
	// Warning is the moderation advisory, shown verbatim when set.
	Warning string
	// Message is the server's accompanying text (success message, or the
	// error text that came with a warning).
	Message string
}

// FetchPosts returns every post. A malformed envelope yields a *ParseError.
func (c *Client) FetchPosts(ctx context.Context) (posts []post.Post, err error) {
	start := time.Now()
	defer func() { c.observe(opGetPosts, start, err) }()

	status, raw, err := c.do(ctx, opGetPosts, http.MethodGet, "/get-posts", nil)
	if err != nil {
		return nil, err
	}
	if !successful(status) {
		return nil, &TransportError{Op: opGetPosts, StatusCode: status}
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, &ParseError{Op: opGetPosts, Err: err}
	}
	if env.Failed() {
		return nil, &TransportError{Op: opGetPosts, StatusCode: env.StatusCode, Err: innerError(env)}
	}
	if !env.IsArray() {
		return nil, &ParseError{Op: opGetPosts, Err: errors.New("body is not an array")}
	}
	if err := env.Decode(&posts); err != nil {
		return nil, &ParseError{Op: opGetPosts, Err: err}
	}

	slog.Debug("fetched posts", "count", len(posts))
	return posts, nil
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
}

// RequestUploadURL asks the API for a presigned PUT URL for fileName.
func (c *Client) RequestUploadURL(ctx context.Context, fileName string) (uploadURL string, err error) {
	start := time.Now()
	defer func() { c.observe(opGetUploadURL, start, err) }()

	path := "/get-upload-url?fileName=" + url.QueryEscape(fileName)
	status, raw, err := c.do(ctx, opGetUploadURL, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if !successful(status) {
		return "", &TransportError{Op: opGetUploadURL, StatusCode: status}
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		return "", &ParseError{Op: opGetUploadURL, Err: err}
	}
	if env.Failed() {
		return "", &TransportError{Op: opGetUploadURL, StatusCode: env.StatusCode, Err: innerError(env)}
	}

	var resp uploadURLResponse
	if err := env.Decode(&resp); err != nil {
		return "", &ParseError{Op: opGetUploadURL, Err: err}
	}
	uploadURL = strings.TrimSpace(resp.UploadURL)
	if uploadURL == "" {
		return "", ErrNoUploadURL
	}

	slog.Debug("received upload url", "file", fileName)
	return uploadURL, nil
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

type createPostResponse struct {
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Message string `json:"message"`
	PostID  string `json:"postId"`
}

// SubmitPost creates a post referencing imageURL. A moderation warning is not
// an error: it comes back in SubmitResult.Warning. Failures the API reports are
// returned as *ServerError.
func (c *Client) SubmitPost(ctx context.Context, title, content, imageURL string) (result *SubmitResult, err error) {
	start := time.Now()
	defer func() { c.observe(opCreatePost, start, err) }()

	body, err := json.Marshal(createPostRequest{Title: title, Content: content, ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	status, raw, err := c.do(ctx, opCreatePost, http.MethodPost, "/create-post", body)
	if err != nil {
		return nil, err
	}

	var resp createPostResponse
	env, decodeErr := DecodeEnvelope(raw)
	if decodeErr == nil {
		decodeErr = env.Decode(&resp)
	}
	failed := !successful(status) || (env != nil && env.Failed())

	if decodeErr != nil {
		if !failed {
			return nil, &ParseError{Op: opCreatePost, Err: decodeErr}
		}
		// Error responses sometimes come back without the envelope.
		_ = json.Unmarshal(raw, &resp)
	}

	if resp.Warning != "" {
		slog.Warn("post flagged by moderation", "warning", resp.Warning, "error", resp.Error)
		return &SubmitResult{Warning: resp.Warning, Message: resp.Error}, nil
	}

	if failed || resp.Error != "" {
		msg := resp.Error
		if msg == "" {
			msg = DefaultSubmitError
		}
		code := status
		if env != nil && env.StatusCode != 0 {
			code = env.StatusCode
		}
		return nil, &ServerError{StatusCode: code, Message: msg}
	}

	slog.Info("post created", "post_id", resp.PostID)
	return &SubmitResult{PostID: resp.PostID, Message: resp.Message}, nil
}

// do sends a request and reads the whole response. Only network-level
// failures are returned as errors; the caller interprets the status.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	return resp.StatusCode, raw, nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	metrics.ObserveRemote(op, start, err)
	c.health.Record(health.ComponentAPI, reachability(err))
	if err != nil {
		slog.Debug("api call failed", "op", op, "error", err)
	}
}

// innerError extracts {"error": "..."} from a failed envelope, if present.
func innerError(env *Envelope) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := env.Decode(&payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
