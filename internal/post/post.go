// Package post defines the canonical blog post shape decoded from the API.
package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Post is a blog post as returned by the API.
type Post struct {
	ID        string     `json:"postId,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// HasImage reports whether the post references an image.
func (p Post) HasImage() bool {
	return p.ImageURL != ""
}

// Key returns a stable key for rendering the post at position index of a list.
// Posts without any identifier fall back to their position.
func (p Post) Key(index int) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("post-%d", index)
}

// wirePost accepts every identifier spelling the API has used.
type wirePost struct {
	PostID    json.RawMessage `json:"postId"`
	PostIDAlt json.RawMessage `json:"PostID"`
	ID        json.RawMessage `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	ImageURL  *string         `json:"imageUrl"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// UnmarshalJSON decodes a post, normalizing the identifier field.
// Precedence is postId, PostID, id. Numeric identifiers become strings.
func (p *Post) UnmarshalJSON(data []byte) error {
	var w wirePost
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Post{Title: w.Title, Content: w.Content}
	if w.ImageURL != nil {
		p.ImageURL = *w.ImageURL
	}

	for _, raw := range []json.RawMessage{w.PostID, w.PostIDAlt, w.ID} {
		id, err := scalarString(raw)
		if err != nil {
			return fmt.Errorf("decode post id: %w", err)
		}
		if id != "" {
			p.ID = id
			break
		}
	}

	if ts, ok := unixSeconds(w.CreatedAt); ok {
		t := time.Unix(ts, 0).UTC()
		p.CreatedAt = &t
	}

	return nil
}

// scalarString renders a JSON string or number as a string. Absent and null
// values yield "".
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unsupported identifier %s", string(raw))
	}
	return n.String(), nil
}

// unixSeconds reads a createdAt value. The API serializes numbers from its
// store as floats, so 1700000000.0 is accepted.
func unixSeconds(raw json.RawMessage) (int64, bool) {
	s, err := scalarString(raw)
	if err != nil || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int64(f), true
}
