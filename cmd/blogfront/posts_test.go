package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulachik/blogfront/internal/post"
)

func TestPrintPosts(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		printPosts(&buf, nil, 100)
		assert.Equal(t, "No posts available.\n", buf.String())
	})

	t.Run("lists posts", func(t *testing.T) {
		var buf bytes.Buffer
		printPosts(&buf, []post.Post{
			{ID: "a1", Title: "First", Content: "<b>bold</b> text", ImageURL: "https://img/1.png"},
			{Title: "Second", Content: strings.Repeat("x", 20)},
		}, 10)

		out := buf.String()
		assert.Contains(t, out, "2 posts:")
		assert.Contains(t, out, "[a1] First")
		assert.Contains(t, out, "image: https://img/1.png")
		assert.Contains(t, out, "bold text")
		assert.Contains(t, out, "[post-1] Second")
		assert.Contains(t, out, strings.Repeat("x", 10)+"...")
		assert.Equal(t, 1, strings.Count(out, "image:"))
	})
}
