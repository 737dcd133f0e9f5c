package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/blogfront/internal/config"
	"github.com/abdulachik/blogfront/internal/workflow"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL:         "https://api.example.com/prod",
		PlaceholderCount:   4,
		ExcerptLength:      50,
		MaxUploadBytes:     1024,
		SessionIdleTimeout: time.Minute,
	}

	a := New(cfg)

	require.NotNil(t, a.API)
	require.NotNil(t, a.Uploader)
	require.NotNil(t, a.Sessions)
	assert.True(t, a.Health.Healthy())

	s := a.NewSession()
	assert.Equal(t, workflow.Idle, s.State())

	wc := a.WebConfig()
	assert.Equal(t, 4, wc.PlaceholderCount)
	assert.Equal(t, 50, wc.ExcerptLength)
	assert.Equal(t, int64(1024), wc.MaxUploadBytes)
	assert.Same(t, a.Sessions, wc.Sessions)
	assert.Same(t, a.Health, wc.Health)
}
