package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/blogfront/internal/api"
	"github.com/abdulachik/blogfront/internal/storage"
	"github.com/abdulachik/blogfront/internal/workflow"
)

type blockingAPI struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) RequestUploadURL(ctx context.Context, fileName string) (string, error) {
	close(b.entered)
	<-b.release
	return "https://bucket/" + fileName + "?sig=1", nil
}

func (b *blockingAPI) SubmitPost(ctx context.Context, title, content, imageURL string) (*api.SubmitResult, error) {
	return &api.SubmitResult{PostID: "1"}, nil
}

type nopUploader struct{}

func (nopUploader) Put(ctx context.Context, presignedURL string, f storage.File) error { return nil }

func newTestRegistry(idle time.Duration) *Registry {
	return NewRegistry(idle, func() *workflow.Session {
		return workflow.NewSession(&blockingAPI{}, nopUploader{})
	})
}

func TestRegistryGet(t *testing.T) {
	t.Run("empty id creates a session", func(t *testing.T) {
		r := newTestRegistry(time.Hour)

		id, s := r.Get("")

		assert.NotEmpty(t, id)
		require.NotNil(t, s)
		assert.Equal(t, workflow.Idle, s.State())
		assert.Equal(t, 1, r.Len())
	})

	t.Run("known id returns the same session", func(t *testing.T) {
		r := newTestRegistry(time.Hour)
		id, s := r.Get("")

		gotID, got := r.Get(id)

		assert.Equal(t, id, gotID)
		assert.Same(t, s, got)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("unknown id gets a fresh one", func(t *testing.T) {
		r := newTestRegistry(time.Hour)

		id, _ := r.Get("forged-or-expired")

		assert.NotEqual(t, "forged-or-expired", id)
		assert.Equal(t, 1, r.Len())
	})
}

func TestRegistrySweep(t *testing.T) {
	t.Run("drops idle sessions", func(t *testing.T) {
		r := newTestRegistry(time.Minute)
		r.Get("")
		r.Get("")

		assert.Equal(t, 0, r.Sweep(time.Now()))
		assert.Equal(t, 2, r.Sweep(time.Now().Add(2*time.Minute)))
		assert.Equal(t, 0, r.Len())
	})

	t.Run("keeps sessions with a call in flight", func(t *testing.T) {
		a := &blockingAPI{entered: make(chan struct{}), release: make(chan struct{})}
		r := NewRegistry(time.Minute, func() *workflow.Session {
			return workflow.NewSession(a, nopUploader{})
		})
		_, s := r.Get("")

		done := make(chan error, 1)
		go func() {
			done <- s.SelectFile(context.Background(), storage.NewFile("a.png", "image/png", []byte("x")))
		}()
		<-a.entered

		assert.Equal(t, 0, r.Sweep(time.Now().Add(time.Hour)))
		assert.Equal(t, 1, r.Len())

		close(a.release)
		require.NoError(t, <-done)
		assert.Equal(t, workflow.Ready, s.State())
	})
}

func TestRegistryRun(t *testing.T) {
	r := newTestRegistry(time.Nanosecond)
	r.Get("")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
