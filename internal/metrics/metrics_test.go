package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRemote(t *testing.T) {
	okBefore := testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("test-op", "success"))
	errBefore := testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("test-op", "error"))

	ObserveRemote("test-op", time.Now(), nil)
	ObserveRemote("test-op", time.Now(), assert.AnError)
	ObserveRemote("test-op", time.Now(), assert.AnError)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("test-op", "success")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(RemoteRequestsTotal.WithLabelValues("test-op", "error")))
}
