package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	t.Parallel()
	r := NewPrometheusRecorder()

	r.ObserveOperation("place_bid", "success")
	r.ObserveOperation("place_bid", "success")
	r.ObserveOperation("place_bid", "BidTooLow")
	r.ObservePersist(3*time.Millisecond, nil)
	r.ObservePersist(time.Millisecond, errors.New("disk full"))
	r.SetState(3, 2, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("place_bid", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("place_bid", "BidTooLow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.persistFails))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.lots))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.openLots))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.participants))
}

func TestPrometheusRecorderHandler(t *testing.T) {
	t.Parallel()
	r := NewPrometheusRecorder()
	r.ObserveOperation("create_lot", "success")

	server := httptest.NewServer(r.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `cattle_auction_operations_total{operation="create_lot",outcome="success"} 1`)
	assert.Contains(t, string(body), "cattle_auction_snapshot_write_seconds")
}
