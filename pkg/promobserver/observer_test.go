package promobserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/fetchstore/internal/engine"
	"github.com/petrijr/fetchstore/pkg/api"
)

func TestObserver_FetchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	fail := false
	s := engine.NewFetchStore(func(ctx context.Context, args ...any) (int, error) {
		if fail {
			return 0, errors.New("down")
		}
		return 1, nil
	}, 0, api.NewConfig(api.WithName("users"), api.WithObserver(obs)))

	_, _ = s.Fetch(context.Background())
	_, _ = s.Fetch(context.Background())
	fail = true
	_, _ = s.FetchSilent(context.Background())

	assert.Equal(t, 2.0, testutil.ToFloat64(obs.fetches.WithLabelValues("users", "fetch", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.fetches.WithLabelValues("users", "silent", OutcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.inFlight.WithLabelValues("users", "fetch")))
	assert.Equal(t, 2, testutil.CollectAndCount(obs.fetchDuration))
}

func TestObserver_CancelledFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)
	info := api.FetchInfo{StoreName: "feed", Lane: api.LaneFetch}

	obs.OnFetchStart(context.Background(), info)
	require.Equal(t, 1.0, testutil.ToFloat64(obs.inFlight.WithLabelValues("feed", "fetch")))

	obs.OnFetchCancelled(context.Background(), info)
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.inFlight.WithLabelValues("feed", "fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.fetches.WithLabelValues("feed", "fetch", OutcomeCancelled)))
}

func TestObserver_StreamMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	s := engine.NewFetchStreamStore(func(emit api.Emitter[int], args ...any) (api.CancelFunc, error) {
		_ = emit.Data(1)
		_ = emit.Error(errors.New("hiccup"))
		_ = emit.End()
		return func() {}, nil
	}, 0, api.NewConfig(api.WithName("ticks"), api.WithObserver(obs)))

	stop := s.FetchStream(context.Background(), nil)
	defer stop()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(obs.streamEvents.WithLabelValues("ticks", "end")) == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.activations.WithLabelValues("ticks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.streamEvents.WithLabelValues("ticks", "data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.streamEvents.WithLabelValues("ticks", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.activeStream.WithLabelValues("ticks")))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
