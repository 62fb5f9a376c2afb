package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultFetchOnceThreshold, cfg.FetchOnceDefaultThreshold)
	assert.False(t, cfg.DedupeInflight)
	assert.False(t, cfg.Abortable)
	assert.Nil(t, cfg.OnReset)
	assert.Nil(t, cfg.DataFactory)
	assert.NotNil(t, cfg.Logger)
	assert.IsType(t, NoopObserver{}, cfg.Observer)
}

func TestNewConfig_NilValuesFallBack(t *testing.T) {
	cfg := NewConfig(nil, WithLogger(nil), WithObserver(nil))

	assert.Equal(t, slog.Default(), cfg.Logger)
	assert.IsType(t, NoopObserver{}, cfg.Observer)
}

func TestNewConfig_Options(t *testing.T) {
	called := false
	metrics := &BasicMetrics{}
	cfg := NewConfig(
		WithName("users"),
		WithFetchOnceDefaultThreshold(time.Second),
		WithDedupeInflight(true),
		WithAbortable(true),
		WithOnReset(func() { called = true }),
		WithObserver(metrics),
		WithDataFactory(func(raw, prev int) int { return raw + prev }),
	)

	assert.Equal(t, "users", cfg.Name)
	assert.Equal(t, time.Second, cfg.FetchOnceDefaultThreshold)
	assert.True(t, cfg.DedupeInflight)
	assert.True(t, cfg.Abortable)
	assert.Same(t, metrics, cfg.Observer)

	cfg.OnReset()
	assert.True(t, called)

	f, ok := cfg.DataFactory.(DataFactory[int])
	require.True(t, ok)
	assert.Equal(t, 3, f(1, 2))
}

func TestWithDataFactory_NilKeepsPrevious(t *testing.T) {
	cfg := NewConfig(
		WithDataFactory(func(raw, prev string) string { return raw }),
		WithDataFactory[string](nil),
	)
	assert.NotNil(t, cfg.DataFactory)
}

func TestWithSettings_ZeroFieldsKeepCurrent(t *testing.T) {
	cfg := NewConfig(
		WithName("keep"),
		WithFetchOnceDefaultThreshold(time.Hour),
		WithSettings(Settings{DedupeInflight: true}),
	)

	assert.Equal(t, "keep", cfg.Name)
	assert.Equal(t, time.Hour, cfg.FetchOnceDefaultThreshold)
	assert.True(t, cfg.DedupeInflight)
}

func TestIsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(ErrAborted)

	assert.True(t, IsCancellation(ErrAborted))
	assert.True(t, IsCancellation(context.Canceled))
	assert.True(t, IsCancellation(context.Cause(ctx)))
	assert.True(t, IsCancellation(fmt.Errorf("wrapped: %w", ErrAborted)))
	assert.False(t, IsCancellation(context.DeadlineExceeded))
	assert.False(t, IsCancellation(errors.New("boom")))
	assert.False(t, IsCancellation(nil))
}

func TestPanicError(t *testing.T) {
	cause := errors.New("nil map")
	err := error(&PanicError{Value: cause})

	assert.Contains(t, err.Error(), "nil map")
	assert.ErrorIs(t, err, cause)

	plain := &PanicError{Value: 42}
	assert.Equal(t, "fetchstore: worker panicked: 42", plain.Error())
	assert.NoError(t, plain.Unwrap())
}
