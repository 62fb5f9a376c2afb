// Package zapobserver writes store lifecycle events to a zap logger.
package zapobserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/petrijr/fetchstore/pkg/api"
)

// Observer implements api.Observer with a *zap.Logger. Successful calls and
// stream data are logged at debug level, failures at error level.
type Observer struct {
	logger *zap.Logger
}

var _ api.Observer = (*Observer)(nil)

// New returns an Observer writing to logger. A nil logger means zap.L().
func New(logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.L()
	}
	return &Observer{logger: logger}
}

func fetchFields(info api.FetchInfo) []zap.Field {
	return []zap.Field{
		zap.String("store", info.StoreName),
		zap.String("store_id", info.StoreID),
		zap.String("lane", string(info.Lane)),
		zap.Uint64("attempt", info.Attempt),
	}
}

func streamFields(info api.StreamInfo) []zap.Field {
	return []zap.Field{
		zap.String("store", info.StoreName),
		zap.String("store_id", info.StoreID),
		zap.String("activation_id", info.ActivationID),
		zap.Int("activation", info.Activation),
	}
}

func (o *Observer) OnFetchStart(ctx context.Context, info api.FetchInfo) {
	o.logger.Debug("fetch_start", fetchFields(info)...)
}

func (o *Observer) OnFetchCompleted(ctx context.Context, info api.FetchInfo, err error, d time.Duration) {
	fields := append(fetchFields(info), zap.Duration("duration", d))
	if err != nil {
		o.logger.Error("fetch_failed", append(fields, zap.Error(err))...)
		return
	}
	o.logger.Debug("fetch_completed", fields...)
}

func (o *Observer) OnFetchCancelled(ctx context.Context, info api.FetchInfo) {
	o.logger.Debug("fetch_cancelled", fetchFields(info)...)
}

func (o *Observer) OnStreamStart(ctx context.Context, info api.StreamInfo) {
	o.logger.Debug("stream_start", streamFields(info)...)
}

func (o *Observer) OnStreamEvent(ctx context.Context, info api.StreamInfo, kind api.EventKind, err error) {
	if kind == api.EventError {
		o.logger.Error("stream_error", append(streamFields(info), zap.Error(err))...)
		return
	}
	o.logger.Debug("stream_event", append(streamFields(info), zap.String("kind", string(kind)))...)
}

func (o *Observer) OnStreamEnd(ctx context.Context, info api.StreamInfo, d time.Duration) {
	o.logger.Debug("stream_end", append(streamFields(info), zap.Duration("duration", d))...)
}
