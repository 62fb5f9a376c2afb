package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/petrijr/fetchstore/pkg/api"
)

// resolveFactory picks the DataFactory[T] out of cfg. An unset factory
// stores raw values as they are.
func resolveFactory[T any](cfg api.Config) api.DataFactory[T] {
	switch f := cfg.DataFactory.(type) {
	case nil:
		return func(raw, _ T) T { return raw }
	case api.DataFactory[T]:
		return f
	case func(T, T) T:
		return f
	default:
		var zero T
		panic(fmt.Sprintf("fetchstore: data factory of type %T does not match store data type %T", cfg.DataFactory, zero))
	}
}

func newStoreID() string {
	return uuid.NewString()
}

func storeLogger(cfg api.Config, id string) *slog.Logger {
	return cfg.Logger.With(
		slog.String("store", cfg.Name),
		slog.String("store_id", id),
	)
}

// callWorker runs fn and turns a panic into a *api.PanicError.
func callWorker[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &api.PanicError{Value: r}
		}
	}()
	return fn()
}
