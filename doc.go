// Package fetchstore wraps asynchronous data-producing calls with reactive
// state tracking.
//
// A store owns two containers, one for the data and one for bookkeeping
// (loading flag, timestamps, last error, success count), and exposes their
// combination as a single observable value. Consumers subscribe to the store
// instead of tracking calls themselves.
//
// # Core Concepts
//
//  1. FetchStore
//  2. FetchStreamStore
//  3. Worker and StreamWorker
//  4. Options and Settings
//  5. Poller
//
// # FetchStore
//
// A FetchStore drives a request/response Worker:
//
//	users := fetchstore.New(loadUser, User{},
//	    fetchstore.WithDedupeInflight(true),
//	    fetchstore.WithAbortable(true),
//	)
//	unsub := users.Subscribe(func(v fetchstore.Value[User]) {
//	    render(v.Data, v.IsFetching, v.LastFetchError)
//	})
//	defer unsub()
//
//	_, _ = users.Fetch(ctx, "42")
//
// Besides Fetch it offers FetchSilent for background refreshes that never
// raise the loading flag, FetchOnce for threshold-based re-fetch
// suppression, FetchRecursive for polling, and Touch, Reset, ResetError and
// Abort for manual control.
//
// Worker failures are recorded in the store and returned to the caller.
// Cancellations (ErrAborted or context.Canceled) are never recorded as
// errors.
//
// # FetchStreamStore
//
// A FetchStreamStore drives a push source. The StreamWorker receives an
// Emitter and sends data, error and end events through it; the store drains
// them on its own goroutine. With a positive delay, a new activation starts
// after every end event until the handle returned by FetchStream is
// cancelled.
//
// # Delays
//
// Every, Backoff, Cron and Once build the DelayFunc values accepted by
// FetchRecursive and FetchStream.
//
// # Settings
//
// Settings can be loaded from YAML or .env files (LoadSettings) and from the
// environment (SettingsFromEnv), then applied with WithSettings.
//
// For examples, see the /examples directory.
package fetchstore
