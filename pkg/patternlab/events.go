// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package patternlab

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Lifecycle events emitted by the host.
const (
	EventPatternIterationEnd = "patternlab-pattern-iteration-end"
)

// Handler reacts to a lifecycle event. The returned runtime is ignored by
// the bus.
type Handler func(ctx context.Context, rt *Runtime) (*Runtime, error)

// Events is a synchronous lifecycle event bus.
type Events struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// EventsOption configures an Events bus.
type EventsOption func(*Events)

// WithLogger sets the logger dispatch is traced to. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EventsOption {
	return func(e *Events) {
		e.logger = l
	}
}

// NewEvents creates an empty event bus.
func NewEvents(opts ...EventsOption) *Events {
	e := &Events{
		handlers: make(map[string][]Handler),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// On subscribes h to the named event. There is no way to unsubscribe.
func (e *Events) On(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers[name] = append(e.handlers[name], h)
}

// Listeners returns the number of handlers subscribed to name.
func (e *Events) Listeners(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers[name])
}

// Emit runs the handlers subscribed to name in subscription order on the
// calling goroutine. Dispatch stops at the first handler error, which is
// returned to the caller.
func (e *Events) Emit(ctx context.Context, name string, rt *Runtime) error {
	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[name]...)
	e.mu.RUnlock()

	id := ulid.Make()
	e.logger.DebugContext(ctx, "emitting event",
		"event", name,
		"event_id", id.String(),
		"handlers", len(handlers))

	for i, h := range handlers {
		if _, err := h(ctx, rt); err != nil {
			return oops.In("events").
				Code("EVENT_HANDLER_FAILED").
				With("event", name).
				With("event_id", id.String()).
				With("handler", i).
				Wrap(err)
		}
	}
	return nil
}
