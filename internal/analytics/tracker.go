// Package analytics emits fire-and-forget product events. Tracking never
// blocks or fails a ledger operation.
package analytics

import (
	"context"

	"go.uber.org/zap"
)

type Event struct {
	Name       string
	OwnerID    string
	Properties map[string]any
}

type Tracker interface {
	Track(ctx context.Context, event Event)
}

type zapTracker struct {
	log *zap.Logger
}

func NewZapTracker(log *zap.Logger) Tracker {
	return &zapTracker{log: log.Named("analytics")}
}

func (t *zapTracker) Track(_ context.Context, event Event) {
	t.log.Info("event tracked",
		zap.String("event", event.Name),
		zap.String("owner_id", event.OwnerID),
		zap.Any("properties", event.Properties),
	)
}
