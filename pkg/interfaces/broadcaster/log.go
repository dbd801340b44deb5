package broadcaster

import (
	"context"

	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
)

// Log reports events through a logger. Useful when no transport is attached.
type Log struct {
	Logger logger.Logger
}

var _ Broadcaster = Log{}

// Broadcast logs the event topic at info level.
func (l Log) Broadcast(ctx context.Context, event Event) error {
	lgr := logger.FromContext(ctx, l.Logger)
	lgr.Info("event broadcast", logger.Field{Key: "topic", Value: event.Topic})
	return nil
}
