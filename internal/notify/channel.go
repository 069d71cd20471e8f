package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Channel delivers a rendered text message to operators.
type Channel interface {
	Send(ctx context.Context, text string) error
}

// LogChannel writes messages to the log. Used when no chat channel is configured.
type LogChannel struct {
	log *logrus.Entry
}

// NewLogChannel constructs a channel that logs through entry.
func NewLogChannel(entry *logrus.Entry) *LogChannel {
	return &LogChannel{log: entry}
}

// Send logs the message.
func (c *LogChannel) Send(_ context.Context, text string) error {
	c.log.WithField("channel", "log").Info(text)
	return nil
}
