package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus publishes domain events to in-process subscribers.
//
// Publishing never blocks on slow subscribers beyond the configured output
// buffer, and messages published with no subscriber are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a Bus. buffer is the per-subscriber channel size.
func NewBus(lg *zap.Logger, buffer int64) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			NewLogger(lg),
		),
	}
}

// PublishOrderPlaced publishes e to TopicOrderPlaced.
func (b *Bus) PublishOrderPlaced(ctx context.Context, e OrderPlaced) error {
	return b.publish(ctx, TopicOrderPlaced, e.Encode)
}

// PublishCodeIssued publishes e to TopicCodeIssued.
func (b *Bus) PublishCodeIssued(ctx context.Context, e CodeIssued) error {
	return b.publish(ctx, TopicCodeIssued, e.Encode)
}

func (b *Bus) publish(ctx context.Context, topic string, encode func(*jx.Encoder)) error {
	var enc jx.Encoder
	encode(&enc)

	msg := message.NewMessage(uuid.NewString(), enc.Bytes())
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	return nil
}

// Subscribe returns a channel of messages for topic. The channel is closed
// when ctx is done or the bus is closed. Every message must be acked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", topic)
	}
	return ch, nil
}

// Close closes all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// zapLogger adapts zap to watermill.LoggerAdapter.
type zapLogger struct {
	lg *zap.Logger
}

var _ watermill.LoggerAdapter = zapLogger{}

// NewLogger returns a watermill logger writing to lg.
func NewLogger(lg *zap.Logger) watermill.LoggerAdapter {
	return zapLogger{lg: lg.Named("events")}
}

func fields(f watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l zapLogger) Error(msg string, err error, f watermill.LogFields) {
	l.lg.Error(msg, append(fields(f), zap.Error(err))...)
}

func (l zapLogger) Info(msg string, f watermill.LogFields) {
	l.lg.Info(msg, fields(f)...)
}

func (l zapLogger) Debug(msg string, f watermill.LogFields) {
	l.lg.Debug(msg, fields(f)...)
}

// Trace is mapped to debug; zap has no lower level.
func (l zapLogger) Trace(msg string, f watermill.LogFields) {
	l.lg.Debug(msg, fields(f)...)
}

func (l zapLogger) With(f watermill.LogFields) watermill.LoggerAdapter {
	return zapLogger{lg: l.lg.With(fields(f)...)}
}
