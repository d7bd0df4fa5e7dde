package events

import (
	"context"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Projector consumes shop events and writes them to the log.
type Projector struct {
	bus   *Bus
	ready chan struct{}

	orders atomic.Int64
	codes  atomic.Int64
}

// NewProjector creates a Projector reading from bus.
func NewProjector(bus *Bus) *Projector {
	return &Projector{bus: bus, ready: make(chan struct{})}
}

// Ready is closed once Run has subscribed to every topic.
func (p *Projector) Ready() <-chan struct{} { return p.ready }

// Orders returns the number of order events handled.
func (p *Projector) Orders() int64 { return p.orders.Load() }

// Codes returns the number of code events handled.
func (p *Projector) Codes() int64 { return p.codes.Load() }

// Run consumes events until ctx is done or the bus is closed.
func (p *Projector) Run(ctx context.Context) error {
	orders, err := p.bus.Subscribe(ctx, TopicOrderPlaced)
	if err != nil {
		return err
	}
	codes, err := p.bus.Subscribe(ctx, TopicCodeIssued)
	if err != nil {
		return err
	}
	close(p.ready)

	lg := zctx.From(ctx).Named("projector")
	for orders != nil || codes != nil {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-orders:
			if !ok {
				orders = nil
				continue
			}
			p.handle(lg, msg, p.onOrder)
		case msg, ok := <-codes:
			if !ok {
				codes = nil
				continue
			}
			p.handle(lg, msg, p.onCode)
		}
	}
	return nil
}

func (p *Projector) handle(lg *zap.Logger, msg *message.Message, fn func(*zap.Logger, *jx.Decoder) error) {
	// Malformed payloads are acked too: redelivery cannot fix them.
	defer msg.Ack()
	if err := fn(lg, jx.DecodeBytes(msg.Payload)); err != nil {
		lg.Warn("Drop malformed event",
			zap.String("message_id", msg.UUID),
			zap.Error(err),
		)
	}
}

func (p *Projector) onOrder(lg *zap.Logger, d *jx.Decoder) error {
	var e OrderPlaced
	if err := e.Decode(d); err != nil {
		return errors.Wrap(err, "order placed")
	}
	p.orders.Add(1)
	lg.Info("Order placed",
		zap.String("order_id", e.OrderID),
		zap.String("user_id", e.UserID),
		zap.Int("quantity", e.Quantity),
		zap.String("total", e.Total.StringFixed(2)),
		zap.String("discount_code", e.DiscountCode),
	)
	return nil
}

func (p *Projector) onCode(lg *zap.Logger, d *jx.Decoder) error {
	var e CodeIssued
	if err := e.Decode(d); err != nil {
		return errors.Wrap(err, "code issued")
	}
	p.codes.Add(1)
	lg.Info("Discount code issued",
		zap.String("code", e.Code),
		zap.Int("order_count", e.OrderCount),
		zap.Bool("forced", e.Forced),
	)
	return nil
}
