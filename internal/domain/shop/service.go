package shop

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/failure"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/stats"
	"github.com/xenking/storefront/internal/events"
)

const instrumentationName = "github.com/xenking/storefront/internal/domain/shop"

// Publisher receives domain events after the state change is committed.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, e events.OrderPlaced) error
	PublishCodeIssued(ctx context.Context, e events.CodeIssued) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderPlaced(context.Context, events.OrderPlaced) error { return nil }
func (nopPublisher) PublishCodeIssued(context.Context, events.CodeIssued) error   { return nil }

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tp = tp }
}

// WithMeterProvider sets the meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.mp = mp }
}

// Service exposes shop operations over a Store.
//
// Every mutation runs under one exclusive lock, so a checkout commits or
// fails as a unit, order ids are allocated in sequence and the Nth-order
// trigger fires exactly once per multiple. Reads share the lock and observe
// a consistent snapshot.
type Service struct {
	mu    sync.RWMutex
	store *Store

	pub Publisher
	tp  trace.TracerProvider
	mp  metric.MeterProvider

	tracer       trace.Tracer
	ordersPlaced metric.Int64Counter
	codesIssued  metric.Int64Counter
	rejected     metric.Int64Counter
}

// NewService creates a Service over store.
func NewService(store *Store, opts ...Option) (*Service, error) {
	s := &Service{
		store: store,
		pub:   nopPublisher{},
		tp:    tracenoop.NewTracerProvider(),
		mp:    metricnoop.NewMeterProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.tracer = s.tp.Tracer(instrumentationName)
	meter := s.mp.Meter(instrumentationName)

	var err error
	if s.ordersPlaced, err = meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	if s.codesIssued, err = meter.Int64Counter("shop.discount_codes.issued",
		metric.WithDescription("Discount codes issued"),
	); err != nil {
		return nil, errors.Wrap(err, "codes counter")
	}
	if s.rejected, err = meter.Int64Counter("shop.checkout.rejected",
		metric.WithDescription("Checkouts rejected by a business rule"),
	); err != nil {
		return nil, errors.Wrap(err, "rejected counter")
	}
	return s, nil
}

func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "shop."+name)
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ListProducts returns the catalog.
func (s *Service) ListProducts(ctx context.Context) []product.Product {
	_, span := s.start(ctx, "ListProducts")
	defer span.End()

	return s.store.Catalog.List()
}

// CatalogSize returns the number of products in the catalog.
func (s *Service) CatalogSize() int {
	return s.store.Catalog.Len()
}

// AddResult is the outcome of AddToCart.
type AddResult struct {
	Message string
	Cart    cart.Cart
}

// AddToCart adds quantity units of productID to the user's cart.
func (s *Service) AddToCart(ctx context.Context, userID string, productID int64, quantity int) (*AddResult, error) {
	ctx, span := s.start(ctx, "AddToCart")
	defer span.End()
	span.SetAttributes(
		attribute.String("shop.user_id", userID),
		attribute.Int64("shop.product_id", productID),
		attribute.Int("shop.quantity", quantity),
	)

	s.mu.Lock()
	p, err := s.store.Carts.AddItem(userID, productID, quantity)
	var snapshot cart.Cart
	if err == nil {
		snapshot = s.store.Carts.Lookup(userID)
	}
	s.mu.Unlock()

	if err != nil {
		fail(span, err)
		zctx.From(ctx).Debug("Add to cart rejected",
			zap.String("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}
	return &AddResult{
		Message: fmt.Sprintf("%s added to cart", p.Name),
		Cart:    snapshot,
	}, nil
}

// GetCart returns a snapshot of the user's cart. A user with no cart gets an
// empty one.
func (s *Service) GetCart(ctx context.Context, userID string) (cart.Cart, error) {
	_, span := s.start(ctx, "GetCart")
	defer span.End()

	if userID == "" {
		fail(span, cart.ErrMissingUserID)
		return cart.Cart{}, cart.ErrMissingUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Carts.Lookup(userID), nil
}

// ClearCart empties the user's cart. Clearing a missing cart succeeds.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	_, span := s.start(ctx, "ClearCart")
	defer span.End()

	if userID == "" {
		fail(span, cart.ErrMissingUserID)
		return cart.ErrMissingUserID
	}

	s.mu.Lock()
	s.store.Carts.Clear(userID)
	s.mu.Unlock()
	return nil
}

// Checkout places an order for the user's cart, optionally applying code.
func (s *Service) Checkout(ctx context.Context, userID, code string) (*checkout.Result, error) {
	ctx, span := s.start(ctx, "Checkout")
	defer span.End()
	span.SetAttributes(
		attribute.String("shop.user_id", userID),
		attribute.Bool("shop.discount_code", code != ""),
	)
	lg := zctx.From(ctx)

	s.mu.Lock()
	res, err := s.store.Checkout.Checkout(userID, code)
	var orderCount int
	if err == nil {
		orderCount = s.store.Orders.Count()
	}
	s.mu.Unlock()

	if err != nil {
		fail(span, err)
		kind, _ := failure.KindOf(err)
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
		lg.Debug("Checkout rejected", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	o := res.Order
	span.SetAttributes(attribute.String("shop.order_id", o.ID))
	s.ordersPlaced.Add(ctx, 1)
	lg.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("discount_code", o.DiscountCode),
	)
	s.publishOrder(ctx, o)

	if res.NewCode != "" {
		s.codeIssued(ctx, res.NewCode, orderCount, false)
	}
	return res, nil
}

// GenerateDiscountCode issues a code on demand. It fails with
// checkout.ErrConditionNotMet unless the order count is a positive multiple
// of the issuance interval.
func (s *Service) GenerateDiscountCode(ctx context.Context) (string, error) {
	ctx, span := s.start(ctx, "GenerateDiscountCode")
	defer span.End()

	s.mu.Lock()
	code, err := s.store.Checkout.ForceGenerate()
	orderCount := s.store.Orders.Count()
	s.mu.Unlock()

	if err != nil {
		fail(span, err)
		return "", err
	}
	s.codeIssued(ctx, code, orderCount, true)
	return code, nil
}

// ListDiscountCodes returns every issued code in issuance order.
func (s *Service) ListDiscountCodes(ctx context.Context) []discount.Code {
	_, span := s.start(ctx, "ListDiscountCodes")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Codes.List()
}

// Stats returns current sales figures.
func (s *Service) Stats(ctx context.Context) stats.Stats {
	_, span := s.start(ctx, "Stats")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Stats()
}

// ListOrders returns every order in placement order.
func (s *Service) ListOrders(ctx context.Context) []order.Order {
	_, span := s.start(ctx, "ListOrders")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Orders.All()
}

// NthOrder returns the discount issuance interval.
func (s *Service) NthOrder() int {
	return s.store.Checkout.NthOrder()
}

// Reset drops all carts, orders and codes. Intended for tests.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
}

func (s *Service) codeIssued(ctx context.Context, code string, orderCount int, forced bool) {
	s.codesIssued.Add(ctx, 1, metric.WithAttributes(attribute.Bool("forced", forced)))
	zctx.From(ctx).Info("Discount code issued",
		zap.String("code", code),
		zap.Int("order_count", orderCount),
		zap.Bool("forced", forced),
	)
	if err := s.pub.PublishCodeIssued(ctx, events.CodeIssued{
		Code:       code,
		OrderCount: orderCount,
		Forced:     forced,
	}); err != nil {
		zctx.From(ctx).Warn("Publish code issued", zap.Error(err))
	}
}

func (s *Service) publishOrder(ctx context.Context, o order.Order) {
	if err := s.pub.PublishOrderPlaced(ctx, events.OrderPlaced{
		OrderID:      o.ID,
		UserID:       o.UserID,
		ItemCount:    o.ItemCount(),
		Quantity:     o.Quantity(),
		Total:        o.Total,
		DiscountCode: o.DiscountCode,
		CreatedAt:    o.CreatedAt,
	}); err != nil {
		zctx.From(ctx).Warn("Publish order placed", zap.Error(err))
	}
}
