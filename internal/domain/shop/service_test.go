package shop

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/failure"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []events.OrderPlaced
	codes  []events.CodeIssued
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, e)
	return nil
}

func (p *recordingPublisher) PublishCodeIssued(_ context.Context, e events.CodeIssued) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes = append(p.codes, e)
	return nil
}

var _ Publisher = (*recordingPublisher)(nil)

func newService(t *testing.T, nth int) (*Service, *recordingPublisher) {
	t.Helper()

	catalog := product.NewStaticCatalog(
		product.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99")},
		product.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("29.99")},
	)
	pub := &recordingPublisher{}
	svc, err := NewService(NewStore(catalog, Rules{
		NthOrder:   nth,
		CodePrefix: "UNIBLOX",
		Percent:    decimal.NewFromInt(10),
	}), WithPublisher(pub))
	require.NoError(t, err)
	return svc, pub
}

func TestService_AddToCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 3)

	res, err := svc.AddToCart(ctx, "alice", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "Mouse added to cart", res.Message)
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, 1, res.Cart.ItemCount())
	assert.Equal(t, "59.98", res.Cart.Total().StringFixed(2))

	_, err = svc.AddToCart(ctx, "alice", 42, 1)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.True(t, failure.Is(err, failure.NotFound))

	_, err = svc.AddToCart(ctx, "alice", 1, -1)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	c, err := svc.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1, "rejected adds leave the cart unchanged")
}

func TestService_AddToCart_QuantityLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 3)

	_, err := svc.AddToCart(ctx, "alice", 2, math.MaxInt)
	require.ErrorIs(t, err, cart.ErrQuantityLimit)

	_, err = svc.AddToCart(ctx, "alice", 2, cart.MaxQuantity)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "alice", 2, 1)
	require.ErrorIs(t, err, cart.ErrQuantityLimit)
	assert.True(t, failure.Is(err, failure.Validation))

	c, err := svc.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, c.Items[0].Quantity)

	res, err := svc.Checkout(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "299900.00", res.Order.Subtotal.StringFixed(2))
	assert.True(t, res.Order.Total.Equal(res.Order.Subtotal))

	st := svc.Stats(ctx)
	assert.Equal(t, cart.MaxQuantity, st.TotalItemsPurchased)
	assert.Equal(t, "299900.00", st.TotalPurchaseAmount.StringFixed(2))
}

func TestService_CatalogSize(t *testing.T) {
	svc, _ := newService(t, 3)
	assert.Equal(t, 2, svc.CatalogSize())
}

func TestService_GetCartAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 3)

	_, err := svc.GetCart(ctx, "")
	require.ErrorIs(t, err, cart.ErrMissingUserID)
	require.ErrorIs(t, svc.ClearCart(ctx, ""), cart.ErrMissingUserID)

	c, err := svc.GetCart(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.NotNil(t, c.Items)

	_, err = svc.AddToCart(ctx, "alice", 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, "alice"))
	require.NoError(t, svc.ClearCart(ctx, "nobody"))

	c, err = svc.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestService_CheckoutPublishes(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t, 2)

	for _, user := range []string{"alice", "bob"} {
		_, err := svc.AddToCart(ctx, user, 1, 1)
		require.NoError(t, err)
	}

	first, err := svc.Checkout(ctx, "alice", "")
	require.NoError(t, err)
	assert.Empty(t, first.NewCode)

	second, err := svc.Checkout(ctx, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, "UNIBLOX-0001", second.NewCode)

	require.Len(t, pub.orders, 2)
	assert.Equal(t, "ORDER-000001", pub.orders[0].OrderID)
	assert.Equal(t, "bob", pub.orders[1].UserID)
	require.Len(t, pub.codes, 1)
	assert.Equal(t, events.CodeIssued{Code: "UNIBLOX-0001", OrderCount: 2}, pub.codes[0])

	_, err = svc.Checkout(ctx, "alice", "")
	require.ErrorIs(t, err, checkout.ErrCartEmpty)
	assert.Len(t, pub.orders, 2, "rejections publish nothing")
}

func TestService_GenerateDiscountCode(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t, 1)

	_, err := svc.GenerateDiscountCode(ctx)
	require.ErrorIs(t, err, checkout.ErrConditionNotMet)

	_, err = svc.AddToCart(ctx, "alice", 1, 1)
	require.NoError(t, err)
	res, err := svc.Checkout(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, "UNIBLOX-0001", res.NewCode)

	code, err := svc.GenerateDiscountCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UNIBLOX-0002", code)

	codes := svc.ListDiscountCodes(ctx)
	require.Len(t, codes, 2)
	assert.Equal(t, "UNIBLOX-0001", codes[0].Code)

	require.Len(t, pub.codes, 2)
	assert.False(t, pub.codes[0].Forced)
	assert.True(t, pub.codes[1].Forced)
}

func TestService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 1)

	_, err := svc.AddToCart(ctx, "alice", 1, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "bob", 2, 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, "alice", "")
	require.NoError(t, err)

	svc.Reset()

	st := svc.Stats(ctx)
	assert.Equal(t, 0, st.TotalOrders)
	assert.Equal(t, 0, st.DiscountCodes.Total)
	assert.Empty(t, svc.ListOrders(ctx))
	c, err := svc.GetCart(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Len(t, svc.ListProducts(ctx), 2, "catalog survives reset")

	_, err = svc.AddToCart(ctx, "carol", 2, 1)
	require.NoError(t, err)
	res, err := svc.Checkout(ctx, "carol", "")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-000001", res.Order.ID, "sequences restart")
	assert.Equal(t, "UNIBLOX-0001", res.NewCode)
}

func TestService_ConcurrentCheckouts(t *testing.T) {
	const users = 30
	ctx := context.Background()
	svc, _ := newService(t, 3)

	for i := range users {
		_, err := svc.AddToCart(ctx, fmt.Sprintf("user-%d", i), 1, 1)
		require.NoError(t, err)
	}

	var (
		mu       sync.Mutex
		ids      = make(map[string]struct{})
		newCodes []string
	)
	g, gCtx := errgroup.WithContext(ctx)
	for i := range users {
		g.Go(func() error {
			res, err := svc.Checkout(gCtx, fmt.Sprintf("user-%d", i), "")
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			ids[res.Order.ID] = struct{}{}
			if res.NewCode != "" {
				newCodes = append(newCodes, res.NewCode)
			}
			return nil
		})
		g.Go(func() error {
			st := svc.Stats(gCtx)
			if st.TotalItemsPurchased != st.TotalOrders {
				return fmt.Errorf("torn read: %d items for %d orders", st.TotalItemsPurchased, st.TotalOrders)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ids, users, "order ids are unique")
	assert.Len(t, newCodes, users/3, "one code per multiple of N")

	st := svc.Stats(ctx)
	assert.Equal(t, users, st.TotalOrders)
	assert.Equal(t, users/3, st.DiscountCodes.Available)
}

func TestService_ConcurrentCodeRedemption(t *testing.T) {
	const users = 20
	ctx := context.Background()
	svc, _ := newService(t, 1)

	_, err := svc.AddToCart(ctx, "seed", 2, 1)
	require.NoError(t, err)
	res, err := svc.Checkout(ctx, "seed", "")
	require.NoError(t, err)
	code := res.NewCode
	require.NotEmpty(t, code)

	for i := range users {
		_, err := svc.AddToCart(ctx, fmt.Sprintf("user-%d", i), 2, 1)
		require.NoError(t, err)
	}

	var (
		mu        sync.Mutex
		succeeded int
	)
	var g errgroup.Group
	for i := range users {
		g.Go(func() error {
			_, err := svc.Checkout(ctx, fmt.Sprintf("user-%d", i), code)
			if errors.Is(err, discount.ErrInvalidCode) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, succeeded, "a code is redeemed at most once")
}
