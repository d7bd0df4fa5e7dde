package cart

import (
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

// Store keeps one cart per user, created lazily on first access.
type Store struct {
	catalog product.Catalog
	carts   map[string]*Cart
	now     func() time.Time
}

// NewStore creates an empty Store that resolves products from catalog.
func NewStore(catalog product.Catalog) *Store {
	return &Store{
		catalog: catalog,
		carts:   make(map[string]*Cart),
		now:     time.Now,
	}
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
// The returned pointer aliases store state.
func (s *Store) GetOrCreate(userID string) *Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &Cart{UserID: userID, CreatedAt: s.now()}
		s.carts[userID] = c
	}
	return c
}

// Lookup returns a snapshot of the user's cart without creating it. A user
// with no cart gets an empty one that is not stored.
func (s *Store) Lookup(userID string) Cart {
	if c, ok := s.carts[userID]; ok {
		return c.Clone()
	}
	return Cart{UserID: userID, Items: []Item{}}
}

// AddItem merges quantity units of productID into the user's cart. An existing
// line keeps its original price snapshot and has its quantity increased. A
// line never holds more than MaxQuantity units.
// Validation and catalog lookup happen before any mutation, so a failed call
// leaves the cart untouched.
func (s *Store) AddItem(userID string, productID int64, quantity int) (product.Product, error) {
	if userID == "" || productID == 0 || quantity == 0 {
		return product.Product{}, ErrMissingField
	}
	if quantity < 1 {
		return product.Product{}, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return product.Product{}, ErrQuantityLimit
	}

	p, err := s.catalog.GetByID(productID)
	if err != nil {
		return product.Product{}, errors.Wrap(err, "lookup product")
	}

	if c, ok := s.carts[userID]; ok {
		if i := c.indexOf(productID); i >= 0 {
			if c.Items[i].Quantity > MaxQuantity-quantity {
				return product.Product{}, ErrQuantityLimit
			}
			c.Items[i].Quantity += quantity
			return p, nil
		}
	}

	c := s.GetOrCreate(userID)
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
	})
	return p, nil
}

// Clear empties the user's cart but keeps the cart record.
func (s *Store) Clear(userID string) {
	if c, ok := s.carts[userID]; ok {
		c.Items = nil
	}
}

// Len returns the number of cart records.
func (s *Store) Len() int {
	return len(s.carts)
}

// Reset drops every cart.
func (s *Store) Reset() {
	s.carts = make(map[string]*Cart)
}
