package product

var _ Catalog = (*StaticCatalog)(nil)

// StaticCatalog is an immutable in-memory Catalog. It is safe for concurrent
// use because it is never modified after construction.
type StaticCatalog struct {
	products []Product
	byID     map[int64]int
}

// NewStaticCatalog copies products into a new catalog, preserving order.
// Later duplicates of an id replace earlier ones in lookups.
func NewStaticCatalog(products ...Product) *StaticCatalog {
	c := &StaticCatalog{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// List returns a copy of all products in catalog order.
func (c *StaticCatalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// GetByID returns the product with the given id or a *NotFoundError.
func (c *StaticCatalog) GetByID(id int64) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, &NotFoundError{ID: id}
	}
	return c.products[i], nil
}

// Len returns the number of products.
func (c *StaticCatalog) Len() int {
	return len(c.products)
}
