package product

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/failure"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = failure.New(failure.NotFound, "product not found")

// NotFoundError indicates a requested product id is not in the catalog.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ID)
}

// FailureKind implements failure.Kinded.
func (e *NotFoundError) FailureKind() failure.Kind {
	return failure.NotFound
}

// Is makes errors.Is(err, ErrNotFound) hold for any *NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Catalog is the read-only, externally supplied product list.
type Catalog interface {
	List() []Product
	GetByID(id int64) (Product, error)
	Len() int
}
