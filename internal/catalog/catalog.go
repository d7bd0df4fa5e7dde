// Package catalog loads the product list the shop sells from.
//
// The list is a JSON array of {"id", "name", "price"} objects. Prices may be
// JSON numbers or decimal strings.
package catalog

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

//go:embed products.json
var defaultProducts []byte

// Default returns the built-in catalog.
func Default() (*product.StaticCatalog, error) {
	return Load(bytes.NewReader(defaultProducts))
}

// LoadFile reads a catalog from path. Files ending in ".gz" are decompressed.
// An empty path yields the built-in catalog.
func LoadFile(path string) (*product.StaticCatalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	c, err := Load(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return c, nil
}

// Load decodes a catalog from r. Product ids must be positive and unique,
// names non-empty and prices non-negative.
func Load(r io.Reader) (*product.StaticCatalog, error) {
	var (
		products []product.Product
		seen     = make(map[int64]struct{})
	)
	d := jx.Decode(r, 4096)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product #%d", len(products)+1)
		}
		if _, ok := seen[p.ID]; ok {
			return errors.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if len(products) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return product.NewStaticCatalog(products...), nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var (
		p        product.Product
		hasPrice bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = decodePrice(d)
			hasPrice = err == nil
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	}); err != nil {
		return p, err
	}

	switch {
	case p.ID < 1:
		return p, errors.Errorf("invalid id %d", p.ID)
	case p.Name == "":
		return p, errors.Errorf("product %d: missing name", p.ID)
	case !hasPrice:
		return p, errors.Errorf("product %d: missing price", p.ID)
	case p.Price.IsNegative():
		return p, errors.Errorf("product %d: negative price", p.ID)
	}
	return p, nil
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(string(n))
}
