package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/failure"
)

var errBadBody = failure.New(failure.Validation, "invalid request body")

// readObject reads a JSON object body and calls fn for each field. An empty
// body is treated as {}.
func readObject(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errBadBody, err.Error())
	}
	if len(body) == 0 {
		return nil
	}
	if err := jx.DecodeBytes(body).Obj(fn); err != nil {
		return errors.Wrap(errBadBody, err.Error())
	}
	return nil
}

type addRequest struct {
	ProductID int64
	Quantity  int
}

func decodeAdd(w http.ResponseWriter, r *http.Request) (addRequest, error) {
	var req addRequest
	err := readObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Int64()
			req.ProductID = v
			return err
		case "quantity":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Int()
			req.Quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}

type checkoutRequest struct {
	UserID       string
	DiscountCode string
}

func decodeCheckout(w http.ResponseWriter, r *http.Request) (checkoutRequest, error) {
	var req checkoutRequest
	err := readObject(w, r, func(d *jx.Decoder, key string) error {
		var dst *string
		switch key {
		case "userId":
			dst = &req.UserID
		case "discountCode":
			dst = &req.DiscountCode
		default:
			return d.Skip()
		}
		if d.Next() == jx.Null {
			return d.Null()
		}
		v, err := d.Str()
		*dst = v
		return err
	})
	return req, err
}
