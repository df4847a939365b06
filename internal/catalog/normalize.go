package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

// ErrMalformedProduct is returned when a stored document cannot be read as a Product.
var ErrMalformedProduct = errors.New("malformed product document")

// stringID renders a store identifier: ObjectIDs as hex, anything else as text.
func stringID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case interface{ Hex() string }:
		return id.Hex()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(v)
	}
}

// toFloat accepts the numeric representations the backends produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case fmt.Stringer:
		// e.g. bson Decimal128
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func optString(doc store.Document, key string) (*string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s: want string, got %T", key, v)
	}
	return &s, nil
}

// normalize maps a stored document to the public Product shape, moving the
// store identifier to ID and coercing rating to float64.
func normalize(doc store.Document) (model.Product, error) {
	p := model.Product{ID: stringID(doc[store.IDField])}
	bad := func(err error) (model.Product, error) {
		return model.Product{}, fmt.Errorf("%w %s: %v", ErrMalformedProduct, p.ID, err)
	}

	var ok bool
	if p.Title, ok = doc["title"].(string); !ok {
		return bad(errors.New("title: missing"))
	}
	if p.Category, ok = doc["category"].(string); !ok {
		return bad(errors.New("category: missing"))
	}
	if p.Price, ok = toFloat(doc["price"]); !ok {
		return bad(fmt.Errorf("price: want number, got %T", doc["price"]))
	}
	if p.InStock, ok = doc["in_stock"].(bool); !ok {
		return bad(fmt.Errorf("in_stock: want bool, got %T", doc["in_stock"]))
	}

	var err error
	if p.Description, err = optString(doc, "description"); err != nil {
		return bad(err)
	}
	if p.Image, err = optString(doc, "image"); err != nil {
		return bad(err)
	}
	if v, present := doc["rating"]; present && v != nil {
		r, ok := toFloat(v)
		if !ok {
			return bad(fmt.Errorf("rating: want number, got %T", v))
		}
		p.Rating = &r
	}
	return p, nil
}
