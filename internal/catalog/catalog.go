// Package catalog lists products from the document store, seeding an empty
// catalog with a small fixed set of sample products on first use.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

// Limit bounds accepted by ListProducts.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// ErrInvalidLimit reports a limit outside [MinLimit, MaxLimit].
var ErrInvalidLimit = errors.New("limit out of range")

// Query selects a page of products. Category is optional.
type Query struct {
	Limit    int
	Category string
}

// Service implements product listing.
type Service struct {
	st store.Store
}

// New returns a Service backed by st. A nil st yields store.ErrUnavailable
// from every operation.
func New(st store.Store) *Service {
	return &Service{st: st}
}

// EnsureSeeded inserts the seed products when the product collection is
// empty and reports how many were written. Two callers that both observe an
// empty collection will both seed; run it once at startup to avoid that.
func (s *Service) EnsureSeeded(ctx context.Context) (int, error) {
	if s.st == nil {
		return 0, store.ErrUnavailable
	}
	n, err := s.st.Count(ctx, store.ProductCollection, nil)
	if err != nil {
		obs.Metrics.StoreErrors.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i, p := range seedProducts {
		if _, err := s.st.Insert(ctx, store.ProductCollection, p.document()); err != nil {
			obs.Metrics.StoreErrors.WithLabelValues("insert").Inc()
			return i, fmt.Errorf("seed product %q: %w", p.Title, err)
		}
	}
	obs.Metrics.ProductsSeeded.Add(float64(len(seedProducts)))
	obs.Logger.Info("catalog_seeded", "count", len(seedProducts), "store", s.st.Name())
	return len(seedProducts), nil
}

// ListProducts seeds an empty catalog, then returns up to q.Limit products.
// q.Limit must already lie within [MinLimit, MaxLimit].
func (s *Service) ListProducts(ctx context.Context, q Query) ([]model.Product, error) {
	if s.st == nil {
		return nil, store.ErrUnavailable
	}
	if q.Limit < MinLimit || q.Limit > MaxLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	if _, err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	var filter store.Filter
	if q.Category != "" {
		filter = store.Filter{"category": q.Category}
	}
	docs, err := s.st.Find(ctx, store.ProductCollection, filter, q.Limit)
	if err != nil {
		obs.Metrics.StoreErrors.WithLabelValues("find").Inc()
		return nil, fmt.Errorf("find products: %w", err)
	}
	out := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := normalize(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	obs.Metrics.ProductsListed.Add(float64(len(out)))
	return out, nil
}
