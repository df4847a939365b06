// Package store provides the document-store collaborator used by the
// catalog and order services, with memory, pebble, sqlite and mongo backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/config"
)

// Collection names shared by the services.
const (
	ProductCollection = "product"
	OrderCollection   = "order"
)

// IDField is the key under which a backend exposes the identifier it assigned.
const IDField = "_id"

var (
	// ErrUnavailable means no store was configured or the connection is down.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrNotConfigured is returned by Open when the selected backend lacks
	// the settings it needs to connect.
	ErrNotConfigured = errors.New("document store not configured")
	// ErrUnknownBackend is returned by Open for an unsupported STORE_BACKEND.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Document is a schemaless record. Backends place the assigned identifier
// under IDField when returning documents.
type Document map[string]any

// Filter selects documents whose top-level fields equal the given values.
// An empty filter matches everything.
type Filter map[string]any

// Match reports whether doc satisfies every equality in f. Numbers compare
// by value, so an int filter matches a float64 decoded from JSON.
func (f Filter) Match(doc Document) bool {
	for k, want := range f {
		got, ok := doc[k]
		if !ok {
			return false
		}
		gn, gok := number(got)
		wn, wok := number(want)
		if gok && wok {
			if gn != wn {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Store is the storage capability injected into the services.
type Store interface {
	// Name identifies the backend and database, e.g. "pebble" or "mongo/shop".
	Name() string
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	// Insert persists doc and returns the identifier assigned by the store.
	// Any IDField already present in doc is ignored.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Find returns up to limit matching documents; limit <= 0 means no bound.
	Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	Collections(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// prepare copies doc without its identifier and stamps the audit timestamps
// every inserted document carries.
func prepare(doc Document, now time.Time) Document {
	out := make(Document, len(doc)+2)
	for k, v := range doc {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	now = now.UTC()
	out["created_at"] = now
	out["updated_at"] = now
	return out
}

// Open builds the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return NewMemory(), nil
	case "pebble":
		return NewPebble(cfg.PebbleDir)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	case "mongo", "mongodb":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: DATABASE_URL is empty", ErrNotConfigured)
		}
		return NewMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.StoreTimeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}
