package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// keySep separates the collection name from the document id in pebble keys.
const keySep = "\x00"

// Pebble stores JSON documents in an embedded pebble database. Keys are
// "<collection>\x00<uuidv7>", so iteration follows insertion order.
type Pebble struct {
	db  *pebble.DB
	dir string
	now func() time.Time
}

func NewPebble(dir string) (*Pebble, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Pebble{db: d, dir: dir, now: time.Now}, nil
}

func (p *Pebble) Name() string { return "pebble" }

func (p *Pebble) Close() error { return p.db.Close() }

func (p *Pebble) Ping(context.Context) error {
	if p.db == nil {
		return ErrUnavailable
	}
	return nil
}

func collectionBounds(collection string) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: []byte(collection + keySep),
		UpperBound: []byte(collection + "\x01"),
	}
}

// scan visits matching documents of a collection in key order until fn returns false.
func (p *Pebble) scan(ctx context.Context, collection string, filter Filter, fn func(id string, doc Document) bool) error {
	it, err := p.db.NewIter(collectionBounds(collection))
	if err != nil {
		return fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()
	prefix := len(collection) + len(keySep)
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var doc Document
		if err := json.Unmarshal(it.Value(), &doc); err != nil {
			return fmt.Errorf("decode %q: %w", it.Key(), err)
		}
		if !filter.Match(doc) {
			continue
		}
		if !fn(string(it.Key()[prefix:]), doc) {
			break
		}
	}
	return it.Error()
}

func (p *Pebble) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	var n int64
	err := p.scan(ctx, collection, filter, func(string, Document) bool {
		n++
		return true
	})
	return n, err
}

func (p *Pebble) Insert(_ context.Context, collection string, doc Document) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new id: %w", err)
	}
	id := u.String()
	b, err := json.Marshal(prepare(doc, p.now()))
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if err := p.db.Set([]byte(collection+keySep+id), b, pebble.Sync); err != nil {
		return "", fmt.Errorf("pebble set: %w", err)
	}
	return id, nil
}

func (p *Pebble) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	var out []Document
	err := p.scan(ctx, collection, filter, func(id string, doc Document) bool {
		doc[IDField] = id
		out = append(out, doc)
		return limit <= 0 || len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pebble) Collections(context.Context) ([]string, error) {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()
	var names []string
	for valid := it.First(); valid; {
		key := string(it.Key())
		name, _, ok := strings.Cut(key, keySep)
		if !ok {
			valid = it.Next()
			continue
		}
		names = append(names, name)
		valid = it.SeekGE([]byte(name + "\x01"))
	}
	return names, it.Error()
}
