package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memCollection struct {
	order []string
	docs  map[string]Document
}

// Memory keeps documents in process memory, in insertion order.
type Memory struct {
	mu  sync.RWMutex
	m   map[string]*memCollection
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]*memCollection), now: time.Now}
}

func (s *Memory) Name() string { return "memory" }

func (s *Memory) Count(_ context.Context, collection string, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[collection]
	if !ok {
		return 0, nil
	}
	if len(filter) == 0 {
		return int64(len(c.order)), nil
	}
	var n int64
	for _, id := range c.order {
		if filter.Match(c.docs[id]) {
			n++
		}
	}
	return n, nil
}

func (s *Memory) Insert(_ context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	rec := prepare(doc, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[collection]
	if !ok {
		c = &memCollection{docs: make(map[string]Document)}
		s.m[collection] = c
	}
	c.order = append(c.order, id)
	c.docs[id] = rec
	return id, nil
}

func (s *Memory) Find(_ context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[collection]
	if !ok {
		return nil, nil
	}
	var out []Document
	for _, id := range c.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		rec := c.docs[id]
		if !filter.Match(rec) {
			continue
		}
		d := make(Document, len(rec)+1)
		for k, v := range rec {
			d[k] = v
		}
		d[IDField] = id
		out = append(out, d)
	}
	return out, nil
}

func (s *Memory) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.m))
	for name := range s.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Memory) Ping(context.Context) error { return nil }

func (s *Memory) Close() error { return nil }
