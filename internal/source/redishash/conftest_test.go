package redishash

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/kailas-cloud/bookrec/internal/db"
)

// --- Mocks ---

// memStore is an in-memory Store. Scan returns keys in map order.
type memStore struct {
	hashes  map[string]map[string]string
	kv      map[string][]byte
	hsetErr error
	scanErr error
	batches int
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}, kv: map[string][]byte{}}
}

func (m *memStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if m.hsetErr != nil {
		return &db.Error{Op: db.OpHSet, Err: m.hsetErr}
	}
	m.batches++
	for _, it := range items {
		h, ok := m.hashes[it.Key]
		if !ok {
			h = map[string]string{}
			m.hashes[it.Key] = h
		}
		for k, v := range it.Fields {
			h[k] = v
		}
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.kv, k)
	}
	return nil
}

func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, &db.Error{Op: db.OpScan, Err: m.scanErr}
	}
	var keys []string
	for k := range m.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.kv[key] = value
	return nil
}

var errBoom = errors.New("boom")

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
