// Package cartstore persists cart snapshots as JSON documents in a
// byte-oriented key-value backend.
package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("cartstore: key not found")

// KV is the minimal backend a SnapshotStore needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SnapshotStore implements cart.Persister for a single key.
type SnapshotStore struct {
	kv  KV
	key string
}

func NewSnapshotStore(kv KV, key string) *SnapshotStore {
	if key == "" {
		key = cart.DefaultKey
	}
	return &SnapshotStore{kv: kv, key: key}
}

// Factory binds one SnapshotStore per key over a shared backend.
func Factory(kv KV) cart.PersisterFactory {
	return func(key string) cart.Persister {
		return NewSnapshotStore(kv, key)
	}
}

func (s *SnapshotStore) Key() string { return s.key }

func (s *SnapshotStore) Save(ctx context.Context, snap cart.Snapshot) error {
	if snap.Items == nil {
		snap.Items = []cart.LineItem{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.key, err)
	}
	return nil
}

// Load returns nil, nil when nothing is stored under the key. A document that
// does not decode is reported as cart.ErrCorruptSnapshot so callers fall back
// to empty.
func (s *SnapshotStore) Load(ctx context.Context) (*cart.Snapshot, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", s.key, err)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w %s: %w", cart.ErrCorruptSnapshot, s.key, err)
	}
	return &snap, nil
}

// Clear removes the stored snapshot.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete snapshot %s: %w", s.key, err)
	}
	return nil
}
