package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
)

const persistTimeout = 3 * time.Second

// Store owns the cart state of one session. Commands are serialized; the
// new state is committed before it is handed to the Persister, and a failed
// save never rolls it back.
type Store struct {
	persister Persister
	logger    *zap.Logger

	mu      sync.Mutex
	state   State
	version uint64

	saveMu    sync.Mutex
	attempted uint64
}

func NewStore(p Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		persister: p,
		logger:    logger,
		state:     recompute(nil),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int, size, color string) State {
	return s.Dispatch(ctx, AddItem{Product: product, Quantity: quantity, Size: size, Color: color})
}

func (s *Store) RemoveItem(ctx context.Context, id string) State {
	return s.Dispatch(ctx, RemoveItem{ID: id})
}

func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) State {
	return s.Dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) State {
	return s.Dispatch(ctx, ClearCart{})
}

// Restore loads the saved snapshot, if any, and replays its items through
// LoadCart so the aggregates are recomputed. Any failure leaves the cart
// empty.
func (s *Store) Restore(ctx context.Context) State {
	if err := s.restore(ctx); err != nil {
		s.logger.Warn("cart snapshot unreadable, starting empty", zap.Error(err))
	}
	return s.State()
}

// restore returns the persister's read error. A missing or corrupt snapshot
// is not an error: the cart simply starts empty.
func (s *Store) restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	snap, err := s.persister.Load(ctx)
	if errors.Is(err, ErrCorruptSnapshot) {
		s.logger.Warn("discarding corrupt cart snapshot", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, LoadCart{Items: snap.Items})
	s.version++
	return nil
}

// RemoveOrdered takes the ordered lines out of the cart in one step. Only
// the ordered quantities are removed: a line that grew since the order was
// built keeps the difference, and lines added since are left alone.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []LineItem) State {
	s.mu.Lock()
	next := s.state
	for _, o := range ordered {
		for _, cur := range next.Items {
			if cur.ID != o.ID {
				continue
			}
			if cur.Quantity > o.Quantity {
				next = Apply(next, UpdateQuantity{ID: cur.ID, Quantity: cur.Quantity - o.Quantity})
			} else {
				next = Apply(next, RemoveItem{ID: cur.ID})
			}
			break
		}
	}
	s.state = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persist(ctx, next, version)
	return next
}

// Dispatch applies cmd and persists the result. LoadCart is applied but not
// saved.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	s.mu.Lock()
	next := Apply(s.state, cmd)
	s.state = next
	s.version++
	version := s.version
	s.mu.Unlock()

	if _, ok := cmd.(LoadCart); !ok {
		s.persist(ctx, next, version)
	}
	return next
}

func (s *Store) persist(ctx context.Context, st State, version uint64) {
	if s.persister == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// A newer state already reached the persister.
	if version <= s.attempted {
		return
	}
	s.attempted = version

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, st.Snapshot()); err != nil {
		s.logger.Warn("saving cart snapshot failed",
			zap.Uint64("version", version),
			zap.Int("items", len(st.Items)),
			zap.Error(err))
	}
}
