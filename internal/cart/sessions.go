package cart

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultKey is the snapshot key of the single-cart layout.
const DefaultKey = "cart"

const (
	DefaultMaxSessions = 10000
	DefaultIdleTimeout = 30 * time.Minute
)

// ErrUnavailable is returned by Sessions.Get when a session's snapshot could
// not be read. Nothing is cached, so the next call retries the read.
var ErrUnavailable = errors.New("cart storage unavailable")

// SessionKey is the snapshot key for a session's cart.
func SessionKey(sessionID string) string {
	if sessionID == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + sessionID
}

// PersisterFactory returns the Persister bound to a snapshot key.
type PersisterFactory func(key string) Persister

type SessionOption func(*Sessions)

// WithMaxSessions caps how many Stores are kept in memory. The least
// recently used one is dropped first.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTimeout drops a Store that has not been used for d. Its next use
// restores it from the snapshot.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

type session struct {
	store    *Store
	lastUsed atomic.Int64
}

// Sessions hands out one Store per session id. A Store is created on first
// use and restored from the session's snapshot before it is returned.
// Restores for different sessions run in parallel; callers for the same
// session share one restore.
type Sessions struct {
	newPersister PersisterFactory
	logger       *zap.Logger
	maxSessions  int
	idle         time.Duration
	now          func() time.Time

	cache    *lru.Cache[string, *session]
	restores singleflight.Group
}

func NewSessions(factory PersisterFactory, logger *zap.Logger, opts ...SessionOption) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sessions{
		newPersister: factory,
		logger:       logger,
		maxSessions:  DefaultMaxSessions,
		idle:         DefaultIdleTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// lru.New only fails for a non-positive size.
	s.cache, _ = lru.New[string, *session](s.maxSessions)
	return s
}

func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	now := s.now()
	if sess, ok := s.cache.Get(sessionID); ok && !s.expired(sess, now) {
		sess.lastUsed.Store(now.UnixNano())
		return sess.store, nil
	}

	v, err, _ := s.restores.Do(sessionID, func() (any, error) {
		if sess, ok := s.cache.Peek(sessionID); ok && !s.expired(sess, s.now()) {
			return sess, nil
		}

		key := SessionKey(sessionID)
		var p Persister
		if s.newPersister != nil {
			p = s.newPersister(key)
		}
		st := NewStore(p, s.logger.With(zap.String("cart", key)))
		// Waiting callers share this restore; it outlives the first
		// caller's cancellation.
		if err := st.restore(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("restoring cart failed", zap.String("cart", key), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		sess := &session{store: st}
		sess.lastUsed.Store(s.now().UnixNano())
		s.cache.Add(sessionID, sess)
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session).store, nil
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return now.Sub(time.Unix(0, sess.lastUsed.Load())) > s.idle
}

// Len reports how many Stores are cached.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
