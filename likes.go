package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryhazerus/likes/cache"
	"github.com/ryhazerus/likes/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxLikesPerSession is the most likes one session may register on one item.
const MaxLikesPerSession = 3

// DefaultCacheSize is the capacity of the in-memory cache used when no cache
// is configured.
const DefaultCacheSize = 10000

// refreshTimeout bounds the cache writes that follow a committed like.
const refreshTimeout = 2 * time.Second

var (
	// ErrInvalidInput is returned for an empty item key or an out-of-range
	// delta. Nothing is read or written.
	ErrInvalidInput = errors.New("likes: invalid input")

	// ErrRateLimitExceeded is returned when a like would push a session past
	// MaxLikesPerSession. Nothing is written.
	ErrRateLimitExceeded = errors.New("likes: rate limit exceeded")

	// ErrStoreUnavailable wraps failures of the durable store.
	ErrStoreUnavailable = errors.New("likes: store unavailable")

	// ErrUnknownOutcome is returned alongside ErrStoreUnavailable when
	// ApplyLike timed out or was cancelled while the store was writing. The
	// like may or may not have been recorded, so retrying can count it twice.
	ErrUnknownOutcome = errors.New("likes: outcome unknown")
)

// InputError describes a rejected argument.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("likes: invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// LimitExceededError reports a like rejected because the session has no
// likes left on the item.
type LimitExceededError struct {
	ItemKey   string
	Current   int64 // likes the session already holds
	Requested int64
	Limit     int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("likes: rate limit exceeded for %s (%d+%d > %d)", e.ItemKey, e.Current, e.Requested, e.Limit)
}

func (e *LimitExceededError) Unwrap() error {
	return ErrRateLimitExceeded
}

// ItemLikes is the like state of an item as seen by one client.
type ItemLikes struct {
	Likes            int64 // total likes on the item
	CurrentUserLikes int64 // likes registered by the calling session
}

// Service counts likes. All methods are safe for concurrent use; no lock is
// held across calls.
type Service struct {
	store store.Store
	cache cache.Cache
	ids   *Identifier
	log   *zap.Logger
	stats *metrics

	salt           string
	defaultAddress string
	timeout        time.Duration
	aggregateTTL   time.Duration
	registerer     prometheus.Registerer
}

// New creates a Service with the given options. WithSalt is required.
// If no store or cache is provided, in-memory implementations are used.
func New(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}

	ids, err := NewIdentifier(s.salt, s.defaultAddress)
	if err != nil {
		return nil, err
	}
	s.ids = ids

	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.cache == nil {
		c, err := cache.NewMemoryCache(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.stats = newMetrics(s.registerer)

	return s, nil
}

// GetAggregate returns the total number of likes across all items. The value
// is served from cache when present and may trail the latest likes until the
// cached entry is invalidated or expires.
func (s *Service) GetAggregate(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.readThrough(ctx, familyAggregate, aggregateKey, s.aggregateTTL, s.store.AggregateLikes)
}

// GetForItem returns the item's total likes and the likes registered by the
// session derived from clientAddress. The two counters are read concurrently.
func (s *Service) GetForItem(ctx context.Context, itemKey, clientAddress string) (ItemLikes, error) {
	sessionID, err := s.ids.Identify(itemKey, clientAddress)
	if err != nil {
		return ItemLikes{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out ItemLikes
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.readThrough(gctx, familyItem, itemLikesKey(itemKey), 0, func(ctx context.Context) (int64, error) {
			return s.store.ItemLikes(ctx, itemKey)
		})
		out.Likes = n
		return err
	})
	g.Go(func() error {
		n, err := s.readThrough(gctx, familyUser, userLikesKey(itemKey, sessionID), 0, func(ctx context.Context) (int64, error) {
			return s.store.SessionLikes(ctx, sessionID)
		})
		out.CurrentUserLikes = n
		return err
	})
	if err := g.Wait(); err != nil {
		return ItemLikes{}, err
	}

	return out, nil
}

// ApplyLike adds delta likes to itemKey on behalf of clientAddress and returns
// the item's new total. delta must be between 1 and MaxLikesPerSession.
//
// The store alone decides whether the like is allowed. On success the cached
// item and session counters are refreshed and the cached aggregate dropped.
// ApplyLike never retries; see ErrUnknownOutcome before retrying a failure.
func (s *Service) ApplyLike(ctx context.Context, itemKey, clientAddress string, delta int64) (int64, error) {
	sessionID, err := s.ids.Identify(itemKey, clientAddress)
	if err != nil {
		s.stats.apply("invalid")
		return 0, err
	}
	if delta < 1 || delta > MaxLikesPerSession {
		s.stats.apply("invalid")
		return 0, &InputError{Field: "delta", Reason: fmt.Sprintf("must be between 1 and %d", MaxLikesPerSession)}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		s.stats.apply("error")
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	totals, err := s.store.TryIncrement(ctx, itemKey, sessionID, delta, MaxLikesPerSession)
	if err != nil {
		var limErr *store.LimitError
		if errors.As(err, &limErr) {
			s.stats.apply("rejected")
			return 0, &LimitExceededError{
				ItemKey:   itemKey,
				Current:   limErr.Current,
				Requested: delta,
				Limit:     MaxLikesPerSession,
			}
		}

		s.stats.apply("error")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return 0, fmt.Errorf("%w: %w: %w", ErrUnknownOutcome, ErrStoreUnavailable, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.stats.apply("ok")
	s.log.Debug("like applied",
		zap.String("item", itemKey),
		zap.String("session", sessionID),
		zap.Int64("delta", delta),
		zap.Int64("item_total", totals.Item),
	)

	s.refresh(ctx, itemKey, sessionID, totals)
	return totals.Item, nil
}

// Close releases the store and the cache.
func (s *Service) Close() error {
	return errors.Join(s.store.Close(), s.cache.Close())
}

// readThrough serves key from cache, falling back to load on a miss and
// populating the cache with the result. If the cache itself fails, the value
// is loaded but not written back.
func (s *Service) readThrough(ctx context.Context, family, key string, ttl time.Duration, load func(context.Context) (int64, error)) (int64, error) {
	v, ok, cacheErr := s.cache.Get(ctx, key)
	switch {
	case cacheErr != nil:
		s.stats.cacheLookup(family, "error")
		s.log.Warn("cache get failed", zap.String("op", "get"), zap.String("key", key), zap.Error(cacheErr))
	case ok:
		s.stats.cacheLookup(family, "hit")
		return v, nil
	default:
		s.stats.cacheLookup(family, "miss")
	}

	v, err := load(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if cacheErr == nil {
		if err := s.cache.Set(ctx, key, v, ttl); err != nil {
			s.log.Warn("cache set failed", zap.String("op", "set"), zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// refresh writes the totals from a committed like into the cache and drops
// the cached aggregate. It runs detached from the caller's cancellation, since
// the like is already durable. A key that cannot be written is deleted so the
// next read goes to the store.
func (s *Service) refresh(ctx context.Context, itemKey, sessionID string, t store.Totals) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	stale := []string{aggregateKey}
	for _, kv := range []struct {
		key   string
		value int64
	}{
		{itemLikesKey(itemKey), t.Item},
		{userLikesKey(itemKey, sessionID), t.Session},
	} {
		if err := s.cache.Set(ctx, kv.key, kv.value, 0); err != nil {
			s.log.Warn("cache set failed", zap.String("op", "set"), zap.String("key", kv.key), zap.Error(err))
			stale = append(stale, kv.key)
		}
	}

	if err := s.cache.Delete(ctx, stale...); err != nil {
		s.log.Warn("cache delete failed", zap.String("op", "delete"), zap.Strings("keys", stale), zap.Error(err))
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
