// Package likes counts anonymous "likes" on content items. Each visitor may
// like an item a bounded number of times, and the service tracks per-item
// totals and a site-wide aggregate behind a cache-aside layer.
//
// # Key Concepts
//
//   - An [Identifier] derives a stable, one-way session id from an item key and
//     the caller's network address. No account or cookie is involved.
//   - [store.Store] is the durable backend and the only authority on whether a
//     like is allowed. Each like is applied as a single conditional update, so
//     concurrent requests cannot push a session past [MaxLikesPerSession].
//   - [cache.Cache] accelerates reads. Cache failures are logged and bypassed;
//     they never decide whether a like is accepted.
//
// # Quick Start
//
//	svc, err := likes.New(
//		likes.WithSalt(os.Getenv("LIKES_SESSION_SALT")),
//		likes.WithStore(sqliteStore),
//	)
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	total, err := svc.ApplyLike(ctx, "post-1", clientIP, 1)
//	if errors.Is(err, likes.ErrRateLimitExceeded) {
//		// this visitor has already liked post-1 the maximum number of times
//	}
//
// See the [Service] documentation for the full API.
package likes
