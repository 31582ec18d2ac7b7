package likes

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryhazerus/likes/cache"
	"github.com/ryhazerus/likes/store"
	"go.uber.org/zap"
)

// Option configures the Service.
type Option func(*Service)

// WithStore sets the durable backend for like counters.
// If not provided, an in-memory store is used by default.
func WithStore(s store.Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithCache sets the read cache.
// If not provided, an in-memory LRU holding DefaultCacheSize keys is used.
func WithCache(c cache.Cache) Option {
	return func(svc *Service) {
		svc.cache = c
	}
}

// WithSalt sets the secret mixed into session ids. It is required.
func WithSalt(salt string) Option {
	return func(svc *Service) {
		svc.salt = salt
	}
}

// WithDefaultAddress sets the address used when a caller's address is unknown.
func WithDefaultAddress(addr string) Option {
	return func(svc *Service) {
		svc.defaultAddress = addr
	}
}

// WithLogger sets the logger. Cache failures are reported here at warn level.
func WithLogger(log *zap.Logger) Option {
	return func(svc *Service) {
		svc.log = log
	}
}

// WithTimeout bounds every operation, in addition to any deadline already on
// the caller's context. Zero disables the extra bound.
func WithTimeout(d time.Duration) Option {
	return func(svc *Service) {
		svc.timeout = d
	}
}

// WithAggregateTTL sets how long a cached aggregate may be served before it is
// recomputed. Zero keeps it until the next successful like invalidates it.
//
// A reader that summed the store just before a concurrent like can write its
// older total back after the like dropped the cached aggregate. A non-zero TTL
// bounds how long that total is served.
func WithAggregateTTL(d time.Duration) Option {
	return func(svc *Service) {
		svc.aggregateTTL = d
	}
}

// WithRegisterer registers the service's Prometheus collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(svc *Service) {
		svc.registerer = reg
	}
}
