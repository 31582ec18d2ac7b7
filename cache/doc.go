// Package cache defines the [Cache] interface used to accelerate counter reads
// and provides three implementations:
//
//   - [MemoryCache]: a bounded, in-process LRU.
//   - [RedisCache]: a shared cache backed by Redis.
//   - [TieredCache]: a short-lived local LRU in front of another cache.
//
// Cached values are like counters, which never decrease. Every implementation
// therefore keeps the larger of the cached and the offered value on Set, so a
// slow writer cannot move a counter backwards.
package cache
