// Package store defines the [Store] interface for durable like counters and
// provides three implementations:
//
//   - [MemoryStore]: in-process counters that are lost on restart.
//   - [SQLiteStore]: persistent counters backed by a SQLite database.
//   - [PostgresStore]: persistent counters backed by PostgreSQL.
//
// Every implementation applies a like as a single conditional update, so two
// concurrent increments for the same session can never both pass the cap.
package store
