// Package memory provides mutex-guarded in-process implementations of the
// repository interfaces. It backs local runs without POSTGRES_DSN and the
// service and handler tests.
package memory

import (
	"sync"
	"time"
)

// DB holds the tables shared by the memory repositories.
type DB struct {
	mu        sync.RWMutex
	users     map[string]*userRow
	tickets   map[string]*ticketRow
	lastStamp time.Time
	now       func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{
		users:   make(map[string]*userRow),
		tickets: make(map[string]*ticketRow),
		now:     time.Now,
	}
}

// stamp returns a strictly increasing timestamp so creation order is total.
// Callers must hold the write lock.
func (db *DB) stamp() time.Time {
	ts := db.now().UTC()
	if !ts.After(db.lastStamp) {
		ts = db.lastStamp.Add(time.Microsecond)
	}
	db.lastStamp = ts
	return ts
}
