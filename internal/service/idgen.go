package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out unique identifiers
type IDGenerator interface {
	NewID() string
}

// MonotonicIDGenerator produces "PK<unix millis>" ids that strictly increase
// within a process, even when called more than once per millisecond.
type MonotonicIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewMonotonicIDGenerator creates a booking id generator on the wall clock
func NewMonotonicIDGenerator() *MonotonicIDGenerator {
	return &MonotonicIDGenerator{now: time.Now}
}

// NewID returns the next booking id
func (g *MonotonicIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "PK" + strconv.FormatInt(ms, 10)
}

// UUIDGenerator produces random v4 UUIDs
type UUIDGenerator struct{}

// NewID returns a fresh UUID string
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
