package service

import (
	"fmt"
	"sync"
	"time"
)

// OrderNumberGenerator issues "ORD-<unix millis>" numbers. Within one
// process numbers are strictly increasing: a request in a millisecond that
// was already used gets the last value plus one.
type OrderNumberGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewOrderNumberGenerator(now func() time.Time) *OrderNumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &OrderNumberGenerator{now: now}
}

func (g *OrderNumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}
