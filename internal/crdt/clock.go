package crdt

import (
	"sync"
	"time"
)

// Clock выдает метки времени для UpdatedAt, которые никогда не убывают,
// даже если системные часы отскочили назад.
type Clock struct {
	now  func() time.Time
	last time.Time
	mu   sync.Mutex
}

// NewClock создает часы на основе time.Now
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockWithSource создает часы с заданным источником времени.
// Используется для тестирования.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now возвращает текущее время в UTC, не меньше ранее выданного
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// After возвращает метку, не меньшую ни текущего времени, ни prev.
// Используется при изменении существующей задачи, чтобы updated_at не убывал.
func (c *Clock) After(prev time.Time) time.Time {
	t := c.Now()
	if t.Before(prev) {
		return prev.UTC()
	}
	return t
}
