package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Limiter emits a message for a key at most once until the key is re-armed
// with Reset. Suppressed occurrences are counted and reported on the next
// emitted message for that key.
type Limiter struct {
	log *zap.Logger

	mu         sync.Mutex
	fired      map[string]bool
	suppressed map[string]int
}

// NewLimiter creates a Limiter that writes to l.
func NewLimiter(l *zap.Logger) *Limiter {
	return &Limiter{
		log:        OrNop(l),
		fired:      make(map[string]bool),
		suppressed: make(map[string]int),
	}
}

// Warn logs msg at warn level unless key already fired. It reports whether
// the message was written.
func (lim *Limiter) Warn(key, msg string, fields ...zap.Field) bool {
	lim.mu.Lock()
	if lim.fired[key] {
		lim.suppressed[key]++
		lim.mu.Unlock()
		return false
	}
	lim.fired[key] = true
	n := lim.suppressed[key]
	lim.suppressed[key] = 0
	lim.mu.Unlock()

	if n > 0 {
		fields = append(fields, zap.Int("suppressed", n))
	}
	lim.log.Warn(msg, fields...)
	return true
}

// Reset re-arms key so the next Warn is written again.
func (lim *Limiter) Reset(key string) {
	lim.mu.Lock()
	delete(lim.fired, key)
	lim.mu.Unlock()
}

// Suppressed returns how many messages for key were dropped since it last fired.
func (lim *Limiter) Suppressed(key string) int {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	return lim.suppressed[key]
}
