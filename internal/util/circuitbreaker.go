package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitBreaker guards the best-effort enrichment calls: after a run of
// failures the circuit opens and calls are skipped until the reset timeout
// passes. Enrichment degrades to "no extra fields", never to an error.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu           sync.Mutex
	failureCount int
	openUntil    time.Time
	logger       *zap.Logger
}

func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		logger:           logger,
	}
}

func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.openUntil.IsZero() || time.Now().After(cb.openUntil)
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.openUntil = time.Time{}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.failureCount >= cb.failureThreshold {
		cb.openUntil = time.Now().Add(cb.resetTimeout)
		cb.failureCount = 0
		cb.logger.Warn("Circuit breaker opened",
			zap.Duration("reset_timeout", cb.resetTimeout),
		)
	}
}
