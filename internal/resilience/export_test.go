package resilience

import "time"

// NewCircuitBreakerWithClock открывает подмену часов для тестов.
func NewCircuitBreakerWithClock(name string, config CircuitBreakerConfig, now func() time.Time) *CircuitBreaker {
	return newCircuitBreaker(name, config, now)
}
