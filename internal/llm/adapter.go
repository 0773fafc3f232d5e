package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"api-test-planner/internal/logger"
)

// Adapter errors.
var (
	// ErrProviderUnavailable means the provider is not reachable or not
	// configured (e.g. missing API key).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrCircuitOpen means the provider failed too many times in a row
	// and is temporarily blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrPrivacyViolation means an external provider was requested while
	// external calls are disabled.
	ErrPrivacyViolation = errors.New("external calls disabled")
)

// RetryConfig holds the retry strategy: exponential backoff with jitter.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the standard retry strategy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// CircuitBreaker trips after consecutive failures and auto-resets after a
// cooldown period.
type CircuitBreaker struct {
	FailureThreshold int
	ResetTimeout     time.Duration

	mu           sync.Mutex
	failureCount int
	lastFailure  time.Time
	open         bool
}

// NewCircuitBreaker creates a breaker with default thresholds.
func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
	}
}

// IsOpen reports whether the breaker currently blocks calls. An open
// breaker moves to half-open once the cooldown elapses.
func (b *CircuitBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open && time.Since(b.lastFailure) > b.ResetTimeout {
		b.open = false
		b.failureCount = 0
	}
	return b.open
}

// RecordSuccess resets the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.open = false
}

// RecordFailure counts a failure and opens the breaker at the threshold.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.lastFailure = time.Now()
	if b.failureCount >= b.FailureThreshold {
		b.open = true
	}
}

// Adapter wraps a Provider with retry and circuit breaking. It satisfies
// the Completer interface consumed by the inference orchestrator.
type Adapter struct {
	provider Provider
	retry    RetryConfig
	breaker  *CircuitBreaker
	log      *logger.Logger
}

// NewAdapter creates an adapter around a provider.
func NewAdapter(provider Provider, retry RetryConfig, log *logger.Logger) *Adapter {
	return &Adapter{
		provider: provider,
		retry:    retry,
		breaker:  NewCircuitBreaker(),
		log:      log,
	}
}

// Name returns the underlying provider name.
func (a *Adapter) Name() string { return a.provider.Name() }

// IsLocal reports whether the underlying provider is local.
func (a *Adapter) IsLocal() bool { return a.provider.IsLocal() }

// Chat sends a chat completion request with retry and circuit breaking.
func (a *Adapter) Chat(ctx context.Context, messages []Message, model string, temperature float32, maxTokens int) (string, error) {
	if a.breaker.IsOpen() {
		return "", fmt.Errorf("provider %s: %w", a.provider.Name(), ErrCircuitOpen)
	}

	var lastErr error
	for attempt := 0; attempt <= a.retry.MaxRetries; attempt++ {
		result, err := a.provider.Chat(ctx, messages, model, temperature, maxTokens)
		if err == nil {
			a.breaker.RecordSuccess()
			return result, nil
		}
		lastErr = err
		a.breaker.RecordFailure()
		if a.log != nil {
			a.log.Printf("[%s] attempt %d/%d failed: %v", a.provider.Name(), attempt+1, a.retry.MaxRetries+1, err)
		}
		// No point retrying once the caller's deadline is gone.
		if ctx.Err() != nil {
			break
		}
		if attempt < a.retry.MaxRetries {
			if err := a.sleep(ctx, attempt); err != nil {
				break
			}
		}
	}
	return "", fmt.Errorf("provider %s failed after %d attempts: %w", a.provider.Name(), a.retry.MaxRetries+1, lastErr)
}

// sleep waits the backoff delay for the given attempt, honoring cancellation.
func (a *Adapter) sleep(ctx context.Context, attempt int) error {
	delay := a.retry.BaseDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * a.retry.BackoffFactor)
	}
	if a.retry.MaxDelay > 0 && delay > a.retry.MaxDelay {
		delay = a.retry.MaxDelay
	}
	// Jitter of ±25% to avoid thundering herds.
	delay = time.Duration(float64(delay) * (0.75 + rand.Float64()*0.5))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Status summarizes the provider state for display.
func (a *Adapter) Status() map[string]interface{} {
	return map[string]interface{}{
		"name":                 a.provider.Name(),
		"is_local":             a.provider.IsLocal(),
		"available":            a.provider.IsAvailable(),
		"circuit_breaker_open": a.breaker.IsOpen(),
	}
}
