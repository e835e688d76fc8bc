package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrExhausted reports that every provider in a chain failed for one call.
var ErrExhausted = errors.New("all providers exhausted")

// Provider is one interchangeable backend for a single capability.
type Provider[I, O any] interface {
	// Name identifies the provider in logs and usage stats.
	Name() string
	// Execute performs one invocation of the capability.
	Execute(ctx context.Context, input I) (O, error)
	// HealthCheck probes the provider with a minimal request.
	HealthCheck(ctx context.Context) error
}

// Config holds the per-provider retry policy for a chain.
type Config struct {
	// MaxRetries bounds invocations per provider per call (including the first).
	MaxRetries int
	// BaseDelay seeds the exponential backoff between same-provider retries.
	BaseDelay time.Duration
}

// DefaultConfig mirrors the stock retry policy: two attempts per provider,
// one second base backoff.
func DefaultConfig() Config {
	return Config{MaxRetries: 2, BaseDelay: time.Second}
}

// Stats is a point-in-time snapshot of chain usage counters.
type Stats struct {
	// Usage counts successful invocations per provider name.
	Usage map[string]int64
	// FallbackCount counts handoffs past index 0, successful or not.
	FallbackCount int64
	// Active is the primary provider's name.
	Active string
	// Providers is the chain length.
	Providers int
}

// Chain executes a capability across an ordered provider list with
// per-provider retries and in-order fallback. The member list is fixed at
// construction; only the usage counters mutate afterwards.
type Chain[I, O any] struct {
	name       string
	providers  []Provider[I, O]
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger

	// isEmpty marks a non-error result as "no result"; such results consume a
	// retry slot without backoff, same as the behavior this replaces.
	isEmpty func(O) bool

	// sleep is swapped out in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	usage         map[string]int64
	fallbackCount int64
}

// Option adjusts optional chain behavior at construction.
type Option[I, O any] func(*Chain[I, O])

// WithEmptyResult installs the sentinel check for "successful but empty"
// provider results.
func WithEmptyResult[I, O any](isEmpty func(O) bool) Option[I, O] {
	return func(c *Chain[I, O]) {
		c.isEmpty = isEmpty
	}
}

// New validates the member list and retry policy and builds a chain.
func New[I, O any](name string, providers []Provider[I, O], cfg Config, logger *slog.Logger, opts ...Option[I, O]) (*Chain[I, O], error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("chain %q: at least one provider is required", name)
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("chain %q: max retries must be positive, got %d", name, cfg.MaxRetries)
	}
	if cfg.BaseDelay <= 0 {
		return nil, fmt.Errorf("chain %q: base delay must be positive, got %s", name, cfg.BaseDelay)
	}

	usage := make(map[string]int64, len(providers))
	for _, p := range providers {
		usage[p.Name()] = 0
	}

	c := &Chain[I, O]{
		name:       name,
		providers:  providers,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		logger:     logger,
		sleep:      sleepContext,
		usage:      usage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the chain's capability label.
func (c *Chain[I, O]) Name() string { return c.name }

// Execute runs one logical call through the chain: each provider is tried in
// order, transient failures retry the same provider with backoff, permanent
// and unknown failures advance the chain immediately. Providers past the last
// are never consulted; order is never changed.
func (c *Chain[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O

	for idx, provider := range c.providers {
		name := provider.Name()

		for attempt := 0; attempt < c.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return zero, err
			}

			out, err := provider.Execute(ctx, input)
			if err == nil {
				if c.isEmpty != nil && c.isEmpty(out) {
					// Empty result: burn the attempt but skip the backoff.
					c.logWarn("provider returned empty result",
						"chain", c.name, "provider", name, "attempt", attempt+1)
					continue
				}
				c.recordSuccess(name, idx)
				return out, nil
			}

			class := Classify(err)
			if class == ClassRetry && attempt < c.maxRetries-1 {
				delay := Delay(attempt, c.baseDelay)
				c.logWarn("provider failed, retrying",
					"chain", c.name, "provider", name,
					"attempt", attempt+1, "max_attempts", c.maxRetries,
					"delay", delay.String(), "error", err.Error())
				if serr := c.sleep(ctx, delay); serr != nil {
					return zero, serr
				}
				continue
			}

			c.logWarn("provider failed",
				"chain", c.name, "provider", name,
				"class", class.String(), "error", err.Error())
			break
		}

		if idx < len(c.providers)-1 {
			c.recordFallback()
			c.logWarn("falling back to next provider",
				"chain", c.name, "from", name, "to", c.providers[idx+1].Name())
		}
	}

	return zero, fmt.Errorf("%s: %w", c.name, ErrExhausted)
}

// ValidationError identifies the chain member that failed its startup probe.
type ValidationError struct {
	Chain    string
	Position int
	Provider string
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s chain: %s provider %q failed validation: %v",
		e.Chain, positionLabel(e.Position), e.Provider, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func positionLabel(position int) string {
	if position == 0 {
		return "primary"
	}
	return fmt.Sprintf("fallback #%d", position)
}

// Validate probes every chain member once, in order. It is a fail-fast gate
// run before steady-state execution, never during it.
func (c *Chain[I, O]) Validate(ctx context.Context) error {
	for idx, provider := range c.providers {
		if err := provider.HealthCheck(ctx); err != nil {
			return &ValidationError{
				Chain:    c.name,
				Position: idx,
				Provider: provider.Name(),
				Cause:    err,
			}
		}
		c.logInfo("provider validated",
			"chain", c.name, "position", positionLabel(idx), "provider", provider.Name())
	}
	return nil
}

// Stats snapshots the usage counters. Safe to call from any goroutine.
func (c *Chain[I, O]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	usage := make(map[string]int64, len(c.usage))
	for name, count := range c.usage {
		usage[name] = count
	}
	return Stats{
		Usage:         usage,
		FallbackCount: c.fallbackCount,
		Active:        c.providers[0].Name(),
		Providers:     len(c.providers),
	}
}

func (c *Chain[I, O]) recordSuccess(name string, idx int) {
	c.mu.Lock()
	c.usage[name]++
	c.mu.Unlock()

	if idx > 0 {
		c.logInfo("fallback provider succeeded", "chain", c.name, "provider", name)
	}
}

func (c *Chain[I, O]) recordFallback() {
	c.mu.Lock()
	c.fallbackCount++
	c.mu.Unlock()
}

func (c *Chain[I, O]) logInfo(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, args...)
}

func (c *Chain[I, O]) logWarn(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
// Shutdown is not forced to sit out a long backoff.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
