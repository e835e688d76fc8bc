package chain

import "time"

// MaxDelay caps the exponential backoff between retries of one provider.
const MaxDelay = 60 * time.Second

// Delay returns the pause before retry number attempt (0-indexed) against the
// same provider: base doubled per attempt, capped at MaxDelay. Fallback to the
// next provider never waits; this paces only same-provider retries.
func Delay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt < 0 {
		attempt = 0
	}

	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		// delay < base catches overflow from repeated doubling.
		if delay >= MaxDelay || delay < base {
			return MaxDelay
		}
	}
	if delay > MaxDelay {
		return MaxDelay
	}
	return delay
}
