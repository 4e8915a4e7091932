package inquiry

import "context"

// RecipientRateLimiter defines the contract for per-submitter rate limiting.
// Implementations live in infra/ratelimit/.
type RecipientRateLimiter interface {
	// Allow checks whether another inquiry from the given address is accepted.
	// Returns true if allowed, false if rate limited.
	Allow(ctx context.Context, recipient string) (bool, error)
}
