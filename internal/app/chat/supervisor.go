package chat

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// stableAfter is how long a session must live before the retry backoff
// resets.
const stableAfter = time.Minute

// Supervisor keeps a chat session alive: graceful leaves reconnect at
// once, failures reconnect with exponential backoff.
type Supervisor struct {
	// NewDeps rebuilds session dependencies before every attempt so a
	// restart picks up refreshed credentials and settings.
	NewDeps func(ctx context.Context) (Deps, error)

	// DepChanged wakes a supervisor stuck on a failing NewDeps, so a
	// refreshed credential triggers a retry before the backoff elapses.
	DepChanged <-chan struct{}
}

func (s *Supervisor) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Second
	// intervals keep doubling; only a stable session resets them
	policy.MaxInterval = time.Duration(math.MaxInt64)
	policy.Reset()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		deps, err := s.NewDeps(ctx)
		if err != nil {
			wait := policy.NextBackOff()
			log.Printf("chat: dependencies unavailable: %v (retrying in %s)", err, wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.DepChanged:
				policy.Reset()
			case <-time.After(wait):
			}
			continue
		}

		started := time.Now()
		err = s.runSession(ctx, deps)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if err == nil {
			log.Printf("chat: session ended cleanly, reconnecting")
			policy.Reset()
			continue
		}

		if time.Since(started) >= stableAfter {
			policy.Reset()
		}
		wait := policy.NextBackOff()
		log.Printf("chat: session failed: %v (retrying in %s)", err, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Supervisor) runSession(ctx context.Context, deps Deps) error {
	session, err := NewSession(deps)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}
