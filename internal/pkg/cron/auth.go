package cron

import (
	"context"
	"time"
)

// RevokedTokenPruneInterval is how often expired revocations are dropped.
const RevokedTokenPruneInterval = 15 * time.Minute

// RevocationPruner forgets revoked tokens that have expired on their own.
type RevocationPruner interface {
	PruneRevoked(ctx context.Context) error
}

// RegisterAuthJobs schedules pruning of the token revocation list.
func RegisterAuthJobs(scheduler *Scheduler, pruner RevocationPruner, interval time.Duration) {
	scheduler.AddJob("prune_revoked_tokens", interval, pruner.PruneRevoked)
}
