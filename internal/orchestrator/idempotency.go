package orchestrator

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lead-gateway/internal/persistence"
)

// WorkflowID derives the deterministic id §4.5's Idempotency clause
// requires: re-delivery of the same (operation, leadID, jobID) triple by
// the workflow engine must resolve to the same workflowId, so that a
// retried dispatch does not double-charge or double-persist.
func WorkflowID(operation, leadID, jobID string) string {
	sum := sha1.Sum([]byte(operation + ":" + leadID + ":" + jobID))
	return operation + "-" + hex.EncodeToString(sum[:])[:16]
}

// IdempotencyCache is the Redis-backed fast path guarding against
// re-dispatching a cell the engine has already started, adapted from the
// teacher's idempotency.Store (Redis cache in front of a durable record).
type IdempotencyCache struct {
	redis  *persistence.RedisClient
	logger *zap.Logger
	ttl    time.Duration
}

func NewIdempotencyCache(redis *persistence.RedisClient, logger *zap.Logger) *IdempotencyCache {
	return &IdempotencyCache{redis: redis, logger: logger, ttl: 24 * time.Hour}
}

func cacheKey(workflowID string) string {
	return fmt.Sprintf("idempotency:workflow:%s", workflowID)
}

// Seen reports whether workflowID has already been dispatched.
func (c *IdempotencyCache) Seen(ctx context.Context, workflowID string) (bool, error) {
	n, err := c.redis.Exists(ctx, cacheKey(workflowID)).Result()
	if err != nil {
		return false, fmt.Errorf("orchestrator: idempotency lookup: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records that workflowID has been dispatched, so a re-delivery
// within ttl is recognized and skipped.
func (c *IdempotencyCache) MarkSeen(ctx context.Context, workflowID string) error {
	if err := c.redis.Set(ctx, cacheKey(workflowID), "1", c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache idempotency key", zap.String("workflow_id", workflowID), zap.Error(err))
		return err
	}
	return nil
}
