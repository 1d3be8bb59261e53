package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/redis"
)

var (
	ErrAlreadyProcessed  = errors.New("event already processed")
	ErrLockAcquireFailed = errors.New("failed to acquire processing lock")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		LockKeyPrefix:      "notify:lock:",
		ProcessedKeyPrefix: "notify:done:",
	}
}

// IdempotencyService makes sure a redelivered event is mailed at most once
// while its processed marker lives.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(adapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{redis: adapter, config: config}
}

type ProcessingContext struct {
	EventID      string
	lockAcquired bool
}

func (s *IdempotencyService) Acquire(ctx context.Context, eventID string) (*ProcessingContext, error) {
	done, err := s.redis.Exists(ctx, s.config.ProcessedKeyPrefix+eventID)
	if err != nil {
		logger.Warn("processed marker check failed", "event_id", eventID, "error", err)
	} else if done {
		return nil, ErrAlreadyProcessed
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+eventID, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &ProcessingContext{EventID: eventID, lockAcquired: true}, nil
}

// MarkSuccess stores the processed marker and drops the lock.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+pc.EventID, []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}
	return s.Release(ctx, pc)
}

func (s *IdempotencyService) Release(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.EventID); err != nil {
		logger.Warn("failed to release lock", "event_id", pc.EventID, "error", err)
		return err
	}
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	return s.redis.Exists(ctx, s.config.ProcessedKeyPrefix+eventID)
}
