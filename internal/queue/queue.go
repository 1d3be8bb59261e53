package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/redis"
)

// noBlock makes XREADGROUP return immediately when the stream is empty.
const noBlock time.Duration = -1

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	// Attempts counts deliveries, the current one included.
	Attempts int
}

// MessageHandler processes one message. A nil error acks it; an error
// leaves it pending so it is claimed again after the visibility timeout.
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

type Queue struct {
	adapter    redis.RedisAdapter
	config     QueueConfig
	handler    MessageHandler
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	processing map[string]*Message
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	DeadLetters     int64
	ConsumerCount   int64
}

// NewQueue creates the stream and its consumer group if missing.
func NewQueue(ctx context.Context, adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "default-group"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	q := &Queue{
		adapter:    adapter,
		config:     config,
		processing: make(map[string]*Message),
	}

	err := adapter.XGroupCreateMkStream(ctx, config.Name, config.ConsumerGroup, "0")
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return q, nil
}

func (q *Queue) DeadLetterName() string {
	return q.config.Name + ":dlq"
}

// Publish adds a message to the stream.
func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]any{
		"data":      string(data),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range metadata {
		values["meta_"+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, values)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	if q.config.MaxLen > 0 {
		if err := q.adapter.XTrimApprox(ctx, q.config.Name, q.config.MaxLen); err != nil {
			logger.Warn("[queue] trim failed", "queue", q.config.Name, "error", err)
		}
	}
	return id, nil
}

// PublishJSON publishes a JSON-encoded message.
func (q *Queue) PublishJSON(ctx context.Context, data any, metadata map[string]string) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return q.Publish(ctx, jsonData, metadata)
}

// Consume polls the stream in the background until ctx is done or Stop
// is called.
func (q *Queue) Consume(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	q.handler = handler
	q.cancel = cancel
	q.wg.Add(1)
	go q.consumeLoop(ctx)

	logger.Info("[queue] consuming", "queue", q.config.Name, "group", q.config.ConsumerGroup, "consumer", q.config.ConsumerName)
	return nil
}

func (q *Queue) consumeLoop(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.processMessages(ctx)
			q.claimStuckMessages(ctx)
		}
	}
}

func (q *Queue) processMessages(ctx context.Context) {
	messages, err := q.adapter.XReadGroup(ctx,
		q.config.ConsumerGroup,
		q.config.ConsumerName,
		q.config.Name,
		q.config.BatchSize,
		noBlock,
	)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("[queue] read failed", "queue", q.config.Name, "error", err)
		}
		return
	}

	for _, streamMsg := range messages {
		msg := toMessage(streamMsg)
		msg.Attempts = 1
		q.handleMessage(ctx, msg)
	}
}

// claimStuckMessages takes over entries left pending longer than the
// visibility timeout, either by a failed handler or a dead consumer.
func (q *Queue) claimStuckMessages(ctx context.Context) {
	pending, err := q.adapter.XPendingExt(ctx, q.config.Name, q.config.ConsumerGroup, 100)
	if err != nil || len(pending) == 0 {
		return
	}

	deliveries := make(map[string]int64, len(pending))
	var ids []string
	for _, p := range pending {
		if p.Idle >= q.config.VisibilityTimeout {
			ids = append(ids, p.ID)
			deliveries[p.ID] = p.RetryCount
		}
	}
	if len(ids) == 0 {
		return
	}

	messages, err := q.adapter.XClaim(ctx,
		q.config.Name,
		q.config.ConsumerGroup,
		q.config.ConsumerName,
		q.config.VisibilityTimeout,
		ids...,
	)
	if err != nil {
		logger.Error("[queue] claim failed", "queue", q.config.Name, "error", err)
		return
	}

	for _, streamMsg := range messages {
		msg := toMessage(streamMsg)
		msg.Attempts = int(deliveries[msg.ID]) + 1
		q.handleMessage(ctx, msg)
	}
}

func (q *Queue) handleMessage(ctx context.Context, msg *Message) {
	q.mu.Lock()
	q.processing[msg.ID] = msg
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.processing, msg.ID)
		q.mu.Unlock()
	}()

	if msg.Attempts > q.config.MaxRetries {
		q.moveToDeadLetterQueue(ctx, msg)
		q.ack(ctx, msg.ID)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(hctx, msg); err != nil {
		logger.Warn("[queue] handler failed", "queue", q.config.Name, "id", msg.ID, "attempt", msg.Attempts, "error", err)
		return
	}
	q.ack(ctx, msg.ID)
}

func (q *Queue) ack(ctx context.Context, messageID string) {
	if err := q.adapter.XAck(ctx, q.config.Name, q.config.ConsumerGroup, messageID); err != nil {
		logger.Error("[queue] ack failed", "queue", q.config.Name, "id", messageID, "error", err)
	}
}

func (q *Queue) moveToDeadLetterQueue(ctx context.Context, msg *Message) {
	if !q.config.EnableDLQ {
		logger.Warn("[queue] dropping message after max retries", "queue", q.config.Name, "id", msg.ID)
		return
	}

	values := map[string]any{
		"data":           string(msg.Data),
		"original_id":    msg.ID,
		"attempts":       msg.Attempts - 1,
		"failed_at":      time.Now().UTC().Format(time.RFC3339Nano),
		"original_queue": q.config.Name,
	}
	for k, v := range msg.Metadata {
		values["meta_"+k] = v
	}

	if _, err := q.adapter.XAdd(ctx, q.DeadLetterName(), values); err != nil {
		logger.Error("[queue] dead letter failed", "queue", q.config.Name, "id", msg.ID, "error", err)
		return
	}
	logger.Warn("[queue] message moved to dead letter queue", "queue", q.config.Name, "id", msg.ID)
}

func toMessage(streamMsg redis.StreamMessage) *Message {
	msg := &Message{
		ID:       streamMsg.ID,
		Metadata: make(map[string]string),
	}

	for k, v := range streamMsg.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "data":
			msg.Data = []byte(s)
		case k == "timestamp":
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				msg.Timestamp = ts
			}
		case k == "attempts":
			msg.Attempts, _ = strconv.Atoi(s)
		case strings.HasPrefix(k, "meta_"):
			msg.Metadata[strings.TrimPrefix(k, "meta_")] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

// Stop cancels consumption and waits for the in-flight batch.
func (q *Queue) Stop(timeout time.Duration) error {
	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue to stop")
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	total, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}
	stats := &QueueStats{TotalMessages: total}

	if dead, err := q.adapter.XLen(ctx, q.DeadLetterName()); err == nil {
		stats.DeadLetters = dead
	}
	if pending, err := q.adapter.XPending(ctx, q.config.Name, q.config.ConsumerGroup); err == nil && pending != nil {
		stats.PendingMessages = pending.Count
		stats.ConsumerCount = int64(len(pending.Consumers))
	}
	return stats, nil
}
