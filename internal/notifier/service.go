package notifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimasrn/debt-ledger/internal/queue"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/worker"
)

const (
	ProcessingTimeout = 30 * time.Second
	ReportInterval    = 30 * time.Second
	ShutdownTimeout   = time.Minute
)

// Processor handles one kind of queued event.
type Processor interface {
	Process(ctx context.Context, msg *queue.Message) error
	GetType() string
}

// Consumer is the part of a queue the service drives.
type Consumer interface {
	Consume(ctx context.Context, handler queue.MessageHandler) error
	Stop(timeout time.Duration) error
	GetStats(ctx context.Context) (*queue.QueueStats, error)
}

type Stats struct {
	Processed int64
	Failed    int64
}

// Service reads events from the queue and fans them out to a worker pool.
// The queue handler waits for the worker result so acks follow the outcome.
type Service struct {
	consumer  Consumer
	processor Processor
	worker    *worker.WorkerManager
	timeout   time.Duration
	processed atomic.Int64
	failed    atomic.Int64
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewService(consumer Consumer, processor Processor, workers int) *Service {
	return &Service{
		consumer:  consumer,
		processor: processor,
		worker:    worker.NewWorkerManager(workers*4, workers),
		timeout:   ProcessingTimeout,
	}
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.worker.SetWorker(s.work)
	s.worker.Start(ctx)

	if err := s.consumer.Consume(ctx, s.handle); err != nil {
		s.cancel()
		s.worker.Stop()
		return fmt.Errorf("start consumer: %w", err)
	}

	s.wg.Add(1)
	go s.report(ctx)

	logger.Info("notifier started", "processor", s.processor.GetType())
	return nil
}

func (s *Service) handle(ctx context.Context, msg *queue.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	j := &job{ctx: ctx, msg: msg, result: make(chan error, 1)}
	if !s.worker.Enqueue(ctx, j) {
		return fmt.Errorf("enqueue %s: %w", msg.ID, ctx.Err())
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for worker: %w", ctx.Err())
	}
}

func (s *Service) work(_ context.Context, workerIndex int, v any) {
	j, ok := v.(*job)
	if !ok {
		logger.Error("invalid job type", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		j.result <- j.ctx.Err()
		return
	}

	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.failed.Add(1)
		logger.Error("event processing failed", "worker", workerIndex, "id", j.msg.ID, "error", err)
	} else {
		s.processed.Add(1)
	}
	j.result <- err
}

func (s *Service) Stats() Stats {
	return Stats{Processed: s.processed.Load(), Failed: s.failed.Load()}
}

func (s *Service) report(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStats(ctx)
		}
	}
}

func (s *Service) logStats(ctx context.Context) {
	stats := s.Stats()
	fields := []any{"processed", stats.Processed, "failed", stats.Failed, "backlog", s.worker.Pending()}
	if q, err := s.consumer.GetStats(ctx); err == nil {
		fields = append(fields, "stream", q.TotalMessages, "pending", q.PendingMessages, "dead_letters", q.DeadLetters)
	}
	logger.Info("notifier stats", fields...)
}

func (s *Service) Stop() {
	logger.Info("notifier stopping")
	if err := s.consumer.Stop(ShutdownTimeout); err != nil {
		logger.Error("queue stop failed", "error", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.worker.Stop()
	s.wg.Wait()
	s.logStats(context.Background())
	logger.Info("notifier stopped")
}
