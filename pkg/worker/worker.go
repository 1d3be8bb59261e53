package worker

import (
	"context"
	"sync"

	"github.com/nimasrn/debt-ledger/pkg/logger"
)

type WorkerHandler = func(ctx context.Context, workerIndex int, job any)

// WorkerManager fans jobs out to a fixed pool of goroutines. Jobs are
// enqueued on a buffered channel; Stop waits for running jobs to return.
type WorkerManager struct {
	jobs           chan any
	numberOfWorker int
	do             WorkerHandler
	wg             sync.WaitGroup
	cancel         context.CancelFunc
	once           sync.Once
}

func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &WorkerManager{
		jobs:           make(chan any, bufferSize),
		numberOfWorker: numberOfWorkers,
	}
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

func (w *WorkerManager) Pending() int {
	return len(w.jobs)
}

// Enqueue blocks while the buffer is full or until ctx is done.
func (w *WorkerManager) Enqueue(ctx context.Context, job any) bool {
	select {
	case w.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *WorkerManager) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.wg.Done()
			for {
				select {
				case job := <-w.jobs:
					w.do(ctx, index, job)
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
	logger.Info("worker pool started", "workers", w.numberOfWorker)
}

func (w *WorkerManager) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()
		logger.Info("worker pool stopped")
	})
}
