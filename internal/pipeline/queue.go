package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// Job is one queued invoice. Done, when non-nil, receives the result;
// the channel must have capacity for it or the worker blocks.
type Job struct {
	Request Request
	Done    chan<- Result
}

// Queue is a bounded worker pool over a Processor. Invoices share no
// mutable state, so the only coordination is the job channel itself.
type Queue struct {
	proc    *Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	sending sync.WaitGroup
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					res := q.proc.Process(ctx, job.Request)
					cancel()

					if res.Err != nil {
						q.logger.Error("queue.job.failed",
							"worker_id", workerID,
							"id", res.ID,
							"category", string(res.Err.Type))
					}
					if job.Done != nil {
						job.Done <- res
					}
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue submits a job, applying backpressure when the queue is full,
// and reports whether the job was accepted. Jobs submitted after
// shutdown are rejected with a warning. The blocking send happens
// outside the mutex so a full queue never stalls Shutdown; the sending
// group keeps the channel open until every accepted job is in it.
func (q *Queue) Enqueue(_ context.Context, job Job) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue.rejected", "id", job.Request.ID)
		return false
	}
	q.sending.Add(1)
	q.mu.Unlock()
	defer q.sending.Done()

	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue.full", "id", job.Request.ID)
		q.ch <- job
	}
	return true
}

// ProcessBatch fans reqs out over the pool and returns the results in
// input order, correlated by request ID. Requests rejected because the
// queue shut down mid-batch come back as failed results.
func (q *Queue) ProcessBatch(ctx context.Context, reqs []Request) []Result {
	done := make(chan Result, len(reqs))
	accepted := 0
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = uuid.NewString()
		}
		if q.Enqueue(ctx, Job{Request: reqs[i], Done: done}) {
			accepted++
		}
	}

	byID := make(map[string]Result, accepted)
	for n := 0; n < accepted; n++ {
		res := <-done
		byID[res.ID] = res
	}

	out := make([]Result, len(reqs))
	for i, req := range reqs {
		res, ok := byID[req.ID]
		if !ok {
			res = Result{ID: req.ID, Err: rejected(req.ID)}
		}
		out[i] = res
	}
	return out
}

func rejected(id string) *entity.CategorizedError {
	catErr := entity.NewCategorizedError(constants.UnknownError,
		"queue is shut down", id, nil)
	catErr.Recoverable = false
	return catErr
}

// Shutdown stops accepting jobs and waits for the workers to drain,
// bounded by ctx. In-flight Enqueue calls finish first: the workers
// keep consuming until the last accepted job is in the channel, so the
// wait always makes progress.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.sending.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
