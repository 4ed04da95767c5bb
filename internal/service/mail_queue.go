package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"barylstyle/contacts-api/pkg/util"

	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("mail queue full")

type MailJob struct {
	ID      string
	To      string
	Subject string
	Body    string
}

// MailDispatcher accepts mail for asynchronous delivery
type MailDispatcher interface {
	Enqueue(job *MailJob) error
}

// MailQueue delivers mail in the background with a fixed number of
// workers. Enqueue never blocks, a full queue is reported to the caller.
type MailQueue struct {
	jobs    chan *MailJob
	mailer  Mailer
	pending atomic.Int32
	workers int
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewMailQueue initializes a new mail queue that limits the
// max amount of mails that can be queued at once
func NewMailQueue(m Mailer, workers, size int, timeout time.Duration) *MailQueue {
	zap.L().Debug("Initializing mail queue", zap.Int("size", size), zap.Int("workers", workers))

	return &MailQueue{
		jobs:    make(chan *MailJob, size),
		mailer:  m,
		workers: workers,
		timeout: timeout,
	}
}

// StartWorkerPool starts the workers. They stop once ctx is cancelled,
// use Wait to block until they did.
func (q *MailQueue) StartWorkerPool(ctx context.Context) {
	for range q.workers {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *MailQueue) Wait() {
	q.wg.Wait()
}

func (q *MailQueue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			if n := q.pending.Load(); n > 0 {
				zap.L().Warn("Mail worker stopping with undelivered mail", zap.Int32("pending", n))
			}
			return
		case job := <-q.jobs:
			q.send(ctx, job)
		}
	}
}

func (q *MailQueue) send(ctx context.Context, job *MailJob) {
	defer q.pending.Add(-1)

	sendCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	if err := q.mailer.Send(sendCtx, job.To, job.Subject, job.Body); err != nil {
		zap.L().Error("Mail delivery failed",
			zap.String("job_id", job.ID),
			zap.String("to", job.To),
			zap.Error(err))
		return
	}

	zap.L().Debug("Mail delivered", zap.String("job_id", job.ID))
}

func (q *MailQueue) Enqueue(job *MailJob) error {
	if job.ID == "" {
		job.ID = util.RandStr(8)
	}

	// Counted before the send so a worker never sees it go negative
	pending := q.pending.Add(1)

	select {
	case q.jobs <- job:
		zap.L().Debug("New mail enqueued", zap.Int32("pending", pending), zap.String("job_id", job.ID))
		return nil
	default:
		q.pending.Add(-1)
		return ErrQueueFull
	}
}
