package jobs

import "go.uber.org/zap"

// Job is one unit of background AI work.
type Job interface {
	// Kind names the job for logging.
	Kind() string
}

// GenerateTitle produces a chat title from the first user message.
type GenerateTitle struct {
	ChatID    string
	UserID    string
	FirstBody string
}

func (GenerateTitle) Kind() string { return "generate_title" }

// GenerateResponse streams an assistant reply for a chat. The worker loads
// the history itself: the enqueueing transaction has committed by the time
// the job runs, so a reload sees the triggering message.
type GenerateResponse struct {
	ChatID string
	UserID string
}

func (GenerateResponse) Kind() string { return "generate_response" }

const queueCapacity = 1024

// Queue hands jobs from the push pipeline to the worker. Enqueueing never
// blocks: it happens inside database transactions, so when the queue is
// full the job is dropped and logged instead of stalling a push.
type Queue struct {
	ch     chan Job
	logger *zap.Logger
}

func NewQueue(logger *zap.Logger) *Queue {
	return &Queue{
		ch:     make(chan Job, queueCapacity),
		logger: logger.With(zap.String("component", "job_queue")),
	}
}

func (q *Queue) EnqueueGenerateTitle(chatID, userID, firstBody string) {
	q.enqueue(GenerateTitle{ChatID: chatID, UserID: userID, FirstBody: firstBody})
}

func (q *Queue) EnqueueGenerateResponse(chatID, userID string) {
	q.enqueue(GenerateResponse{ChatID: chatID, UserID: userID})
}

func (q *Queue) enqueue(job Job) {
	select {
	case q.ch <- job:
	default:
		q.logger.Error("Job queue full, dropping job", zap.String("kind", job.Kind()))
	}
}

// Jobs exposes the receive side for the worker.
func (q *Queue) Jobs() <-chan Job {
	return q.ch
}
