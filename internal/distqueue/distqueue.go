// Package distqueue is the optional cross-host transport for handing
// individual starting configurations out to remote solver workers, for
// puzzles too large for one process's worker pool. It sits entirely
// outside the pure solver core: nothing in worldstate/placement/pipeline/
// solver imports it, and a solve that never configures a DistQueueURL
// never touches AMQP at all.
package distqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Job is one starting configuration dispatched to a remote worker: enough
// to reconstruct the seating without re-enumerating it locally.
type Job struct {
	ID         string    `json:"id"`
	PuzzleID   string    `json:"puzzle_id"`
	SeatRoles  []string  `json:"seat_roles"`
	ForkPath   []int     `json:"fork_path"`
	Priority   int       `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
	Retries    int       `json:"retries"`
	MaxRetries int       `json:"max_retries"`
}

// JobResult carries back every final world's rendered form found while
// running one Job, or an error if the worker couldn't complete it.
type JobResult struct {
	JobID     string        `json:"job_id"`
	Success   bool          `json:"success"`
	Worlds    []string      `json:"worlds,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// JobHandler runs one Job and returns the rendered final worlds it found.
type JobHandler func(ctx context.Context, job Job) ([]string, error)

// Queue manages the RabbitMQ-backed job transport.
type Queue struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	handlers   map[string]JobHandler
	mu         sync.RWMutex
	logger     *slog.Logger
	queueName  string
	resultCh   chan JobResult
	ctx        context.Context
	cancelFunc context.CancelFunc
}

type Config struct {
	URL        string
	QueueName  string
	Prefetch   int
	Logger     *slog.Logger
	MaxRetries int
}

func New(cfg Config) (*Queue, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to distqueue broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	_, err = ch.QueueDeclare(cfg.QueueName, true, false, false, false, amqp.Table{"x-max-priority": 10})
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	dlqName := cfg.QueueName + "_dlq"
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare dlq: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		conn:       conn,
		channel:    ch,
		handlers:   make(map[string]JobHandler),
		logger:     logger,
		queueName:  cfg.QueueName,
		resultCh:   make(chan JobResult, 100),
		ctx:        ctx,
		cancelFunc: cancel,
	}, nil
}

// RegisterHandler installs the handler invoked for every consumed Job.
// A single handler is typical (one job kind: "solve_start"), but the
// queue keys by an arbitrary string so future job kinds can be added
// without changing the wire format.
func (q *Queue) RegisterHandler(jobKind string, handler JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobKind] = handler
}

func (q *Queue) Publish(ctx context.Context, kind string, job Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	envelope := struct {
		Kind string `json:"kind"`
		Job  Job    `json:"job"`
	}{Kind: kind, Job: job}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.channel.PublishWithContext(ctx, "", q.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Priority:     uint8(job.Priority),
		MessageId:    job.ID,
		Timestamp:    job.CreatedAt,
	})
}

func (q *Queue) Start(ctx context.Context) error {
	msgs, err := q.channel.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	go q.processMessages(ctx, msgs)
	return nil
}

func (q *Queue) processMessages(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			q.processMessage(ctx, msg)
		}
	}
}

func (q *Queue) processMessage(ctx context.Context, msg amqp.Delivery) {
	var envelope struct {
		Kind string `json:"kind"`
		Job  Job    `json:"job"`
	}
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		q.logger.Error("failed to unmarshal job", "error", err)
		msg.Nack(false, false)
		return
	}

	q.mu.RLock()
	handler, ok := q.handlers[envelope.Kind]
	q.mu.RUnlock()

	if !ok {
		q.logger.Error("no handler for job kind", "kind", envelope.Kind)
		msg.Nack(false, false)
		return
	}

	job := envelope.Job
	start := time.Now()
	worlds, err := handler(ctx, job)
	duration := time.Since(start)

	result := JobResult{JobID: job.ID, Timestamp: time.Now(), Duration: duration}

	if err != nil {
		result.Success = false
		result.Error = err.Error()

		if job.Retries < job.MaxRetries {
			job.Retries++
			if rerr := q.Publish(ctx, envelope.Kind, job); rerr != nil {
				q.logger.Error("failed to requeue job", "error", rerr)
			}
		} else {
			dlqName := q.queueName + "_dlq"
			q.channel.PublishWithContext(ctx, "", dlqName, false, false, amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
			})
		}
		msg.Nack(false, false)
	} else {
		result.Success = true
		result.Worlds = worlds
		msg.Ack(false)
	}

	select {
	case q.resultCh <- result:
	default:
	}
}

func (q *Queue) Results() <-chan JobResult {
	return q.resultCh
}

func (q *Queue) Close() error {
	q.cancelFunc()
	if err := q.channel.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}

func (q *Queue) HealthCheck() error {
	if q.conn.IsClosed() {
		return fmt.Errorf("connection closed")
	}
	return nil
}
