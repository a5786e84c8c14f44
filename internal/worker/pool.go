package worker

import (
	"context"
	"encoding/json"
	"time"

	"provex/internal/audit"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria   = "jobs:auditoria"
	QueueOrdenCompra = "jobs:orden_compra"
	QueueEmail       = "jobs:email"
)

const maxJobAttempts = 3

// Job is the generic envelope for all async tasks. Attempts counts how many
// times the pool has tried it; past maxJobAttempts it lands in the DLQ.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles one job type. A returned error makes the pool re-enqueue
// the job until the attempt limit.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Handlers binds each queue to its processor.
type Handlers struct {
	Auditoria   Processor
	OrdenCompra Processor
	Email       Processor
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP. It also satisfies the services' event sink interfaces.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAuditoria pushes an audit event for async persistence.
func (d *Dispatcher) EnqueueAuditoria(ctx context.Context, ev audit.Evento) error {
	return d.enqueue(ctx, QueueAuditoria, "auditoria", ev)
}

// EnqueueOrdenCompra pushes a purchase order document job.
func (d *Dispatcher) EnqueueOrdenCompra(ctx context.Context, payload map[string]interface{}) error {
	return d.enqueue(ctx, QueueOrdenCompra, "orden_compra", payload)
}

// EnqueueEmail pushes an outbound email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the three queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	queues := []string{QueueAuditoria, QueueOrdenCompra, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var p Processor
	switch queue {
	case QueueAuditoria:
		p = handlers.Auditoria
	case QueueOrdenCompra:
		p = handlers.OrdenCompra
	case QueueEmail:
		p = handlers.Email
	}
	if p == nil {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue, dropping job")
		return
	}

	if err := p.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxJobAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		log.Warn().Str("queue", queue).Str("type", job.Type).Int("attempts", job.Attempts).
			Err(err).Msg("job failed, re-enqueueing")
		if encoded, mErr := json.Marshal(job); mErr == nil {
			_ = rdb.LPush(ctx, queue, encoded).Err()
		}
	}
}
