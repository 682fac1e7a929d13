package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api/metrics"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

const (
	defaultWorkers = 8
	defaultTimeout = 30 * time.Second
	channelBuffer  = 256
)

// Dispatcher routes board task sync jobs to a fixed set of workers using
// consistent hashing on the client id, so one client's jobs run in order.
type Dispatcher struct {
	workers []chan ports.SyncJob
	cache   ports.TaskCache
	timeout time.Duration
	log     zerolog.Logger
}

var _ ports.TaskSyncer = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers. Each
// job gets its own deadline of timeout. Zero values select the defaults.
func NewDispatcher(numWorkers int, timeout time.Duration, cache ports.TaskCache, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := &Dispatcher{
		workers: make([]chan ports.SyncJob, numWorkers),
		cache:   cache,
		timeout: timeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SyncJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its client. It never
// blocks: when that worker's buffer is full the job is dropped and the task
// simply stays local.
func (d *Dispatcher) Enqueue(job ports.SyncJob) {
	idx := d.shardIndex(job.ClientID)
	select {
	case d.workers[idx] <- job:
		metrics.SyncQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.TaskSyncTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("client_id", job.ClientID).
			Int64("task_id", job.LocalID).
			Int("worker_id", idx).
			Msg("sync queue full, task left local")
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SyncJob) {
	depth := metrics.SyncQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job ports.SyncJob) {
	jobCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	_, err := d.cache.SyncCreate(jobCtx, job.ClientID, job.LocalID)
	result := syncResult(err)
	metrics.TaskSyncTotal.WithLabelValues(result).Inc()
	metrics.SyncDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if result == "failed" {
		d.log.Error().Err(err).
			Str("client_id", job.ClientID).
			Int64("task_id", job.LocalID).
			Int("worker_id", workerID).
			Msg("task sync failed")
	}
}

func syncResult(err error) string {
	switch {
	case err == nil:
		return "synced"
	case errors.Is(err, domain.ErrStaleResponse), errors.Is(err, domain.ErrTaskNotFound):
		return "stale"
	default:
		return "failed"
	}
}
