package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/api/metrics"
	"github.com/99minutos/admin-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

// Dispatcher delivers login-link mails on a fixed set of workers. Jobs are
// sharded by recipient so mails to one address go out in the order they were
// requested.
type Dispatcher struct {
	workers []chan ports.LoginLinkJob
	mailer  ports.Mailer
	log     zerolog.Logger
	done    chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.LoginLinkJob, numWorkers),
		mailer:  mailer,
		log:     log,
		done:    make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LoginLinkJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Enqueue hands a job to the worker responsible for its recipient. It never
// blocks: the job is dropped when ctx is done, the dispatcher has stopped or
// the worker's buffer is full. It reports whether the job was queued.
func (d *Dispatcher) Enqueue(ctx context.Context, job ports.LoginLinkJob) bool {
	idx := d.shardIndex(job.Email)
	if ctx.Err() != nil {
		d.drop(idx, job, "request cancelled")
		return false
	}
	select {
	case <-d.done:
		d.drop(idx, job, "dispatcher stopped")
		return false
	default:
	}

	select {
	case d.workers[idx] <- job:
		metrics.LoginLinksQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.drop(idx, job, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(workerID int, job ports.LoginLinkJob, reason string) {
	metrics.LoginLinksSentTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("email", job.Email).
		Int("worker_id", workerID).
		Str("reason", reason).
		Msg("login link dropped")
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LoginLinkJob) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.LoginLinksQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.deliver(ctx, id, job)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, job ports.LoginLinkJob) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.mailer.SendLoginLink(sendCtx, job)
	metrics.LoginLinkDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LoginLinksSentTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("email", job.Email).
			Int("worker_id", workerID).
			Msg("login link delivery failed")
		return
	}
	metrics.LoginLinksSentTotal.WithLabelValues("sent").Inc()
}
