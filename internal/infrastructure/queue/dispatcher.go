package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/api/metrics"
	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes position pings to a fixed set of workers using consistent
// hashing on the demande id, guaranteeing per-demande ordering.
type Dispatcher struct {
	workers []chan ports.PositionInput
	service ports.PositionService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.PositionService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PositionInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PositionInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a ping to the worker responsible for its demande without
// blocking. It returns domain.ErrPositionQueueFull when that worker already
// holds channelBuffer pings.
func (d *Dispatcher) Enqueue(ping ports.PositionInput) error {
	idx := d.shardIndex(ping.DemandeID)
	select {
	case d.workers[idx] <- ping:
	default:
		metrics.PositionPingsDroppedTotal.Inc()
		d.log.Warn().Str("demande_id", ping.DemandeID).Int("worker_id", idx).Msg("position queue full")
		return domain.ErrPositionQueueFull
	}
	metrics.PositionQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// shardIndex maps a demande id deterministically to a worker index.
func (d *Dispatcher) shardIndex(demandeID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(demandeID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PositionInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ping, ok := <-ch:
			if !ok {
				return
			}
			metrics.PositionQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Process(ctx, ping); err != nil {
				d.log.Warn().Err(err).
					Str("demande_id", ping.DemandeID).
					Int("worker_id", id).
					Msg("position processing failed")
			}
		}
	}
}
