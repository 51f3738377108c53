package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/api/metrics"
	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 64
)

// Runner executes one generation pipeline to its terminal state. It never
// returns an error: failures are recorded on the job itself.
type Runner interface {
	Run(ctx context.Context, g *domain.Generation)
}

// Dispatcher routes admitted generations to a fixed set of workers using
// consistent hashing on the job id. The pool bounds concurrent pipelines
// while admission stays non-blocking up to the channel buffer.
type Dispatcher struct {
	workers []chan *domain.Generation
	runner  Runner
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, runner Runner, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *domain.Generation, numWorkers),
		runner:  runner,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.Generation, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a generation to the worker responsible for its id. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(g *domain.Generation) {
	idx := d.shardIndex(g.ID)
	d.workers[idx] <- g
	metrics.PipelineQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a generation id deterministically to a worker index.
func (d *Dispatcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.Generation) {
	gauge := metrics.PipelineQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case g, ok := <-ch:
			if !ok {
				return
			}
			gauge.Set(float64(len(ch)))
			d.runner.Run(ctx, g)
		}
	}
}
