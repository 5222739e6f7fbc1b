package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/order-status-etl/internal/domain"
	"github.com/couchcryptid/order-status-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into a display-ready order.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OrderEvent, error)
}

// BatchLoader writes multiple orders to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OrderEvent) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for retry backoff and batch timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		batchSize:   batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newBackoff(p.clock)
	for ctx.Err() == nil {
		if !p.processBatch(ctx, retry) {
			break
		}
	}

	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, retry *backoff) bool {
	start := p.clock.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return retry.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))

	orders, transformed := p.transformAll(ctx, rawBatch)
	if len(orders) == 0 {
		retry.reset()
		return true
	}

	if !p.loadWithRetry(ctx, orders, retry) {
		return false
	}

	p.metrics.MessagesProduced.Add(float64(len(orders)))
	for _, raw := range transformed {
		p.commitOffset(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// loadWithRetry loads the same orders until the loader accepts them. The
// reader has already moved past these messages, so giving up on a batch and
// committing a later one would drop it. Returns false if ctx is cancelled first.
func (p *Pipeline) loadWithRetry(ctx context.Context, orders []domain.OrderEvent, retry *backoff) bool {
	for {
		err := p.loader.LoadBatch(ctx, orders)
		if err == nil {
			retry.reset()
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed, retrying", "error", err, "batch_size", len(orders))
		if !retry.wait(ctx) {
			return false
		}
	}
}

// transformAll transforms each message in the batch. Messages that fail are
// logged, counted and committed so they are not redelivered. It returns the
// transformed orders and the raw events they came from.
func (p *Pipeline) transformAll(ctx context.Context, rawBatch []domain.RawEvent) ([]domain.OrderEvent, []domain.RawEvent) {
	orders := make([]domain.OrderEvent, 0, len(rawBatch))
	transformed := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		order, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		orders = append(orders, order)
		transformed = append(transformed, raw)
	}
	return orders, transformed
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
