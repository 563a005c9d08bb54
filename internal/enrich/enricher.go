package enrich

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/rshade/kwvolume/internal/engine/batch"
	"github.com/rshade/kwvolume/internal/kwapi"
	"github.com/rshade/kwvolume/internal/logging"
	"github.com/rshade/kwvolume/internal/table"
)

// Observer is notified as batches are fetched. Batch numbers are 1-based;
// after a fetch, progress.ProcessedBatches is the number of the batch just
// fetched.
type Observer interface {
	BatchStarted(num, total int)
	BatchFetched(progress batch.ProgressSnapshot, keywords []string, result *kwapi.BatchResult)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// BatchStarted implements Observer.
func (o Observers) BatchStarted(num, total int) {
	for _, obs := range o {
		obs.BatchStarted(num, total)
	}
}

// BatchFetched implements Observer.
func (o Observers) BatchFetched(progress batch.ProgressSnapshot, keywords []string, result *kwapi.BatchResult) {
	for _, obs := range o {
		obs.BatchFetched(progress, keywords, result)
	}
}

// Enricher drives batched volume lookups for a table.
type Enricher struct {
	fetcher   kwapi.Fetcher
	batchSize int
	observer  Observer
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithObserver sets the observer notified for every batch.
func WithObserver(o Observer) Option {
	return func(e *Enricher) {
		e.observer = o
	}
}

// New creates an Enricher sending batches of batchSize keywords to fetcher.
func New(fetcher kwapi.Fetcher, batchSize int, opts ...Option) (*Enricher, error) {
	if fetcher == nil {
		return nil, errors.New("enrich: fetcher is required")
	}
	if _, err := batch.NewProcessor[string](batchSize); err != nil {
		return nil, err
	}
	e := &Enricher{fetcher: fetcher, batchSize: batchSize, observer: Observers(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Collection is the outcome of fetching every batch.
type Collection struct {
	// Volumes maps each returned keyword to its volume.
	Volumes map[string]*int64

	// Batches is the number of requests sent.
	Batches int

	// Credits is the credit balance from the last response, when reported.
	Credits *int64
}

// Collect fetches volumes for keywords one batch at a time, in order. The
// first failure aborts the run; nothing fetched so far is returned.
func (e *Enricher) Collect(ctx context.Context, keywords []string) (*Collection, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "enrich").
		Str("operation", "collect").
		Logger()

	proc, err := batch.NewProcessor[string](e.batchSize)
	if err != nil {
		return nil, err
	}

	total := batch.TotalBatches(len(keywords), e.batchSize)
	coll := &Collection{Volumes: make(map[string]*int64, len(keywords))}

	var (
		fetched    []string
		lastResult *kwapi.BatchResult
		fetchErr   error
	)

	proc.WithStartCallback(func(p *batch.Progress) {
		e.observer.BatchStarted(p.CurrentBatch(), p.TotalBatches)
	}).WithProgressCallback(func(p *batch.Progress) {
		snap := p.Snapshot()
		log.Debug().Ctx(ctx).
			Int("batch", snap.ProcessedBatches).
			Int("total_batches", snap.TotalBatches).
			Int("requested", len(fetched)).
			Int("returned", len(lastResult.Keywords)).
			Float64("percent_complete", snap.PercentComplete).
			Dur("eta", snap.Remaining).
			Bool("complete", snap.Complete).
			Msg("batch fetched")
		e.observer.BatchFetched(snap, fetched, lastResult)
	})

	err = proc.Process(ctx, keywords, func(ctx context.Context, kws []string, idx int) error {
		result, fetchBatchErr := e.fetcher.FetchBatch(ctx, kws)
		if fetchBatchErr != nil {
			fetchErr = fmt.Errorf("fetching batch %d/%d: %w", idx+1, total, fetchBatchErr)
			return fetchErr
		}

		maps.Copy(coll.Volumes, result.Volumes())
		coll.Batches++
		if result.Credits != nil {
			coll.Credits = result.Credits
		}
		fetched, lastResult = kws, result
		return nil
	})
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		return nil, fmt.Errorf("fetching batch %d/%d: %w", coll.Batches+1, total, err)
	}

	return coll, nil
}

// Result is the outcome of Run.
type Result struct {
	Collection
	Stats MergeStats
}

// Run fetches volumes for every keyword in t and merges them into t. On error
// t is left unmodified.
func (e *Enricher) Run(ctx context.Context, t *table.Table) (*Result, error) {
	coll, err := e.Collect(ctx, t.Keywords())
	if err != nil {
		return nil, err
	}

	stats := Merge(t, coll.Volumes)
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "enrich").
		Int("rows_total", stats.RowsTotal).
		Int("rows_updated", stats.RowsUpdated).
		Int("rows_unmatched", stats.RowsUnmatched).
		Int("null_volumes", stats.NullVolumes).
		Bool("column_added", stats.ColumnAdded).
		Msg("volumes merged")

	return &Result{Collection: *coll, Stats: stats}, nil
}
