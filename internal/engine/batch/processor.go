package batch

import (
	"context"
	"errors"
	"fmt"
)

// Batch size limits.
const (
	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the maximum allowed batch size.
	MaxBatchSize = 1000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// BatchCallback is a function that processes a single batch of items.
// It receives the batch items, batch index (0-based), and should return an error if processing fails.
//
//nolint:revive // BatchCallback is the canonical name for this exported type.
type BatchCallback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is an optional callback invoked after each batch is processed.
// It receives progress information for UI updates or logging.
type ProgressCallback func(progress *Progress)

// Processor splits items into fixed-size batches and hands them, one at a
// time and in order, to a callback.
type Processor[T any] struct {
	// batchSize is the number of items per batch.
	batchSize int

	// onStart is an optional callback invoked before each batch.
	onStart ProgressCallback

	// onProgress is an optional callback invoked after each batch.
	onProgress ProgressCallback
}

// NewProcessor creates a new batch processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}

	return &Processor[T]{
		batchSize: batchSize,
	}, nil
}

// WithStartCallback sets a callback invoked just before each batch runs.
// The progress passed to it does not yet include that batch.
func (p *Processor[T]) WithStartCallback(callback ProgressCallback) *Processor[T] {
	p.onStart = callback
	return p
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// Process processes items in batches using the provided callback.
// Processing is sequential: a batch starts only after the previous callback
// returned. It stops on the first error or when ctx is cancelled between
// batches. An empty items slice invokes the callback zero times.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback BatchCallback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	batches := p.Split(items)
	progress := NewProgress(len(items), len(batches), p.batchSize)

	for batchIndex, batch := range batches {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p.onStart != nil {
			p.onStart(progress)
		}

		if err := callback(ctx, batch, batchIndex); err != nil {
			return fmt.Errorf("batch %d failed: %w", batchIndex, err)
		}

		progress.AddProcessed(len(batch))

		if p.onProgress != nil {
			p.onProgress(progress)
		}
	}

	return nil
}

// Split partitions items into the processor's batches.
func (p *Processor[T]) Split(items []T) [][]T {
	return Split(items, p.batchSize)
}

// Split partitions items into ⌈len(items)/size⌉ contiguous batches in
// original order; the last batch may be shorter. Batches share the backing
// array of items. It panics if size < 1.
func Split[T any](items []T, size int) [][]T {
	if size < MinBatchSize {
		panic(fmt.Sprintf("batch: invalid size %d", size))
	}

	bounds := boundaries(len(items), size)
	batches := make([][]T, len(bounds))
	for i, b := range bounds {
		batches[i] = items[b[0]:b[1]:b[1]]
	}
	return batches
}

// TotalBatches returns the number of batches needed for totalItems.
func TotalBatches(totalItems, size int) int {
	batches := totalItems / size
	if totalItems%size > 0 {
		batches++
	}
	return batches
}

func boundaries(totalItems, size int) [][2]int {
	total := TotalBatches(totalItems, size)
	bounds := make([][2]int, total)

	for i := 0; i < total; i++ {
		start := i * size
		end := min(start+size, totalItems)
		bounds[i] = [2]int{start, end}
	}

	return bounds
}
