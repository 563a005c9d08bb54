// Package batch splits keyword lists into fixed-size request batches.
//
// The keyword data API accepts at most 100 keywords per request, so every
// run is driven through a Processor:
//   - Configurable batch size (default 100 items per batch)
//   - Strictly sequential, in-order execution that stops on the first error
//   - Context-aware cancellation between batches
//   - Progress tracking with callbacks for console reporting
package batch
