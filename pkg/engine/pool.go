package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/sdejongh/imdirdiff/pkg/index"
	"github.com/sdejongh/imdirdiff/pkg/logging"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/output"
	"github.com/sdejongh/imdirdiff/pkg/report"
)

// comparisonResults is what the pool hands back to Run. It holds no pixel
// data: rendered diffs are written out by the task that produced them.
type comparisonResults struct {
	outcomes      map[string]report.Outcome
	diffs         map[string]string
	bytesCompared int64
}

// compareAll runs one comparison per common path on a bounded pool. Per-path
// failures become outcomes; a failure to store a diff image or context
// cancellation aborts the run.
func (e *Engine) compareAll(ctx context.Context, common []string, leftIdx, rightIdx *index.PathIndex) (*comparisonResults, error) {
	results := &comparisonResults{
		outcomes: make(map[string]report.Outcome, len(common)),
		diffs:    make(map[string]string),
	}
	keepDiffs := e.html != nil && e.operation.RenderDiffs

	var (
		mu       sync.Mutex
		done     atomic.Int32
		bytes    atomic.Int64
		progress sync.Mutex
	)

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(max(e.operation.MaxWorkers, 1)).
		WithCancelOnError().
		WithFirstError()

	for _, rel := range common {
		if ctx.Err() != nil {
			break
		}

		p.Go(func(ctx context.Context) error {
			startTime := time.Now()
			cmp, err := e.comparator.Compare(ctx, e.left, e.right, leftIdx.Source(rel), rightIdx.Source(rel))

			update := output.ProgressUpdate{
				Type:  output.EventCompareComplete,
				Path:  rel,
				Total: len(common),
			}

			var diffPath string
			if err != nil {
				update.Type = output.EventCompareError
				update.Class = models.ClassUndetermined
				update.Error = err
				e.logger.Warn(ctx, "Comparison failed", logging.Fields{
					"path":  rel,
					"error": err.Error(),
				})
			} else {
				if keepDiffs && cmp.Diff != nil {
					path, werr := e.html.WriteDiff(ctx, rel, cmp.Diff)
					if werr != nil {
						return fmt.Errorf("failed to write report: %w", werr)
					}
					diffPath = path
				}
				cmp.Diff = nil

				bytes.Add(cmp.BytesCompared)
				update.Class = cmp.Outcome.Classification()
				e.logger.Debug(ctx, "Compared", logging.Fields{
					"path":     rel,
					"outcome":  cmp.Outcome.Kind,
					"duration": time.Since(startTime).String(),
				})
			}

			mu.Lock()
			results.outcomes[rel] = report.Outcome{Comparison: cmp, Err: err}
			if diffPath != "" {
				results.diffs[rel] = diffPath
			}
			mu.Unlock()

			if e.formatter != nil {
				progress.Lock()
				update.Current = int(done.Add(1))
				e.formatter.Progress(update)
				progress.Unlock()
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results.bytesCompared = bytes.Load()
	return results, nil
}
