package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/imdirdiff/pkg/compare"
	"github.com/sdejongh/imdirdiff/pkg/index"
	"github.com/sdejongh/imdirdiff/pkg/logging"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/output"
	"github.com/sdejongh/imdirdiff/pkg/ratelimit"
	"github.com/sdejongh/imdirdiff/pkg/reconcile"
	"github.com/sdejongh/imdirdiff/pkg/report"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// Engine orchestrates one comparison run
type Engine struct {
	left       storage.Backend
	right      storage.Backend
	comparator compare.Comparator
	formatter  output.Formatter
	logger     logging.Logger
	operation  *models.DiffOperation
	writer     io.Writer

	// html is set for the duration of a run with a report directory
	html *output.HTMLWriter
}

// NewEngine creates a new diff engine. Reads from both backends are throttled
// when the operation sets a bandwidth limit.
func NewEngine(
	left, right storage.Backend,
	comparator compare.Comparator,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.DiffOperation,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	limiter := ratelimit.NewLimiter(operation.BandwidthLimit)

	return &Engine{
		left:       ratelimit.WrapBackend(left, limiter),
		right:      ratelimit.WrapBackend(right, limiter),
		comparator: comparator,
		formatter:  formatter,
		logger:     logger,
		operation:  operation,
		writer:     os.Stdout,
	}
}

// SetOutput redirects formatter output, stdout by default
func (e *Engine) SetOutput(w io.Writer) {
	e.writer = w
}

// Run indexes both roots, compares the common paths and renders the report
func (e *Engine) Run(ctx context.Context) (*models.DiffReport, error) {
	if err := e.operation.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	e.operation.StartedAt = &startTime

	dr := &models.DiffReport{
		OperationID: e.operation.ID,
		LeftPath:    e.operation.LeftPath,
		RightPath:   e.operation.RightPath,
		StartTime:   startTime,
	}

	e.logger.Info(ctx, "Starting comparison", logging.Fields{
		"operation_id": e.operation.ID,
		"left":         e.operation.LeftPath,
		"right":        e.operation.RightPath,
		"max_workers":  e.operation.MaxWorkers,
	})

	leftIdx, rightIdx, err := e.buildIndexes(ctx)
	if err != nil {
		return nil, err
	}

	rec := reconcile.Reconcile(leftIdx, rightIdx)
	e.logger.Info(ctx, "Reconciled roots", logging.Fields{
		"left_files":  leftIdx.Len(),
		"right_files": rightIdx.Len(),
		"left_only":   len(rec.LeftOnly),
		"right_only":  len(rec.RightOnly),
		"common":      len(rec.Common),
	})

	if e.formatter != nil {
		if err := e.formatter.Start(e.writer, len(rec.Common), e.operation.MaxWorkers); err != nil {
			return nil, err
		}
	}

	e.html = nil
	if e.operation.ReportDir != "" {
		e.html = output.NewHTMLWriter(e.operation.ReportDir, e.operation.ThumbHeight, e.operation.MaxWorkers)
	}

	results, err := e.compareAll(ctx, rec.Common, leftIdx, rightIdx)
	if err != nil {
		return nil, err
	}

	dr.Entries = report.BuildWithSides(rec, results.outcomes, report.Sides{
		Left:  leftIdx.Lookup,
		Right: rightIdx.Lookup,
	})
	dr.Stats = report.Summarize(dr.Entries)
	dr.Stats.BytesCompared = results.bytesCompared
	dr.Status = report.StatusFor(dr.Stats)

	if e.html != nil {
		indexPath, err := e.html.Write(ctx, dr, e.left, e.right, results.diffs)
		if err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		dr.ReportPath = indexPath
		e.logger.Info(ctx, "Report written", logging.Fields{"path": indexPath})
	}

	dr.EndTime = time.Now()
	dr.Duration = dr.EndTime.Sub(dr.StartTime)
	e.operation.CompletedAt = &dr.EndTime

	if e.formatter != nil {
		if err := e.formatter.Complete(dr); err != nil {
			return dr, err
		}
	}

	e.logger.Info(ctx, "Comparison completed", logging.Fields{
		"duration":       dr.Duration.String(),
		"status":         dr.Status,
		"same":           dr.Stats.Same,
		"different":      dr.Stats.Different,
		"left_only":      dr.Stats.LeftOnly,
		"right_only":     dr.Stats.RightOnly,
		"undetermined":   dr.Stats.Undetermined,
		"bytes_compared": dr.Stats.BytesCompared,
	})

	return dr, nil
}

// buildIndexes walks both roots concurrently; a traversal failure on either
// side is fatal
func (e *Engine) buildIndexes(ctx context.Context) (*index.PathIndex, *index.PathIndex, error) {
	filter, err := index.NewFilter(e.operation.Extensions, e.operation.ExcludePatterns)
	if err != nil {
		return nil, nil, err
	}

	var leftIdx, rightIdx *index.PathIndex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		idx, err := index.Build(gctx, e.left, filter)
		if err != nil {
			return err
		}
		leftIdx = idx
		return nil
	})
	g.Go(func() error {
		idx, err := index.Build(gctx, e.right, filter)
		if err != nil {
			return err
		}
		rightIdx = idx
		return nil
	})

	if err := g.Wait(); err != nil {
		e.logger.Error(ctx, "Indexing failed", err, nil)
		return nil, nil, err
	}

	e.logger.Debug(ctx, "Indexed roots", logging.Fields{
		"left":       leftIdx.Root(),
		"right":      rightIdx.Root(),
		"extensions": filter.Extensions(),
	})
	return leftIdx, rightIdx, nil
}
