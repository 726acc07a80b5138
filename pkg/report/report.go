// Package report assembles reconciliation and comparison results into the
// ordered entry list rendered by the output formatters.
package report

import (
	"errors"
	"sort"

	"github.com/sdejongh/imdirdiff/pkg/compare"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/reconcile"
)

// Outcome is the comparator result for one common path: either a
// comparison or the error that prevented it
type Outcome struct {
	Comparison *compare.Comparison
	Err        error
}

// Sides supplies file metadata for entries. Either lookup may be nil.
type Sides struct {
	Left  func(rel string) (models.FileEntry, bool)
	Right func(rel string) (models.FileEntry, bool)
}

// Build turns a reconciliation and per-path outcomes into one stream of
// entries sorted by relative path. Common paths without an outcome are
// reported as undetermined.
func Build(rec reconcile.Result, outcomes map[string]Outcome) []models.DiffEntry {
	return BuildWithSides(rec, outcomes, Sides{})
}

// BuildWithSides is Build with file metadata attached to each entry
func BuildWithSides(rec reconcile.Result, outcomes map[string]Outcome, sides Sides) []models.DiffEntry {
	entries := make([]models.DiffEntry, 0, rec.Total())

	for _, rel := range rec.LeftOnly {
		entries = append(entries, models.DiffEntry{RelativePath: rel, Class: models.ClassLeftOnly})
	}
	for _, rel := range rec.RightOnly {
		entries = append(entries, models.DiffEntry{RelativePath: rel, Class: models.ClassRightOnly})
	}
	for _, rel := range rec.Common {
		entries = append(entries, commonEntry(rel, outcomes))
	}

	for i := range entries {
		attach(&entries[i], sides)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})

	return entries
}

func commonEntry(rel string, outcomes map[string]Outcome) models.DiffEntry {
	entry := models.DiffEntry{RelativePath: rel}

	out, ok := outcomes[rel]
	switch {
	case !ok:
		entry.Class = models.ClassUndetermined
		entry.Error = "comparison did not run"
	case out.Err != nil:
		entry.Class = models.ClassUndetermined
		entry.Error = out.Err.Error()
		var decErr *compare.DecodeError
		if errors.As(out.Err, &decErr) {
			entry.ErrorSide = string(decErr.Side)
		}
	case out.Comparison == nil:
		entry.Class = models.ClassUndetermined
		entry.Error = "comparison returned no result"
	default:
		outcome := out.Comparison.Outcome
		entry.Outcome = &outcome
		entry.Class = outcome.Classification()
		entry.ExifChanges = out.Comparison.ExifChanges
	}

	return entry
}

func attach(entry *models.DiffEntry, sides Sides) {
	if sides.Left != nil && entry.Class != models.ClassRightOnly {
		if fe, ok := sides.Left(entry.RelativePath); ok {
			entry.Left = &fe
		}
	}
	if sides.Right != nil && entry.Class != models.ClassLeftOnly {
		if fe, ok := sides.Right(entry.RelativePath); ok {
			entry.Right = &fe
		}
	}
}

// Summarize counts entries per classification
func Summarize(entries []models.DiffEntry) models.Statistics {
	var stats models.Statistics

	for _, e := range entries {
		switch e.Class {
		case models.ClassLeftOnly:
			stats.LeftOnly++
		case models.ClassRightOnly:
			stats.RightOnly++
		case models.ClassSame:
			stats.Same++
		case models.ClassDifferent:
			stats.Different++
			if e.Outcome != nil {
				switch e.Outcome.Kind {
				case models.OutcomeDimensionMismatch:
					stats.DimensionMismatches++
				case models.OutcomePixelMismatch:
					stats.PixelMismatches++
				}
			}
		case models.ClassUndetermined:
			stats.Undetermined++
		}

		if e.Class != models.ClassRightOnly {
			stats.LeftFiles++
		}
		if e.Class != models.ClassLeftOnly {
			stats.RightFiles++
		}
	}

	return stats
}

// StatusFor derives the run status. Undetermined entries take precedence
// over confirmed differences.
func StatusFor(stats models.Statistics) models.RunStatus {
	switch {
	case stats.Undetermined > 0:
		return models.StatusUndetermined
	case stats.Differences() > 0:
		return models.StatusDifferent
	default:
		return models.StatusIdentical
	}
}
