package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		class   Classification
		symbol  string
		anomaly bool
	}{
		{ClassLeftOnly, "[-]", true},
		{ClassRightOnly, "[+]", true},
		{ClassDifferent, "[≠]", true},
		{ClassUndetermined, "[!]", true},
		{ClassSame, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			assert.Equal(t, tt.symbol, tt.class.Symbol())
			assert.Equal(t, tt.anomaly, tt.class.IsAnomaly())
		})
	}
}

func TestOutcome(t *testing.T) {
	dims := func(w, h int) Dimensions { return Dimensions{Width: w, Height: h} }

	t.Run("Identical", func(t *testing.T) {
		o := &Outcome{Kind: OutcomeIdentical, Left: dims(2, 2), Right: dims(2, 2)}
		assert.Equal(t, ClassSame, o.Classification())
		assert.Equal(t, "images are identical", o.Describe())
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		o := &Outcome{Kind: OutcomeDimensionMismatch, Left: dims(4, 3), Right: dims(3, 4)}
		assert.Equal(t, ClassDifferent, o.Classification())
		assert.Equal(t, "dimensions differ: 4x3 vs 3x4", o.Describe())
	})

	t.Run("PixelMismatch", func(t *testing.T) {
		o := &Outcome{Kind: OutcomePixelMismatch, Left: dims(2, 2), Right: dims(2, 2)}
		assert.Equal(t, ClassDifferent, o.Classification())
		assert.Equal(t, "pixel data differs", o.Describe())

		o.ChangedPixels = 3
		assert.Equal(t, "3 pixels differ", o.Describe())
	})
}

func TestRunStatusExitCode(t *testing.T) {
	tests := []struct {
		status RunStatus
		code   int
	}{
		{StatusIdentical, 0},
		{StatusDifferent, 1},
		{StatusUndetermined, 2},
		{StatusFailed, 3},
		{RunStatus("bogus"), 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.status.ExitCode())
		})
	}
}

func TestDiffReportAnomalies(t *testing.T) {
	r := &DiffReport{Entries: []DiffEntry{
		{RelativePath: "a.png", Class: ClassSame},
		{RelativePath: "b.png", Class: ClassLeftOnly},
		{RelativePath: "c.png", Class: ClassSame},
		{RelativePath: "d.png", Class: ClassUndetermined},
	}}

	anomalies := r.Anomalies()
	assert.Len(t, anomalies, 2)
	assert.Equal(t, "b.png", anomalies[0].RelativePath)
	assert.Equal(t, "d.png", anomalies[1].RelativePath)

	assert.Empty(t, (&DiffReport{}).Anomalies())
}

func TestStatisticsDifferences(t *testing.T) {
	s := Statistics{LeftOnly: 1, RightOnly: 2, Different: 3, Same: 10, Undetermined: 4}
	assert.Equal(t, 6, s.Differences())
}

func TestDiffOperationValidate(t *testing.T) {
	valid := func() *DiffOperation {
		return &DiffOperation{
			LeftPath:    "/left",
			RightPath:   "/right",
			Extensions:  DefaultImageExtensions,
			MaxWorkers:  2,
			ReportDir:   "out",
			ThumbHeight: 80,
			CreatedAt:   time.Now(),
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*DiffOperation)
		field  string
	}{
		{"MissingLeft", func(op *DiffOperation) { op.LeftPath = "" }, "LeftPath"},
		{"MissingRight", func(op *DiffOperation) { op.RightPath = "" }, "RightPath"},
		{"NoWorkers", func(op *DiffOperation) { op.MaxWorkers = 0 }, "MaxWorkers"},
		{"NoExtensions", func(op *DiffOperation) { op.Extensions = nil }, "Extensions"},
		{"NoThumbHeight", func(op *DiffOperation) { op.ThumbHeight = 0 }, "ThumbHeight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid()
			tt.mutate(op)
			err := op.Validate()

			var verr *ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}

	t.Run("ThumbHeightIgnoredWithoutReport", func(t *testing.T) {
		op := valid()
		op.ReportDir = ""
		op.ThumbHeight = 0
		assert.NoError(t, op.Validate())
	})
}
