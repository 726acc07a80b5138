package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// WriteDifferencesReport writes the non-identical entries to a file
// Format can be "human" or "json"
func WriteDifferencesReport(report *models.DiffReport, filepath string, format string) error {
	anomalies := report.Anomalies()
	if len(anomalies) == 0 {
		// No differences - don't create empty file
		return nil
	}

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeDifferencesJSON(report, anomalies, file)
	default: // "human"
		return writeDifferencesHuman(report, anomalies, file)
	}
}

// writeDifferencesHuman writes differences grouped by classification
func writeDifferencesHuman(report *models.DiffReport, anomalies []models.DiffEntry, w io.Writer) error {
	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Left: %s\n", report.LeftPath)
	fmt.Fprintf(w, "Right: %s\n\n", report.RightPath)

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(anomalies))

	byClass := make(map[models.Classification][]models.DiffEntry)
	for _, e := range anomalies {
		byClass[e.Class] = append(byClass[e.Class], e)
	}

	classOrder := []models.Classification{
		models.ClassUndetermined,
		models.ClassLeftOnly,
		models.ClassRightOnly,
		models.ClassDifferent,
	}

	classLabels := map[models.Classification]string{
		models.ClassUndetermined: "Undetermined",
		models.ClassLeftOnly:     "Only in Left",
		models.ClassRightOnly:    "Only in Right",
		models.ClassDifferent:    "Different",
	}

	for _, class := range classOrder {
		entries := byClass[class]
		if len(entries) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d files)", classLabels[class], len(entries))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, e := range entries {
			fmt.Fprintf(w, "  %s\n", e.RelativePath)
			if e.Outcome != nil {
				fmt.Fprintf(w, "    Details: %s\n", e.Outcome.Describe())
			}
			if e.Error != "" {
				fmt.Fprintf(w, "    Error:   %s\n", e.Error)
			}
			if e.Left != nil {
				fmt.Fprintf(w, "    Left:    %s\n", humanize.Bytes(uint64(e.Left.Size)))
			}
			if e.Right != nil {
				fmt.Fprintf(w, "    Right:   %s\n", humanize.Bytes(uint64(e.Right.Size)))
			}
			if len(e.ExifChanges) > 0 {
				fmt.Fprintf(w, "    EXIF:    %s\n", strings.Join(e.ExifChanges, ", "))
			}
			fmt.Fprintf(w, "\n")
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(report *models.DiffReport, anomalies []models.DiffEntry, w io.Writer) error {
	output := struct {
		Generated   string             `json:"generated"`
		Left        string             `json:"left"`
		Right       string             `json:"right"`
		TotalCount  int                `json:"total_count"`
		Differences []models.DiffEntry `json:"differences"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		Left:        report.LeftPath,
		Right:       report.RightPath,
		TotalCount:  len(anomalies),
		Differences: anomalies,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
