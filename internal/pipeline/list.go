package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/dicomtonifti/internal/dicomio"
	"github.com/backmassage/dicomtonifti/internal/display"
	"github.com/backmassage/dicomtonifti/internal/naming"
	"github.com/backmassage/dicomtonifti/internal/term"
)

// maxCellWidth caps free-text columns so long descriptions do not wrap.
const maxCellWidth = 32

// seriesRow holds the per-series data for the listing table.
type seriesRow struct {
	Study        int
	Series       int
	Patient      string
	StudyDesc    string
	SeriesDesc   string
	SeriesNumber string
	Files        int
}

// List prints one row per series (patient, study, series and file count)
// to Stdout instead of converting. Metadata is read from the first file of
// each series, as batch mode does for naming.
func (r *Runner) List(g *dicomio.Grouping) error {
	var rows []seriesRow
	for j := 0; j < g.NumberOfStudies(); j++ {
		first := g.FirstSeriesInStudy(j)
		for k := first; k < first+g.NumberOfSeriesInStudy(j); k++ {
			files := g.FileNamesForSeries(k)
			meta, err := r.Metadata.ReadMetadata(files[0])
			if err != nil {
				return err
			}
			rows = append(rows, seriesRow{
				Study:        j + 1,
				Series:       k + 1,
				Patient:      patientLabel(meta),
				StudyDesc:    meta.StudyDescription,
				SeriesDesc:   meta.SeriesDescription,
				SeriesNumber: meta.SeriesNumber,
				Files:        len(files),
			})
		}
	}
	r.printSeriesTable(rows)
	r.Log.Info("Listed %d series in %d studies", len(rows), g.NumberOfStudies())
	return nil
}

// patientLabel prefers the name, as output naming does, but shows it raw.
func patientLabel(m naming.SeriesMetadata) string {
	if naming.SafeString(m.PatientName) != naming.Unknown {
		return m.PatientName
	}
	return m.PatientID
}

func (r *Runner) printSeriesTable(rows []seriesRow) {
	headers := []string{"Study", "Series", "Patient", "Study Description", "Series Description", "No.", "Files"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for i, row := range rows {
		cells[i] = []string{
			strconv.Itoa(row.Study),
			strconv.Itoa(row.Series),
			display.Truncate(row.Patient, maxCellWidth),
			display.Truncate(row.StudyDesc, maxCellWidth),
			display.Truncate(row.SeriesDesc, maxCellWidth),
			row.SeriesNumber,
			strconv.Itoa(row.Files),
		}
		for c, v := range cells[i] {
			if n := len([]rune(v)); n > widths[c] {
				widths[c] = n
			}
		}
	}

	var hdr strings.Builder
	for c, h := range headers {
		hdr.WriteString("  ")
		hdr.WriteString(display.ColorPad(h, widths[c], term.Bold))
	}
	fmt.Fprintln(r.Stdout, strings.TrimRight(hdr.String(), " "))

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	fmt.Fprintln(r.Stdout, "  "+strings.Repeat("─", total-2))

	for i, row := range cells {
		var line strings.Builder
		for c, v := range row {
			line.WriteString("  ")
			color := ""
			if c == 0 && (i == 0 || rows[i].Study != rows[i-1].Study) {
				color = term.Cyan
			}
			line.WriteString(display.ColorPad(v, widths[c], color))
		}
		fmt.Fprintln(r.Stdout, strings.TrimRight(line.String(), " "))
	}
}
