package dicomio

import (
	"context"
	"os"

	"github.com/mkmik/argsort"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/backmassage/dicomtonifti/internal/ioerr"
)

// Grouping is the study/series partition of a file list. Series are
// numbered consecutively across studies; study j owns series
// FirstSeriesInStudy(j) .. FirstSeriesInStudy(j)+NumberOfSeriesInStudy(j)-1.
type Grouping struct {
	studyFirst []int
	studyCount []int
	series     [][]string
}

// NewGrouping builds a Grouping from files nested by study, then series.
func NewGrouping(studies [][][]string) *Grouping {
	g := &Grouping{}
	for _, st := range studies {
		g.studyFirst = append(g.studyFirst, len(g.series))
		g.studyCount = append(g.studyCount, len(st))
		for _, files := range st {
			g.series = append(g.series, append([]string(nil), files...))
		}
	}
	return g
}

// NumberOfStudies returns the number of distinct studies.
func (g *Grouping) NumberOfStudies() int { return len(g.studyFirst) }

// FirstSeriesInStudy returns the ordinal of the first series of study j.
func (g *Grouping) FirstSeriesInStudy(j int) int { return g.studyFirst[j] }

// NumberOfSeriesInStudy returns how many series study j holds.
func (g *Grouping) NumberOfSeriesInStudy(j int) int { return g.studyCount[j] }

// NumberOfSeries returns the total series count.
func (g *Grouping) NumberOfSeries() int { return len(g.series) }

// FileNamesForSeries returns the ordered files of series k.
func (g *Grouping) FileNamesForSeries(k int) []string { return g.series[k] }

// OutputFileNames returns every file in grouped order.
func (g *Grouping) OutputFileNames() []string {
	var out []string
	for _, s := range g.series {
		out = append(out, s...)
	}
	return out
}

// Sorter groups DICOM files by StudyInstanceUID and SeriesInstanceUID.
type Sorter struct{}

// Sort reads the header of every file (pixel data skipped) and returns the
// grouping. Studies keep their order of first appearance; series are
// ordered by SeriesNumber and files by InstanceNumber, ties falling back to
// input order. Any unreadable file fails the whole sort.
func (s *Sorter) Sort(ctx context.Context, files []string) (*Grouping, error) {
	headers := make([]header, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := readHeader(path)
		if err != nil {
			return nil, err
		}
		h.order = i
		headers = append(headers, h)
	}
	return groupHeaders(headers), nil
}

// header holds the sort keys of one file.
type header struct {
	path           string
	order          int
	studyUID       string
	seriesUID      string
	seriesNumber   int
	instanceNumber int
}

func readHeader(path string) (header, error) {
	if _, err := os.Stat(path); err != nil {
		return header{}, ioerr.Classify(path, err)
	}
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return header{}, ioerr.Classify(path, err)
	}
	h := header{
		path:      path,
		studyUID:  stringValue(&ds, tag.StudyInstanceUID),
		seriesUID: stringValue(&ds, tag.SeriesInstanceUID),
	}
	h.seriesNumber, _ = intValue(&ds, tag.SeriesNumber)
	h.instanceNumber, _ = intValue(&ds, tag.InstanceNumber)
	return h, nil
}

type seriesBucket struct {
	number int
	first  int
	files  []header
}

type studyBucket struct {
	index  map[string]int
	series []*seriesBucket
}

func groupHeaders(headers []header) *Grouping {
	studyIndex := make(map[string]int)
	var studies []*studyBucket

	for _, h := range headers {
		si, ok := studyIndex[h.studyUID]
		if !ok {
			si = len(studies)
			studyIndex[h.studyUID] = si
			studies = append(studies, &studyBucket{index: make(map[string]int)})
		}
		st := studies[si]
		ki, ok := st.index[h.seriesUID]
		if !ok {
			ki = len(st.series)
			st.index[h.seriesUID] = ki
			st.series = append(st.series, &seriesBucket{number: h.seriesNumber, first: h.order})
		}
		st.series[ki].files = append(st.series[ki].files, h)
	}

	nested := make([][][]string, len(studies))
	for si, st := range studies {
		order := argsort.SortSlice(st.series, func(a, b int) bool {
			x, y := st.series[a], st.series[b]
			if x.number != y.number {
				return x.number < y.number
			}
			return x.first < y.first
		})
		for _, ki := range order {
			nested[si] = append(nested[si], sortedPaths(st.series[ki].files))
		}
	}
	return NewGrouping(nested)
}

func sortedPaths(files []header) []string {
	order := argsort.SortSlice(files, func(a, b int) bool {
		if files[a].instanceNumber != files[b].instanceNumber {
			return files[a].instanceNumber < files[b].instanceNumber
		}
		return files[a].order < files[b].order
	})
	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = files[idx].path
	}
	return out
}
