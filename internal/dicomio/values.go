package dicomio

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// rawValue returns the decoded value of tag t, or nil when the element is
// absent. DS and IS attributes come back from the parser as []string.
func rawValue(ds *dicom.Dataset, t tag.Tag) interface{} {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil || el.Value == nil {
		return nil
	}
	return el.Value.GetValue()
}

func stringValue(ds *dicom.Dataset, t tag.Tag) string {
	return toString(rawValue(ds, t))
}

func floatValues(ds *dicom.Dataset, t tag.Tag) []float64 {
	return toFloats(rawValue(ds, t))
}

func intValue(ds *dicom.Dataset, t tag.Tag) (int, bool) {
	return toInt(rawValue(ds, t))
}

// toString joins multi-valued strings with the DICOM separator.
func toString(v interface{}) string {
	switch x := v.(type) {
	case []string:
		return strings.TrimSpace(strings.Join(x, `\`))
	case []int:
		if len(x) > 0 {
			return strconv.Itoa(x[0])
		}
	case []float64:
		if len(x) > 0 {
			return strconv.FormatFloat(x[0], 'g', -1, 64)
		}
	}
	return ""
}

func toFloats(v interface{}) []float64 {
	switch x := v.(type) {
	case []float64:
		return append([]float64(nil), x...)
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out
	case []string:
		out := make([]float64, 0, len(x))
		for _, s := range x {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case []int:
		if len(x) > 0 {
			return x[0], true
		}
	case []string:
		if len(x) > 0 {
			s := strings.TrimSpace(x[0])
			if n, err := strconv.Atoi(s); err == nil {
				return n, true
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return int(f), true
			}
		}
	case []float64:
		if len(x) > 0 {
			return int(x[0]), true
		}
	}
	return 0, false
}
