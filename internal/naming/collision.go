package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CollisionResolver tracks output paths claimed by series and resolves
// duplicates by inserting "-dupN" before the NIFTI extension. Two series
// with identical naming metadata would otherwise write the same file and
// the second would silently replace the first. The zero value is ready
// to use. A resolver belongs to one run and is not safe for concurrent use.
type CollisionResolver struct {
	owners   map[string]string // output path → series key that owns it
	counters map[string]int    // requested output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for the series identified by key.
// If requested is unclaimed (or already owned by key), it is returned
// as-is. Otherwise a "-dupN" variant is generated:
//
//	T1_3.nii.gz → T1_3-dup1.nii.gz → T1_3-dup2.nii.gz
func (cr *CollisionResolver) Resolve(key, requested string) string {
	if cr.owners == nil {
		cr.owners = make(map[string]string)
		cr.counters = make(map[string]int)
	}

	owner, exists := cr.owners[requested]
	if !exists || owner == key {
		cr.owners[requested] = key
		return requested
	}

	dir := filepath.Dir(requested)
	stem, ext := splitNiftiExt(filepath.Base(requested))

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == key {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = key
			return candidate
		}
		counter++
	}
}

// splitNiftiExt separates "name.nii.gz" into ("name", ".nii.gz"), keeping
// the compression suffix attached to the image extension.
func splitNiftiExt(base string) (stem, ext string) {
	lower := strings.ToLower(base)
	for _, e := range []string{".nii.gz", ".nii"} {
		if strings.HasSuffix(lower, e) {
			return base[:len(base)-len(e)], base[len(base)-len(e):]
		}
	}
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
