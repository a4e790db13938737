package pipeline

import "time"

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Files        int // files after directory expansion
	Studies      int
	Series       int // series found
	Converted    int // series written (or planned, in dry-run)
	BytesWritten int64
	Started      time.Time
	Elapsed      time.Duration
}
