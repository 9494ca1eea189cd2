// Package ingest normalizes tabular match-history records into
// MatchObservation sequences for calibration.
package ingest

// RowSource is a finite, restartable tabular source. Headers and Rows return
// stable snapshots, so a source can be re-read any number of times and the
// raw data is never mutated.
type RowSource interface {
	// Name identifies the source for logs and errors.
	Name() string
	// Headers returns the column headers, possibly empty for headerless
	// sources.
	Headers() []string
	// Rows returns the data rows in source order.
	Rows() [][]string
}

// SliceSource is an in-memory RowSource.
type SliceSource struct {
	name    string
	headers []string
	rows    [][]string
}

// NewSliceSource creates a RowSource over already-loaded rows.
func NewSliceSource(name string, headers []string, rows [][]string) *SliceSource {
	return &SliceSource{name: name, headers: headers, rows: rows}
}

// Name identifies the source.
func (s *SliceSource) Name() string { return s.name }

// Headers returns the column headers.
func (s *SliceSource) Headers() []string { return s.headers }

// Rows returns the data rows in input order.
func (s *SliceSource) Rows() [][]string { return s.rows }
