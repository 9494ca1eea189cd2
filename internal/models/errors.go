package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	// ErrEmptyDataset signals a source with zero usable observations.
	ErrEmptyDataset = errors.New("dataset contains no usable observations")
	// ErrInvalidInput signals a simulation called with out-of-domain values.
	ErrInvalidInput = errors.New("invalid simulation input")
	// ErrNotFound signals a missing record or session.
	ErrNotFound = errors.New("record not found")
	// ErrSessionExpired signals a lookup of an evicted analysis session.
	ErrSessionExpired = errors.New("analysis session expired")
)

// DegenerateFitError reports a calibration whose entire grid tied at a single
// error value, pinning the tie-broken pick to the lower grid corner. The
// boundary-pinned model is still attached so callers can inspect it.
type DegenerateFitError struct {
	Model *FittedModel
}

func (e *DegenerateFitError) Error() string {
	if e.Model == nil {
		return "degenerate fit: all grid candidates tied"
	}
	return fmt.Sprintf("degenerate fit: all grid candidates tied at error %g (pinned to K=%g scale=%g); widen the search bounds",
		e.Model.Error, e.Model.K, e.Model.Scale)
}

// IsDegenerateFit reports whether err is (or wraps) a DegenerateFitError.
func IsDegenerateFit(err error) bool {
	var dfe *DegenerateFitError
	return errors.As(err, &dfe)
}
