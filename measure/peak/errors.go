package peak

import "errors"

// Errors returned by the detection stages.
var (
	ErrInvalidInput = errors.New("peak: invalid input")
	ErrNoPeakFound  = errors.New("peak: no peak found in search region")
)
