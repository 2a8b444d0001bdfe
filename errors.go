package rentroll

import "errors"

var (
	// ErrMalformedInput marks input whose shape prevents processing.
	ErrMalformedInput = errors.New("malformed input")
	// ErrMixedAsOf is returned when states resolved on different dates are combined.
	ErrMixedAsOf = errors.New("resolved states have different as-of dates")
)

// Rejection is an input record that was dropped because it is structurally invalid.
// Rejections are counted and reported; they never stop a run.
type Rejection struct {
	Source string `json:"source"` // file or table name
	Line   int    `json:"line"`   // 1-based line or row number
	Reason string `json:"reason"`
}
