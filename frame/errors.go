package frame

import "errors"

var (
	// ErrMissingColumn indicates that a table lacks a column an operation needs.
	ErrMissingColumn = errors.New("frame: missing column")
	// ErrEmptyResult indicates that a reshape or join produced no rows.
	ErrEmptyResult = errors.New("frame: empty result")
)
