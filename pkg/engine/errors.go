package engine

import "github.com/rotisserie/eris"

// Configuration errors. Per-row anomalies never surface as errors; they are
// recorded in Stats and FieldConflict lists instead.
var (
	// ErrNoKeyFields: the identity key field list is empty.
	ErrNoKeyFields = eris.New("no identity key fields configured")
	// ErrUnknownKeyField: a configured key field is not a column of the input.
	ErrUnknownKeyField = eris.New("unknown identity key field")
	// ErrUnknownField: a configured club field is not a column of the input.
	ErrUnknownField = eris.New("unknown field")
)
