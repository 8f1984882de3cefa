// internal/model/errors.go
package model

import "errors"

// Business outcomes. These are deterministic and never retried.
// Match with errors.Is:
//
//	if errors.Is(err, model.ErrNotFound) { ... }
var (
	// ErrNotFound: the referenced slot or preset is absent from the index.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest: malformed input, full index, invalid channel.
	ErrBadRequest = errors.New("bad request")

	// ErrProtectedObject: delete or overwrite of a fixed preset.
	ErrProtectedObject = errors.New("protected object")
)
