package sentinel

import "errors"

// Sentinel dependency errors. Stores and clients return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrCorrupt      = errors.New("corrupt record")
	ErrUnavailable  = errors.New("unavailable")
	ErrConflict     = errors.New("conflict")
)
