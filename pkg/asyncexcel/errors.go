package asyncexcel

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates invalid open parameters (bad poll interval,
// missing engine, unsupported file type).
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrSheetNotFound indicates the requested sheet does not exist in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrOutOfBounds indicates a cell address outside the sheet's current used range.
var ErrOutOfBounds = errors.New("cell address out of bounds")

// ErrClosed indicates an operation on a session that is not open.
var ErrClosed = errors.New("session is closed")

// ErrAlreadyOpen indicates the workbook is already held by another session in
// this process.
var ErrAlreadyOpen = errors.New("workbook is already open in this process")

// EngineError represents an opaque failure surfaced from the spreadsheet
// engine, such as a locked file or an unreachable automation host.
type EngineError struct {
	Op   string // "open", "select", "read", "write", "close"
	Path string
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed for %q: %v", e.Op, e.Path, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError.
func NewEngineError(op, path string, err error) *EngineError {
	return &EngineError{Op: op, Path: path, Err: err}
}

// SaveError represents a failure to persist pending changes.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %q: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// NewSaveError creates a new SaveError.
func NewSaveError(path string, err error) *SaveError {
	return &SaveError{Path: path, Err: err}
}
