// Package asyncexcel provides a non-blocking session wrapper around a
// spreadsheet automation engine, supporting reads, cell writes, saving, and
// periodic change polling without stalling sibling goroutines on slow
// automation calls.
package asyncexcel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Workbook formats the automation backends can open.
var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// registry enforces at most one active session per absolute path. The
// engine keeps single-writer state per document, so a second in-process
// handle would corrupt the first one's view.
var registry = struct {
	sync.Mutex
	open map[string]*Session
}{open: make(map[string]*Session)}

// Session owns one open workbook and a selected sheet, mediating all access
// to the engine handle. A session is safe for use from multiple goroutines;
// engine calls are serialized internally because the underlying automation
// object is not reentrant.
type Session struct {
	path  string
	sheet SheetRef
	opts  Options

	// sem serializes engine calls. Capacity 1, acquired with the caller's
	// context so waiting callers stay cancellable.
	sem chan struct{}

	// Guarded by sem.
	doc    Document
	sh     Sheet
	dirty  bool
	closed bool
}

// Open opens the workbook at path via opts.Engine, selects the referenced
// sheet, and returns a ready session. The file must exist unless
// opts.CreateIfMissing is set. Opening a path that another session in this
// process already holds fails with ErrAlreadyOpen.
func Open(ctx context.Context, path string, sheet SheetRef, opts Options) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(path)); !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidConfig, ext)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !opts.CreateIfMissing {
		if _, err := os.Stat(abs); err != nil {
			return nil, NewEngineError("open", abs, err)
		}
	}

	s := &Session{path: abs, sheet: sheet, opts: opts, sem: make(chan struct{}, 1)}
	registry.Lock()
	if _, held := registry.open[abs]; held {
		registry.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOpen, abs)
	}
	registry.open[abs] = s
	registry.Unlock()

	type openResult struct {
		doc Document
		sh  Sheet
		err error
	}
	ch := make(chan openResult, 1)
	go func() {
		doc, err := opts.Engine.Open(abs, opts.CreateIfMissing)
		if err != nil {
			ch <- openResult{err: NewEngineError("open", abs, err)}
			return
		}
		sh, err := doc.SelectSheet(sheet)
		if err != nil {
			doc.Close()
			ch <- openResult{err: err}
			return
		}
		ch <- openResult{doc: doc, sh: sh}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			s.deregister()
			return nil, res.err
		}
		s.doc, s.sh = res.doc, res.sh
		return s, nil
	case <-ctx.Done():
		// The engine call cannot be aborted; release the handle once it lands.
		go func() {
			if res := <-ch; res.doc != nil {
				res.doc.Close()
			}
		}()
		s.deregister()
		return nil, ctx.Err()
	}
}

// With opens a session, runs fn, and always closes the session afterwards,
// even when fn fails or ctx is cancelled inside fn. An error from fn takes
// precedence over a close error.
func With(ctx context.Context, path string, sheet SheetRef, opts Options, fn func(*Session) error) error {
	s, err := Open(ctx, path, sheet, opts)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	closeErr := s.Close(context.WithoutCancel(ctx))
	if fnErr != nil {
		return fnErr
	}
	return closeErr
}

// ReadData returns a snapshot of the sheet's used range. An empty sheet
// yields an empty, non-nil grid. The engine state is not mutated.
func (s *Session) ReadData(ctx context.Context) (Grid, error) {
	var grid Grid
	err := s.call(ctx, func() error {
		g, err := s.sh.UsedRange()
		if err != nil {
			return NewEngineError("read", s.path, err)
		}
		grid = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	if grid == nil {
		grid = Grid{}
	}
	return grid, nil
}

// WriteCell writes value at the 0-based (row, col) address. The address is
// validated against the sheet's current used range; writes outside it fail
// with ErrOutOfBounds and leave the sheet untouched. A successful write marks
// the session dirty.
func (s *Session) WriteCell(ctx context.Context, row, col int, value interface{}) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, row, col)
	}
	return s.call(ctx, func() error {
		grid, err := s.sh.UsedRange()
		if err != nil {
			return NewEngineError("read", s.path, err)
		}
		if row >= grid.Rows() || col >= grid.Cols() {
			return fmt.Errorf("%w: (%d, %d) outside %dx%d used range",
				ErrOutOfBounds, row, col, grid.Rows(), grid.Cols())
		}
		if err := s.sh.SetCell(row, col, value); err != nil {
			return NewEngineError("write", s.path, err)
		}
		s.dirty = true
		return nil
	})
}

// Save persists pending changes and clears the dirty flag. A persistence
// failure surfaces as a *SaveError and the session stays dirty.
func (s *Session) Save(ctx context.Context) error {
	return s.call(ctx, func() error {
		if err := s.doc.Save(); err != nil {
			return NewSaveError(s.path, err)
		}
		s.dirty = false
		return nil
	})
}

// Close releases the engine handle. With AutoSave configured and unsaved
// writes pending it saves first; a failed auto-save propagates its *SaveError
// and leaves the session open so the caller decides whether to retry or
// abandon. Closing an already-closed session is a no-op.
func (s *Session) Close(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.closed {
		<-s.sem
		return nil
	}
	done := make(chan error, 1)
	go func() {
		if s.opts.AutoSave && s.dirty {
			if err := s.doc.Save(); err != nil {
				done <- NewSaveError(s.path, err)
				return
			}
			s.dirty = false
		}
		err := s.doc.Close()
		s.closed = true
		s.deregister()
		if err != nil {
			done <- NewEngineError("close", s.path, err)
			return
		}
		done <- nil
	}()
	select {
	case err := <-done:
		<-s.sem
		return err
	case <-ctx.Done():
		go func() { <-done; <-s.sem }()
		return ctx.Err()
	}
}

// Dirty reports whether the session has unsaved writes pending.
func (s *Session) Dirty() bool {
	s.sem <- struct{}{}
	dirty := s.dirty
	<-s.sem
	return dirty
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.sem <- struct{}{}
	closed := s.closed
	<-s.sem
	return closed
}

// Path returns the absolute path of the workbook the session holds.
func (s *Session) Path() string {
	return s.path
}

// call runs fn with exclusive access to the engine handle. If ctx is
// cancelled while fn is in flight the call is left to finish (automation
// calls cannot be safely aborted mid-flight) and the handle is released once
// it completes, so the session stays consistent for the next caller.
func (s *Session) call(ctx context.Context, fn func() error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.closed {
		<-s.sem
		return ErrClosed
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		<-s.sem
		return err
	case <-ctx.Done():
		go func() { <-done; <-s.sem }()
		return ctx.Err()
	}
}

func (s *Session) deregister() {
	registry.Lock()
	delete(registry.open, s.path)
	registry.Unlock()
}
