//go:build !windows

package com

import (
	"fmt"
	"runtime"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

// Engine is a placeholder on non-Windows platforms.
type Engine struct{}

// New always fails outside Windows.
func New(visible bool) (*Engine, error) {
	return nil, fmt.Errorf("%w (running on %s)", ErrUnsupported, runtime.GOOS)
}

// Open always fails outside Windows.
func (e *Engine) Open(path string, create bool) (asyncexcel.Document, error) {
	return nil, ErrUnsupported
}
