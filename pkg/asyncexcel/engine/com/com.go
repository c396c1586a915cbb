// Package com drives a running Excel application through OLE automation.
// It is only functional on Windows; on other platforms New returns
// ErrUnsupported.
package com

import "errors"

// ErrUnsupported reports that the COM automation engine is unavailable on
// this platform.
var ErrUnsupported = errors.New("COM automation engine requires windows")
