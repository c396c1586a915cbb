package asyncexcel

import (
	"fmt"
	"time"
)

// Options configures a session.
type Options struct {
	// Engine is the spreadsheet backend the session talks to. Required.
	Engine Engine
	// PollInterval is the cadence for Watch. Must be positive.
	PollInterval time.Duration
	// AutoSave saves pending writes when the session is closed.
	AutoSave bool
	// Visible is forwarded to engines that drive a UI application.
	Visible bool
	// CreateIfMissing creates the workbook file instead of failing when it
	// does not exist.
	CreateIfMissing bool
}

// DefaultOptions returns session options with a one-second poll interval and
// auto-save enabled.
func DefaultOptions(engine Engine) Options {
	return Options{
		Engine:       engine,
		PollInterval: time.Second,
		AutoSave:     true,
		Visible:      true,
	}
}

func (o Options) validate() error {
	if o.Engine == nil {
		return fmt.Errorf("%w: engine is required", ErrInvalidConfig)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidConfig, o.PollInterval)
	}
	return nil
}
