package asyncexcel

import (
	"context"
	"time"
)

// Watch polls the sheet at the session's poll interval and invokes fn with
// every snapshot that differs from the previous one; the first successful
// read always fires. The loop runs on the calling goroutine, so the caller
// owns its lifetime: Watch returns ctx.Err() on cancellation, the read error
// when a poll fails, or the first non-nil error returned by fn. Callers that
// consider an engine failure transient simply call Watch again.
func (s *Session) Watch(ctx context.Context, fn func(Grid) error) error {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var prev Grid
	first := true
	for {
		grid, err := s.ReadData(ctx)
		if err != nil {
			return err
		}
		if first || !grid.Equal(prev) {
			if err := fn(grid); err != nil {
				return err
			}
			prev = grid.Clone()
			first = false
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
