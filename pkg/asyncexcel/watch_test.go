package asyncexcel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFiresOnChange(t *testing.T) {
	engine := newFakeEngine([]interface{}{"a", "b"})
	s, err := Open(context.Background(), tempBook(t), SheetByName("Sheet1"), testOptions(engine))
	require.NoError(t, err)
	defer s.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snapshots []Grid
	err = s.Watch(ctx, func(g Grid) error {
		snapshots = append(snapshots, g)
		switch len(snapshots) {
		case 1:
			engine.setCell(0, 1, "changed")
		case 2:
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, snapshots, 2)
	v, _ := snapshots[0].At(0, 1)
	assert.Equal(t, "b", v)
	v, _ = snapshots[1].At(0, 1)
	assert.Equal(t, "changed", v)
}

func TestWatchSkipsUnchangedSnapshots(t *testing.T) {
	engine := newFakeEngine([]interface{}{"static"})
	s, err := Open(context.Background(), tempBook(t), SheetByName("Sheet1"), testOptions(engine))
	require.NoError(t, err)
	defer s.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fires := 0
	err = s.Watch(ctx, func(Grid) error {
		fires++
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fires, "an unchanged sheet fires only the initial snapshot")
}

func TestWatchStopsOnCallbackError(t *testing.T) {
	engine := newFakeEngine([]interface{}{"a"})
	s, err := Open(context.Background(), tempBook(t), SheetByName("Sheet1"), testOptions(engine))
	require.NoError(t, err)
	defer s.Close(context.Background())

	stop := errors.New("stop")
	err = s.Watch(context.Background(), func(Grid) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestWatchSurfacesReadFailure(t *testing.T) {
	engine := newFakeEngine([]interface{}{"a"})
	s, err := Open(context.Background(), tempBook(t), SheetByName("Sheet1"), testOptions(engine))
	require.NoError(t, err)
	defer s.Close(context.Background())

	cause := errors.New("workbook vanished")
	engine.mu.Lock()
	engine.readErr = cause
	engine.mu.Unlock()

	err = s.Watch(context.Background(), func(Grid) error {
		t.Fatal("callback must not fire when the read fails")
		return nil
	})
	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.ErrorIs(t, err, cause)
}
