package asyncexcel

import (
	"reflect"

	"github.com/tiendc/go-deepcopy"
)

// Grid is a row-major snapshot of a sheet's used range. Cells that the engine
// reports as empty hold nil. A grid is produced fresh on every read and is
// never mutated by the session afterwards.
type Grid [][]interface{}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the width of the widest row.
func (g Grid) Cols() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// At returns the value at the 0-based (row, col) address and whether the
// address falls inside the grid.
func (g Grid) At(row, col int) (interface{}, bool) {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return nil, false
	}
	return g[row][col], true
}

// Equal reports whether two grids hold the same values.
func (g Grid) Equal(other Grid) bool {
	if len(g) == 0 && len(other) == 0 {
		return true
	}
	return reflect.DeepEqual(g, other)
}

// Clone returns an independent copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	var out Grid
	if err := deepcopy.Copy(&out, g); err != nil {
		out = make(Grid, len(g))
		for i, row := range g {
			out[i] = append([]interface{}(nil), row...)
		}
	}
	return out
}
