// Package xlsx implements the asyncexcel engine on top of excelize. It
// operates on the workbook file directly, works on any platform, and does not
// require a spreadsheet application to be installed.
package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

// Engine opens workbooks with excelize.
type Engine struct{}

// New returns a ready engine.
func New() *Engine {
	return &Engine{}
}

// Open opens the workbook at path, creating a fresh one when create is set
// and the file does not exist.
func (e *Engine) Open(path string, create bool) (asyncexcel.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if create && errors.Is(err, fs.ErrNotExist) {
			nf := excelize.NewFile()
			if err := nf.SaveAs(path); err != nil {
				nf.Close()
				return nil, err
			}
			return &document{f: nf}, nil
		}
		return nil, err
	}
	return &document{f: f}, nil
}

type document struct {
	f *excelize.File
}

func (d *document) SelectSheet(ref asyncexcel.SheetRef) (asyncexcel.Sheet, error) {
	name := ref.Name
	if name == "" {
		list := d.f.GetSheetList()
		if ref.Index < 0 || ref.Index >= len(list) {
			return nil, fmt.Errorf("%w: index %d", asyncexcel.ErrSheetNotFound, ref.Index)
		}
		name = list[ref.Index]
	} else {
		idx, err := d.f.GetSheetIndex(name)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", asyncexcel.ErrSheetNotFound, name)
		}
	}
	return &sheet{f: d.f, name: name}, nil
}

func (d *document) Save() error {
	return d.f.Save()
}

func (d *document) Close() error {
	return d.f.Close()
}

type sheet struct {
	f    *excelize.File
	name string
}

// UsedRange reads the sheet contents row by row. Rows are padded to a common
// width so the grid is rectangular; empty cells hold nil.
func (s *sheet) UsedRange() (asyncexcel.Grid, error) {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := make(asyncexcel.Grid, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, width)
		for j := 0; j < len(row) && j < width; j++ {
			if row[j] != "" {
				cells[j] = parseValue(row[j])
			}
		}
		grid[i] = cells
	}
	return grid, nil
}

func (s *sheet) SetCell(row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.name, cell, value)
}

// parseValue attempts to parse a cell's string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
