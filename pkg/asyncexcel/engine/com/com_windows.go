//go:build windows

package com

import (
	"fmt"
	"os"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

// Engine talks to Excel.Application through OLE automation. Each Open starts
// (or attaches to) an Excel process and owns one workbook inside it.
type Engine struct {
	visible bool
}

// New returns an engine that opens workbooks in a live Excel instance.
// visible controls whether the Excel window is shown.
func New(visible bool) (*Engine, error) {
	return &Engine{visible: visible}, nil
}

// Open dispatches Excel.Application and opens the workbook at path. The
// session serializes calls but does not pin them to one OS thread, so the
// COM runtime is initialized for the multithreaded apartment.
func (e *Engine) Open(path string, create bool) (asyncexcel.Document, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// S_FALSE (1) reports an already-initialized apartment, not a failure.
		if code := err.(*ole.OleError).Code(); code != 0 && code != 1 {
			return nil, err
		}
	}
	unknown, err := oleutil.CreateObject("Excel.Application")
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("excel application not reachable: %w", err)
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		return nil, err
	}
	if _, err := oleutil.PutProperty(app, "Visible", e.visible); err != nil {
		quit(app)
		return nil, err
	}
	booksVar, err := oleutil.GetProperty(app, "Workbooks")
	if err != nil {
		quit(app)
		return nil, err
	}
	books := booksVar.ToIDispatch()

	var wbVar *ole.VARIANT
	if _, statErr := os.Stat(path); statErr != nil && create {
		wbVar, err = oleutil.CallMethod(books, "Add")
		if err == nil {
			_, err = oleutil.CallMethod(wbVar.ToIDispatch(), "SaveAs", path)
		}
	} else {
		wbVar, err = oleutil.CallMethod(books, "Open", path)
	}
	if err != nil {
		books.Release()
		quit(app)
		return nil, err
	}

	return &document{app: app, books: books, wb: wbVar.ToIDispatch()}, nil
}

func quit(app *ole.IDispatch) {
	oleutil.CallMethod(app, "Quit")
	app.Release()
	ole.CoUninitialize()
}

type document struct {
	app   *ole.IDispatch
	books *ole.IDispatch
	wb    *ole.IDispatch
}

func (d *document) SelectSheet(ref asyncexcel.SheetRef) (asyncexcel.Sheet, error) {
	var selector interface{}
	if ref.Name != "" {
		selector = ref.Name
	} else {
		selector = ref.Index + 1 // COM sheet collections are 1-based
	}
	wsVar, err := oleutil.GetProperty(d.wb, "Sheets", selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", asyncexcel.ErrSheetNotFound, ref)
	}
	return &sheet{ws: wsVar.ToIDispatch()}, nil
}

func (d *document) Save() error {
	_, err := oleutil.CallMethod(d.wb, "Save")
	return err
}

func (d *document) Close() error {
	_, err := oleutil.CallMethod(d.wb, "Close", false)
	d.wb.Release()
	d.books.Release()
	quit(d.app)
	return err
}

type sheet struct {
	ws *ole.IDispatch
}

// UsedRange walks the used range cell by cell. Reading the whole Value
// property in one call would be faster, but the SAFEARRAY layout varies with
// range shape; per-cell access keeps the conversion uniform.
func (s *sheet) UsedRange() (asyncexcel.Grid, error) {
	urVar, err := oleutil.GetProperty(s.ws, "UsedRange")
	if err != nil {
		return nil, err
	}
	ur := urVar.ToIDispatch()
	defer ur.Release()

	rows, err := collectionCount(ur, "Rows")
	if err != nil {
		return nil, err
	}
	cols, err := collectionCount(ur, "Columns")
	if err != nil {
		return nil, err
	}
	// A fresh sheet reports a 1x1 used range with an empty cell.
	if rows == 1 && cols == 1 {
		v, err := cellValue(ur, 1, 1)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return asyncexcel.Grid{}, nil
		}
	}

	grid := make(asyncexcel.Grid, rows)
	for i := 0; i < rows; i++ {
		grid[i] = make([]interface{}, cols)
		for j := 0; j < cols; j++ {
			v, err := cellValue(ur, i+1, j+1)
			if err != nil {
				return nil, err
			}
			grid[i][j] = v
		}
	}
	return grid, nil
}

func (s *sheet) SetCell(row, col int, value interface{}) error {
	cellVar, err := oleutil.GetProperty(s.ws, "Cells", row+1, col+1)
	if err != nil {
		return err
	}
	cell := cellVar.ToIDispatch()
	defer cell.Release()
	_, err = oleutil.PutProperty(cell, "Value", value)
	return err
}

func collectionCount(rng *ole.IDispatch, collection string) (int, error) {
	collVar, err := oleutil.GetProperty(rng, collection)
	if err != nil {
		return 0, err
	}
	coll := collVar.ToIDispatch()
	defer coll.Release()
	countVar, err := oleutil.GetProperty(coll, "Count")
	if err != nil {
		return 0, err
	}
	return int(countVar.Val), nil
}

func cellValue(rng *ole.IDispatch, row, col int) (interface{}, error) {
	cellVar, err := oleutil.GetProperty(rng, "Cells", row, col)
	if err != nil {
		return nil, err
	}
	cell := cellVar.ToIDispatch()
	defer cell.Release()
	valVar, err := oleutil.GetProperty(cell, "Value")
	if err != nil {
		return nil, err
	}
	return valVar.Value(), nil
}
