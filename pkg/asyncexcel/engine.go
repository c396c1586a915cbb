package asyncexcel

import "strconv"

// Engine abstracts the spreadsheet automation backend. Implementations open
// workbooks and hand back document handles; all file I/O and format handling
// lives behind this seam so backends are swappable without touching session
// logic.
type Engine interface {
	// Open opens the workbook at path. When create is set a missing file is
	// created instead of failing.
	Open(path string, create bool) (Document, error)
}

// Document is an open workbook held by an engine.
type Document interface {
	// SelectSheet resolves a sheet reference within the workbook. It returns
	// an error wrapping ErrSheetNotFound if the sheet does not exist.
	SelectSheet(ref SheetRef) (Sheet, error)
	// Save persists pending changes to the underlying file.
	Save() error
	// Close releases the engine handle without saving.
	Close() error
}

// Sheet is a single worksheet within an open document.
type Sheet interface {
	// UsedRange returns a snapshot of the rectangular region containing data.
	// An empty sheet yields an empty grid.
	UsedRange() (Grid, error)
	// SetCell writes value at the 0-based (row, col) address.
	SetCell(row, col int, value interface{}) error
}

// SheetRef selects a worksheet by name or, when Name is empty, by 0-based
// position in the workbook's sheet list.
type SheetRef struct {
	Name  string
	Index int
}

// SheetByName returns a reference to the named sheet.
func SheetByName(name string) SheetRef {
	return SheetRef{Name: name}
}

// SheetByIndex returns a reference to the sheet at the 0-based index.
func SheetByIndex(index int) SheetRef {
	return SheetRef{Index: index}
}

func (r SheetRef) String() string {
	if r.Name != "" {
		return r.Name
	}
	return "#" + strconv.Itoa(r.Index)
}
