package xlsx

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

func writeTestBook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "Header2")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "A3", "Text")

	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

func TestOpenAndUsedRange(t *testing.T) {
	path := writeTestBook(t)

	doc, err := New().Open(path, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer doc.Close()

	sheet, err := doc.SelectSheet(asyncexcel.SheetByName("Sheet1"))
	if err != nil {
		t.Fatalf("SelectSheet failed: %v", err)
	}

	grid, err := sheet.UsedRange()
	if err != nil {
		t.Fatalf("UsedRange failed: %v", err)
	}

	if grid.Rows() != 3 {
		t.Errorf("Expected 3 rows, got %d", grid.Rows())
	}
	if grid.Cols() != 2 {
		t.Errorf("Expected 2 cols, got %d", grid.Cols())
	}
	if v, _ := grid.At(0, 0); v != "Header1" {
		t.Errorf("Expected 'Header1', got %v", v)
	}
	// Numeric-looking cells come back coerced.
	if v, _ := grid.At(1, 0); v != int64(100) {
		t.Errorf("Expected int64(100), got %v (type: %T)", v, v)
	}
	if v, _ := grid.At(1, 1); v != 200.5 {
		t.Errorf("Expected 200.5, got %v", v)
	}
	// Row 3 has no B cell; the grid is padded with nil.
	if v, ok := grid.At(2, 1); !ok || v != nil {
		t.Errorf("Expected padded nil cell, got %v (present: %v)", v, ok)
	}
}

func TestSelectSheetByIndex(t *testing.T) {
	path := writeTestBook(t)

	doc, err := New().Open(path, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer doc.Close()

	if _, err := doc.SelectSheet(asyncexcel.SheetByIndex(0)); err != nil {
		t.Errorf("SelectSheet by index 0 failed: %v", err)
	}
	if _, err := doc.SelectSheet(asyncexcel.SheetByIndex(5)); !errors.Is(err, asyncexcel.ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound for index 5, got %v", err)
	}
}

func TestSelectMissingSheet(t *testing.T) {
	path := writeTestBook(t)

	doc, err := New().Open(path, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer doc.Close()

	_, err = doc.SelectSheet(asyncexcel.SheetByName("Missing"))
	if !errors.Is(err, asyncexcel.ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
}

func TestSetCellAndSave(t *testing.T) {
	path := writeTestBook(t)
	engine := New()

	doc, err := engine.Open(path, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	sheet, err := doc.SelectSheet(asyncexcel.SheetByName("Sheet1"))
	if err != nil {
		t.Fatalf("SelectSheet failed: %v", err)
	}
	if err := sheet.SetCell(0, 0, "Replaced"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if err := doc.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen and verify the write persisted.
	doc2, err := engine.Open(path, false)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer doc2.Close()
	sheet2, err := doc2.SelectSheet(asyncexcel.SheetByName("Sheet1"))
	if err != nil {
		t.Fatalf("SelectSheet failed: %v", err)
	}
	grid, err := sheet2.UsedRange()
	if err != nil {
		t.Fatalf("UsedRange failed: %v", err)
	}
	if v, _ := grid.At(0, 0); v != "Replaced" {
		t.Errorf("Expected 'Replaced', got %v", v)
	}
}

func TestOpenCreateMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.xlsx")

	if _, err := New().Open(path, false); err == nil {
		t.Fatal("Expected error opening a missing file without create")
	}

	doc, err := New().Open(path, true)
	if err != nil {
		t.Fatalf("Open with create failed: %v", err)
	}
	defer doc.Close()

	sheet, err := doc.SelectSheet(asyncexcel.SheetByIndex(0))
	if err != nil {
		t.Fatalf("SelectSheet failed: %v", err)
	}
	grid, err := sheet.UsedRange()
	if err != nil {
		t.Fatalf("UsedRange failed: %v", err)
	}
	if grid.Rows() != 0 {
		t.Errorf("Expected empty grid from a fresh workbook, got %d rows", grid.Rows())
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}
