package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSXParser_FlattensSheets(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "Fee Schedule")
	_ = f.SetCellValue(sheet, "B1", "Amount")
	_ = f.SetCellValue(sheet, "A2", "License")
	_ = f.SetCellValue(sheet, "B2", "10000")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	doc, err := (&XLSXParser{}).Parse(&buf, "fees.xlsx")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if doc.SheetCount != 1 {
		t.Errorf("expected 1 sheet, got %d", doc.SheetCount)
	}
	if !strings.Contains(doc.Text, "Fee Schedule | Amount") {
		t.Errorf("expected pipe-joined row, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "--- Sheet: "+sheet+" ---") {
		t.Errorf("expected sheet banner, got %q", doc.Text)
	}
}

func TestXLSXParser_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	doc, err := (&XLSXParser{}).Parse(&buf, "empty.xlsx")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !doc.Empty() {
		t.Errorf("expected empty document, got %q", doc.Text)
	}
}
