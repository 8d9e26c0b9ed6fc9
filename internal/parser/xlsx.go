package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/contractkit/playbookd/internal/document"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Excel workbooks. Each sheet's populated rows are
// flattened to pipe-separated lines under a sheet banner.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var full []string
	sheets := f.GetSheetList()

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		var lines []string
		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if v := strings.TrimSpace(cell); v != "" {
					cells = append(cells, v)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
		}

		if len(lines) > 0 {
			full = append(full, fmt.Sprintf("--- Sheet: %s ---\n%s", name, strings.Join(lines, "\n")))
		}
	}

	return &document.Document{
		Title:      strings.TrimSuffix(filename, ".xlsx"),
		Format:     "xlsx",
		Text:       strings.Join(full, "\n\n"),
		SheetCount: len(sheets),
	}, nil
}
