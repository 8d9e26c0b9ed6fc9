// Package excel renders a merged playbook into a formatted XLSX workbook
// with four sheets: Overview, Clause Analysis, Definitions, Quick Reference.
package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/contractkit/playbookd/internal/playbook"
)

// Fixed colors for the workbook. Risk colors map Red/Yellow/Green to
// light fills; headers are white on dark blue.
const (
	colorHeaderBg  = "1F4E79"
	colorHeaderFg  = "FFFFFF"
	colorRiskRed   = "FFCCCC"
	colorRiskYT    = "FFFFCC"
	colorRiskGreen = "CCFFCC"
	colorAltRow    = "F2F2F2"
)

// styles holds the per-workbook style IDs (excelize styles are scoped to
// one file).
type styles struct {
	header    int
	title     int
	subtitle  int
	bold      int
	wrap      int
	riskRed   int
	riskYT    int
	riskGreen int
	altRow    int
}

func newStyles(f *excelize.File) (*styles, error) {
	s := &styles{}
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorHeaderFg, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderBg}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, err
	}
	s.subtitle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, err
	}
	s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	s.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, err
	}

	riskFill := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
	}
	if s.riskRed, err = riskFill(colorRiskRed); err != nil {
		return nil, err
	}
	if s.riskYT, err = riskFill(colorRiskYT); err != nil {
		return nil, err
	}
	if s.riskGreen, err = riskFill(colorRiskGreen); err != nil {
		return nil, err
	}
	s.altRow, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorAltRow}},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *styles) risk(level playbook.RiskLevel) int {
	switch level {
	case playbook.RiskRed:
		return s.riskRed
	case playbook.RiskYellow:
		return s.riskYT
	default:
		return s.riskGreen
	}
}

// Workbook builds the playbook workbook in memory.
func Workbook(pb *playbook.Playbook) (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	if err := writeOverview(f, st, pb); err != nil {
		return nil, err
	}
	if err := writeClauseAnalysis(f, st, pb); err != nil {
		return nil, err
	}
	if err := writeDefinitions(f, st, pb); err != nil {
		return nil, err
	}
	if err := writeQuickReference(f, st, pb); err != nil {
		return nil, err
	}
	return f, nil
}

// Generate writes the workbook to path. Failures here surface as render
// errors on the job.
func Generate(pb *playbook.Playbook, path string) error {
	f, err := Workbook(pb)
	if err != nil {
		return fmt.Errorf("render playbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeOverview(f *excelize.File, st *styles, pb *playbook.Playbook) error {
	const sheet = "Overview"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	set := func(cell string, v any) { _ = f.SetCellValue(sheet, cell, v) }
	style := func(cell string, id int) { _ = f.SetCellStyle(sheet, cell, cell, id) }

	set("A1", "CONTRACT PLAYBOOK")
	style("A1", st.title)
	_ = f.MergeCell(sheet, "A1", "D1")
	set("A2", "Generated: "+time.Now().Format("January 2, 2006"))
	_ = f.MergeCell(sheet, "A2", "D2")

	set("A4", "AGREEMENT SUMMARY")
	style("A4", st.subtitle)
	_ = f.MergeCell(sheet, "A4", "D4")

	sum := pb.Summary
	fields := []struct{ label, value string }{
		{"Agreement Title:", orDefault(sum.Title, "Not specified")},
		{"Agreement Type:", orDefault(sum.AgreementType, "Not specified")},
		{"Perspective:", orDefault(sum.Perspective, "Not specified")},
		{"Parties:", orDefault(sum.Parties, "Not specified")},
		{"Effective Date:", orDefault(sum.EffectiveDate, "Not specified")},
		{"Governing Law:", orDefault(sum.GoverningLaw, "Not specified")},
	}
	row := 6
	for _, fld := range fields {
		set(cell("A", row), fld.label)
		style(cell("A", row), st.bold)
		set(cell("B", row), fld.value)
		style(cell("B", row), st.wrap)
		row++
	}

	row++
	set(cell("A", row), "EXECUTIVE SUMMARY")
	style(cell("A", row), st.subtitle)
	_ = f.MergeCell(sheet, cell("A", row), cell("D", row))
	row++
	set(cell("A", row), sum.ExecutiveSummary)
	style(cell("A", row), st.wrap)
	_ = f.MergeCell(sheet, cell("A", row), cell("D", row))
	_ = f.SetRowHeight(sheet, row, 80)

	row += 2
	for _, p := range sum.KeyPrinciples {
		set(cell("A", row), "• "+p)
		_ = f.MergeCell(sheet, cell("A", row), cell("D", row))
		row++
	}

	row += 2
	set(cell("A", row), "RISK LEVEL LEGEND")
	style(cell("A", row), st.subtitle)
	row++
	legend := []struct {
		level playbook.RiskLevel
		text  string
	}{
		{playbook.RiskRed, "Deal breaker - requires legal review and executive approval"},
		{playbook.RiskYellow, "Needs attention - requires manager or legal approval"},
		{playbook.RiskGreen, "Acceptable - can proceed without escalation"},
	}
	for _, l := range legend {
		set(cell("A", row), string(l.level))
		style(cell("A", row), st.risk(l.level))
		set(cell("B", row), l.text)
		row++
	}

	row += 2
	row = writeList(f, st, sheet, row, "DEAL BREAKERS (Do Not Accept)", st.riskRed, "✗ ", pb.QuickReference.DealBreakers)
	row++
	writeList(f, st, sheet, row, "HIGH PRIORITY ITEMS", st.riskYT, "⚠ ", pb.QuickReference.HighPriority)

	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "B", 60)
	_ = f.SetColWidth(sheet, "C", "D", 30)
	return nil
}

var clauseHeaders = []string{
	"Section", "Subpart", "Issue", "Existing Language",
	"Purpose/Rationale", "Customer Concerns", "Customer Edits",
	"Provider Position", "Acceptable Modifications", "Fallback Language",
	"Don't Accept", "Risk", "Approval", "Negotiation Tips",
}

func writeClauseAnalysis(f *excelize.File, st *styles, pb *playbook.Playbook) error {
	const sheet = "Clause Analysis"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range clauseHeaders {
		name, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, name, h)
		_ = f.SetCellStyle(sheet, name, name, st.header)
	}

	// Freeze header row and the first three columns.
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      3,
		YSplit:      1,
		TopLeftCell: "D2",
		ActivePane:  "bottomRight",
	})

	const riskCol = 12
	for i, c := range pb.Clauses {
		row := i + 2
		values := []any{
			c.SectionReference, c.Subpart, c.Title, c.OriginalLanguage,
			c.PurposeRationale, c.CustomerConcerns, c.CustomerEdits,
			c.ProviderPosition, c.AcceptableModifications, c.FallbackLanguage,
			c.DoNotAccept, string(c.RiskLevel), orDefault(c.ApprovalRequired, "None"),
			c.NegotiationTips,
		}
		for col, v := range values {
			name, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, name, v)
			switch {
			case col+1 == riskCol:
				_ = f.SetCellStyle(sheet, name, name, st.risk(c.RiskLevel))
			case row%2 == 0:
				_ = f.SetCellStyle(sheet, name, name, st.altRow)
			default:
				_ = f.SetCellStyle(sheet, name, name, st.wrap)
			}
		}
		_ = f.SetRowHeight(sheet, row, 80)
	}

	widths := map[string]float64{
		"A": 10, "B": 10, "C": 25, "D": 50, "E": 40, "F": 40, "G": 45,
		"H": 40, "I": 45, "J": 50, "K": 40, "L": 10, "M": 12, "N": 45,
	}
	for col, w := range widths {
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

var definitionHeaders = []string{
	"Term", "Definition", "Why It Matters",
	"Customer Considerations", "Provider Considerations", "Suggested Modifications",
}

func writeDefinitions(f *excelize.File, st *styles, pb *playbook.Playbook) error {
	const sheet = "Definitions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range definitionHeaders {
		name, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, name, h)
		_ = f.SetCellStyle(sheet, name, name, st.header)
	}
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, d := range pb.Definitions {
		row := i + 2
		values := []any{
			d.Term, d.Definition, d.Importance,
			d.CustomerConsiderations, d.ProviderConsiderations, d.SuggestedModifications,
		}
		for col, v := range values {
			name, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, name, v)
			if row%2 == 0 {
				_ = f.SetCellStyle(sheet, name, name, st.altRow)
			} else {
				_ = f.SetCellStyle(sheet, name, name, st.wrap)
			}
		}
		_ = f.SetRowHeight(sheet, row, 60)
	}

	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "B", 50)
	_ = f.SetColWidth(sheet, "C", "E", 35)
	_ = f.SetColWidth(sheet, "F", "F", 40)
	return nil
}

func writeQuickReference(f *excelize.File, st *styles, pb *playbook.Playbook) error {
	const sheet = "Quick Reference"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	_ = f.SetCellValue(sheet, "A1", "QUICK REFERENCE GUIDE")
	_ = f.SetCellStyle(sheet, "A1", "A1", st.title)
	_ = f.MergeCell(sheet, "A1", "C1")

	qr := pb.QuickReference
	row := 3
	row = writeList(f, st, sheet, row, "DEAL BREAKERS - Never Accept These Terms", st.riskRed, "✗ ", qr.DealBreakers)
	row++
	row = writeList(f, st, sheet, row, "HIGH PRIORITY - Requires Approval for Deviation", st.riskYT, "⚠ ", qr.HighPriority)
	row++
	row = writeList(f, st, sheet, row, "STANDARD ACCEPTABLE TERMS", st.riskGreen, "✓ ", qr.StandardAcceptable)
	row++

	_ = f.SetCellValue(sheet, cell("A", row), "RECOMMENDED ORDER OF NEGOTIATION")
	_ = f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.subtitle)
	_ = f.MergeCell(sheet, cell("A", row), cell("C", row))
	row++
	for i, item := range qr.RecommendedOrder {
		_ = f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("%d. %s", i+1, item))
		_ = f.MergeCell(sheet, cell("A", row), cell("C", row))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 60)
	_ = f.SetColWidth(sheet, "B", "C", 30)
	return nil
}

// writeList writes a styled section header followed by one prefixed item
// per row, returning the next free row.
func writeList(f *excelize.File, st *styles, sheet string, row int, header string, headerStyle int, prefix string, items []string) int {
	_ = f.SetCellValue(sheet, cell("A", row), header)
	_ = f.SetCellStyle(sheet, cell("A", row), cell("A", row), headerStyle)
	_ = f.MergeCell(sheet, cell("A", row), cell("C", row))
	row++
	for _, item := range items {
		_ = f.SetCellValue(sheet, cell("A", row), prefix+item)
		_ = f.MergeCell(sheet, cell("A", row), cell("C", row))
		row++
	}
	return row
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
