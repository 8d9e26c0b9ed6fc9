package playbook

import (
	"strings"
	"testing"
)

func TestMerge_DefinitionDedupCaseInsensitive(t *testing.T) {
	results := []*ChunkResult{
		{Definitions: []DefinitionEntry{
			{Term: "Fee", Definition: "first"},
			{Term: "fee", Definition: "second"},
		}},
		{Definitions: []DefinitionEntry{
			{Term: "Term", Definition: "third"},
			{Term: "FEE", Definition: "fourth"},
		}},
	}

	pb := Merge(results)

	if len(pb.Definitions) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(pb.Definitions))
	}
	if pb.Definitions[0].Term != "Fee" {
		t.Errorf("expected first-seen casing \"Fee\", got %q", pb.Definitions[0].Term)
	}
	if pb.Definitions[0].Definition != "first" {
		t.Errorf("expected first occurrence to win, got %q", pb.Definitions[0].Definition)
	}
	if pb.Definitions[1].Term != "Term" {
		t.Errorf("expected \"Term\", got %q", pb.Definitions[1].Term)
	}
}

func TestMerge_ClausesKeepChunkArrivalOrder(t *testing.T) {
	results := []*ChunkResult{
		{Clauses: []ClauseEntry{
			{Title: "Liability", RiskLevel: RiskGreen},
			{Title: "Indemnity", RiskLevel: RiskRed},
		}},
		{Clauses: []ClauseEntry{
			{Title: "Termination", RiskLevel: RiskYellow},
		}},
	}

	pb := Merge(results)

	want := []string{"Liability", "Indemnity", "Termination"}
	if len(pb.Clauses) != len(want) {
		t.Fatalf("expected %d clauses, got %d", len(want), len(pb.Clauses))
	}
	for i, title := range want {
		if pb.Clauses[i].Title != title {
			t.Errorf("clause %d: expected %q, got %q", i, title, pb.Clauses[i].Title)
		}
	}
}

func TestMerge_FirstChunkSummaryWins(t *testing.T) {
	results := []*ChunkResult{
		{Summary: &Summary{Title: "Master Services Agreement", GoverningLaw: "Delaware"}},
		{Summary: &Summary{Title: "Overridden", GoverningLaw: "New York"}},
	}

	pb := Merge(results)

	if pb.Summary.Title != "Master Services Agreement" {
		t.Errorf("expected first chunk summary, got %q", pb.Summary.Title)
	}
	if pb.Summary.GoverningLaw != "Delaware" {
		t.Errorf("expected first chunk governing law, got %q", pb.Summary.GoverningLaw)
	}
}

func TestMerge_QuickReferenceBuckets(t *testing.T) {
	results := []*ChunkResult{
		{Clauses: []ClauseEntry{
			{Title: "A", RiskLevel: RiskRed},
			{Title: "B", RiskLevel: RiskGreen},
			{Title: "C", RiskLevel: RiskYellow},
			{Title: "D", RiskLevel: RiskRed},
		}},
	}

	pb := Merge(results)
	qr := pb.QuickReference

	if len(qr.DealBreakers) != 2 {
		t.Fatalf("expected 2 deal breakers, got %d", len(qr.DealBreakers))
	}
	if qr.DealBreakers[0] != "A" || qr.DealBreakers[1] != "D" {
		t.Errorf("expected deal breakers [A D] in original order, got %v", qr.DealBreakers)
	}
	if len(qr.HighPriority) != 1 || qr.HighPriority[0] != "C" {
		t.Errorf("expected high priority [C], got %v", qr.HighPriority)
	}
	if len(qr.StandardAcceptable) != 1 || qr.StandardAcceptable[0] != "B" {
		t.Errorf("expected standard [B], got %v", qr.StandardAcceptable)
	}
}

func TestMerge_RecommendedOrderStableByRisk(t *testing.T) {
	results := []*ChunkResult{
		{Clauses: []ClauseEntry{
			{Title: "A", RiskLevel: RiskRed},
			{Title: "B", RiskLevel: RiskGreen},
			{Title: "C", RiskLevel: RiskYellow},
			{Title: "D", RiskLevel: RiskRed},
		}},
	}

	pb := Merge(results)

	want := []string{"A", "D", "C", "B"}
	got := pb.QuickReference.RecommendedOrder
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMerge_QuickReferenceCapAppliesPerBucket(t *testing.T) {
	var clauses []ClauseEntry
	for i := 0; i < QuickReferenceCap+5; i++ {
		clauses = append(clauses, ClauseEntry{Title: "Red clause", RiskLevel: RiskRed})
	}
	pb := Merge([]*ChunkResult{{Clauses: clauses}})

	if len(pb.QuickReference.DealBreakers) != QuickReferenceCap {
		t.Errorf("expected deal breakers capped at %d, got %d",
			QuickReferenceCap, len(pb.QuickReference.DealBreakers))
	}
	if len(pb.QuickReference.RecommendedOrder) != QuickReferenceCap {
		t.Errorf("expected recommended order capped at %d, got %d",
			QuickReferenceCap, len(pb.QuickReference.RecommendedOrder))
	}
}

func TestMerge_NoResultsProducesWellFormedPlaybook(t *testing.T) {
	pb := Merge(nil)

	if pb.Clauses == nil || pb.Definitions == nil {
		t.Fatal("expected non-nil clause and definition slices")
	}
	if pb.QuickReference.DealBreakers == nil || pb.QuickReference.RecommendedOrder == nil {
		t.Fatal("expected non-nil quick reference lists")
	}
	if !strings.Contains(pb.Summary.ExecutiveSummary, "inconclusive") {
		t.Errorf("expected inconclusive placeholder summary, got %q", pb.Summary.ExecutiveSummary)
	}
}

func TestMerge_SectionReferenceInLabels(t *testing.T) {
	pb := Merge([]*ChunkResult{{Clauses: []ClauseEntry{
		{SectionReference: "9.2", Title: "Indemnification", RiskLevel: RiskRed},
	}}})

	if got := pb.QuickReference.DealBreakers[0]; !strings.HasPrefix(got, "9.2") {
		t.Errorf("expected label to carry section reference, got %q", got)
	}
}

func TestParseRiskLevel(t *testing.T) {
	cases := map[string]RiskLevel{
		"Red":     RiskRed,
		"red":     RiskRed,
		"HIGH":    RiskRed,
		"Yellow":  RiskYellow,
		"medium":  RiskYellow,
		"Green":   RiskGreen,
		"low":     RiskGreen,
		"":        RiskGreen,
		"unknown": RiskGreen,
	}
	for in, want := range cases {
		if got := ParseRiskLevel(in); got != want {
			t.Errorf("ParseRiskLevel(%q): expected %q, got %q", in, want, got)
		}
	}
}
