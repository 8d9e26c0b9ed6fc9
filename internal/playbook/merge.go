package playbook

import (
	"sort"
	"strings"
)

// QuickReferenceCap bounds each derived quick-reference list.
const QuickReferenceCap = 15

// Merge combines per-chunk results, in chunk order, into one Playbook.
//
// Clauses concatenate in arrival order and are never re-sorted. Definitions
// are deduplicated case-insensitively by term, first occurrence wins. The
// first chunk that carries a summary supplies the Playbook summary; later
// summaries are discarded, so identifying fields that only appear late in a
// long contract will not surface (kept as documented behavior).
func Merge(results []*ChunkResult) *Playbook {
	pb := &Playbook{
		Clauses:     []ClauseEntry{},
		Definitions: []DefinitionEntry{},
	}

	seenTerms := make(map[string]bool)
	haveSummary := false

	for _, res := range results {
		if res == nil {
			continue
		}
		if !haveSummary && res.Summary != nil {
			pb.Summary = *res.Summary
			haveSummary = true
		}
		pb.Clauses = append(pb.Clauses, res.Clauses...)
		for _, def := range res.Definitions {
			key := strings.ToLower(strings.TrimSpace(def.Term))
			if key == "" || seenTerms[key] {
				continue
			}
			seenTerms[key] = true
			pb.Definitions = append(pb.Definitions, def)
		}
	}

	if pb.Summary.KeyPrinciples == nil {
		pb.Summary.KeyPrinciples = []string{}
	}
	// Even with nothing usable from the model, the Playbook stays well-formed.
	if !haveSummary && len(pb.Clauses) == 0 {
		pb.Summary.Title = "Untitled Agreement"
		pb.Summary.ExecutiveSummary = "Analysis was inconclusive: the model returned no usable clause analysis for this document."
	}

	pb.QuickReference = deriveQuickReference(pb.Clauses)
	return pb
}

// deriveQuickReference partitions clauses by risk into capped buckets in
// encounter order, plus a stable risk-sorted negotiation order.
func deriveQuickReference(clauses []ClauseEntry) QuickReference {
	qr := QuickReference{
		DealBreakers:       []string{},
		HighPriority:       []string{},
		StandardAcceptable: []string{},
		RecommendedOrder:   []string{},
	}

	for _, c := range clauses {
		label := clauseLabel(c)
		switch c.RiskLevel {
		case RiskRed:
			if len(qr.DealBreakers) < QuickReferenceCap {
				qr.DealBreakers = append(qr.DealBreakers, label)
			}
		case RiskYellow:
			if len(qr.HighPriority) < QuickReferenceCap {
				qr.HighPriority = append(qr.HighPriority, label)
			}
		default:
			if len(qr.StandardAcceptable) < QuickReferenceCap {
				qr.StandardAcceptable = append(qr.StandardAcceptable, label)
			}
		}
	}

	ordered := make([]ClauseEntry, len(clauses))
	copy(ordered, clauses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RiskLevel.SortKey() < ordered[j].RiskLevel.SortKey()
	})
	for _, c := range ordered {
		if len(qr.RecommendedOrder) >= QuickReferenceCap {
			break
		}
		qr.RecommendedOrder = append(qr.RecommendedOrder, clauseLabel(c))
	}

	return qr
}

func clauseLabel(c ClauseEntry) string {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "Unnamed clause"
	}
	if ref := strings.TrimSpace(c.SectionReference); ref != "" {
		return ref + " — " + title
	}
	return title
}
