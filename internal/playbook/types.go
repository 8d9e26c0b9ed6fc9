package playbook

import "strings"

// RiskLevel is the three-value ordinal attached to every analyzed clause.
// Red means deal-breaker, Yellow needs approval, Green is acceptable.
type RiskLevel string

const (
	RiskRed    RiskLevel = "Red"
	RiskYellow RiskLevel = "Yellow"
	RiskGreen  RiskLevel = "Green"
)

// ParseRiskLevel normalizes a model-supplied risk string. The model is
// prompted for Red/Yellow/Green but occasionally answers high/medium/low;
// anything unrecognized is treated as Green, matching the renderer's
// historical default.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "high":
		return RiskRed
	case "yellow", "medium":
		return RiskYellow
	default:
		return RiskGreen
	}
}

// SortKey orders risk levels Red < Yellow < Green for the recommended
// negotiation order.
func (r RiskLevel) SortKey() int {
	switch r {
	case RiskRed:
		return 0
	case RiskYellow:
		return 1
	default:
		return 2
	}
}

// ClauseEntry is one analyzed contract provision. Entries are created when
// a model response is decoded and never mutated afterward.
type ClauseEntry struct {
	SectionReference string    `json:"section_reference"`
	Subpart          string    `json:"subpart"`
	Title            string    `json:"clause_title"`
	OriginalLanguage string    `json:"original_language"`
	RiskLevel        RiskLevel `json:"risk_level"`
	ApprovalRequired string    `json:"approval_required"`

	PurposeRationale        string `json:"purpose_rationale"`
	CustomerConcerns        string `json:"customer_concerns"`
	CustomerEdits           string `json:"customer_edits"`
	ProviderPosition        string `json:"provider_position"`
	AcceptableModifications string `json:"acceptable_modifications"`
	FallbackLanguage        string `json:"fallback_language"`
	DoNotAccept             string `json:"do_not_accept"`
	NegotiationTips         string `json:"negotiation_tips"`
}

// DefinitionEntry is one defined term. Identity is the lower-cased term.
type DefinitionEntry struct {
	Term                   string `json:"term"`
	Definition             string `json:"definition"`
	Importance             string `json:"importance"`
	CustomerConsiderations string `json:"customer_considerations"`
	ProviderConsiderations string `json:"provider_considerations"`
	SuggestedModifications string `json:"suggested_modifications"`
}

// Summary holds the agreement-level overview fields.
type Summary struct {
	Title            string   `json:"title"`
	AgreementType    string   `json:"agreement_type"`
	Perspective      string   `json:"perspective"`
	Parties          string   `json:"parties"`
	EffectiveDate    string   `json:"effective_date"`
	GoverningLaw     string   `json:"governing_law"`
	KeyPrinciples    []string `json:"key_principles"`
	ExecutiveSummary string   `json:"executive_summary"`
}

// QuickReference holds the derived at-a-glance lists.
type QuickReference struct {
	DealBreakers       []string `json:"deal_breakers"`
	HighPriority       []string `json:"high_priority_items"`
	StandardAcceptable []string `json:"standard_acceptable_terms"`
	RecommendedOrder   []string `json:"recommended_order_of_negotiation"`
}

// Playbook is the aggregate negotiation guide for one contract.
type Playbook struct {
	Summary        Summary           `json:"summary"`
	Clauses        []ClauseEntry     `json:"clauses"`
	Definitions    []DefinitionEntry `json:"definitions"`
	QuickReference QuickReference    `json:"quick_reference"`
}

// ChunkResult is the decoded structured output of one model call.
type ChunkResult struct {
	Summary     *Summary          `json:"summary"`
	Clauses     []ClauseEntry     `json:"clauses"`
	Definitions []DefinitionEntry `json:"definitions"`
}
