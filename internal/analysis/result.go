package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/contractkit/playbookd/internal/playbook"
)

// Request carries one text segment plus the analysis context for one
// model call. Constructed once per chunk and not mutated.
type Request struct {
	Text          string
	AgreementType string
	UserRole      string
	RiskTolerance string
	ChunkIndex    int // zero-based
	ChunkCount    int
}

// rawResult mirrors the JSON shape the prompt asks the model for, with
// loosely typed risk levels that get normalized during conversion.
type rawResult struct {
	Summary *playbook.Summary `json:"summary"`
	Clauses []struct {
		SectionReference        string `json:"section_reference"`
		Subpart                 string `json:"subpart"`
		ClauseTitle             string `json:"clause_title"`
		OriginalLanguage        string `json:"original_language"`
		RiskLevel               string `json:"risk_level"`
		ApprovalRequired        string `json:"approval_required"`
		PurposeRationale        string `json:"purpose_rationale"`
		CustomerConcerns        string `json:"customer_concerns"`
		CustomerEdits           string `json:"customer_edits"`
		ProviderPosition        string `json:"provider_position"`
		AcceptableModifications string `json:"acceptable_modifications"`
		FallbackLanguage        string `json:"fallback_language"`
		DoNotAccept             string `json:"do_not_accept"`
		NegotiationTips         string `json:"negotiation_tips"`
	} `json:"clauses"`
	Definitions []playbook.DefinitionEntry `json:"definitions"`
}

// ExtractJSON locates the JSON object embedded in a free-text model reply:
// the span from the first '{' through the last '}'. Returns
// ErrMalformedResponse when no such span exists.
func ExtractJSON(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}
	return reply[start : end+1], nil
}

// DecodeResult parses a raw model reply into a typed chunk result.
func DecodeResult(reply string) (*playbook.ChunkResult, error) {
	span, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	res := &playbook.ChunkResult{
		Summary:     raw.Summary,
		Clauses:     make([]playbook.ClauseEntry, 0, len(raw.Clauses)),
		Definitions: raw.Definitions,
	}
	for _, c := range raw.Clauses {
		res.Clauses = append(res.Clauses, playbook.ClauseEntry{
			SectionReference:        c.SectionReference,
			Subpart:                 c.Subpart,
			Title:                   c.ClauseTitle,
			OriginalLanguage:        c.OriginalLanguage,
			RiskLevel:               playbook.ParseRiskLevel(c.RiskLevel),
			ApprovalRequired:        c.ApprovalRequired,
			PurposeRationale:        c.PurposeRationale,
			CustomerConcerns:        c.CustomerConcerns,
			CustomerEdits:           c.CustomerEdits,
			ProviderPosition:        c.ProviderPosition,
			AcceptableModifications: c.AcceptableModifications,
			FallbackLanguage:        c.FallbackLanguage,
			DoNotAccept:             c.DoNotAccept,
			NegotiationTips:         c.NegotiationTips,
		})
	}
	return res, nil
}
