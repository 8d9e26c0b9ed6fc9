package analysis

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a contract attorney producing a
// negotiation playbook.
const SystemPrompt = `You are an expert contract attorney with 25+ years of experience creating comprehensive contract playbooks for Fortune 500 companies. You analyze contracts with extraordinary depth and practical insight.

Your analysis must be:
1. THOROUGH - Every significant clause gets detailed treatment
2. PRACTICAL - Real negotiation guidance, not academic analysis
3. BALANCED - Both customer and provider perspectives
4. ACTIONABLE - Ready-to-use fallback language and hard limits`

const resultShape = `{
  "summary": {
    "title": "Full title of the agreement",
    "agreement_type": "",
    "perspective": "",
    "parties": "Description of the parties",
    "effective_date": "If specified",
    "governing_law": "Jurisdiction if specified",
    "key_principles": ["Key principle 1", "Key principle 2"],
    "executive_summary": "2-3 paragraph overview and key negotiation considerations"
  },
  "clauses": [
    {
      "section_reference": "Section number (e.g. '2.1', 'III', 'Schedule A')",
      "subpart": "Subsection if applicable",
      "clause_title": "Brief title describing the specific issue",
      "original_language": "EXACT quoted text from the contract",
      "risk_level": "Red, Yellow, or Green",
      "approval_required": "Who must approve deviation (e.g. 'Legal', 'None')",
      "purpose_rationale": "Why this clause exists and its business purpose",
      "customer_concerns": "Bullet points, one per line",
      "customer_edits": "Edits the customer should push for",
      "provider_position": "What the provider needs to protect",
      "acceptable_modifications": "Standard negotiation moves",
      "fallback_language": "Ready-to-use alternative contract language",
      "do_not_accept": "Hard limits",
      "negotiation_tips": "Practical guidance"
    }
  ],
  "definitions": [
    {
      "term": "",
      "definition": "",
      "importance": "Why this defined term matters",
      "customer_considerations": "",
      "provider_considerations": "",
      "suggested_modifications": ""
    }
  ]
}`

// BuildPrompt assembles the user prompt for one analysis call. For
// multi-chunk documents the model is told which portion it is seeing so it
// does not fabricate agreement-level fields from a middle section.
func BuildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Analyze this contract")
	if req.ChunkCount > 1 {
		fmt.Fprintf(&sb, " (part %d of %d)", req.ChunkIndex+1, req.ChunkCount)
	}
	sb.WriteString(" and produce a structured negotiation playbook.\n\nCONTRACT TEXT:\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n\nCONTEXT:\n")
	fmt.Fprintf(&sb, "- Agreement Type: %s\n", req.AgreementType)
	fmt.Fprintf(&sb, "- Analyzing from: %s perspective\n", req.UserRole)
	fmt.Fprintf(&sb, "- Risk Tolerance: %s\n", req.RiskTolerance)
	sb.WriteString("\nRate every clause Red (deal breaker), Yellow (needs approval), or Green (acceptable).\n")
	sb.WriteString("Be thorough: analyze EVERY significant clause in this portion, including important omissions.\n")
	sb.WriteString("\nReturn a single JSON object with this structure and no other text:\n")
	sb.WriteString(resultShape)
	return sb.String()
}
