// Package prompts builds the system/user prompt pairs sent to the model
// endpoint. Truncation is deterministic: rerunning on the same input yields
// byte-identical prompts.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"vpatgen/internal/domain"
)

// Clamp budgets. Persona calls run six-wide, so their payload is tighter.
const (
	MasterIssueLimit  = 80
	MasterDescLimit   = 800
	PersonaIssueLimit = 60
	PersonaDescLimit  = 700

	truncationMark = "…"
)

// Pair is one system+user prompt pair.
type Pair struct {
	System string
	User   string
}

const systemInstruction = "You are an accessibility reporting assistant. " +
	"You write concise, factual summaries of accessibility assessment data. " +
	"Use only facts present in the supplied data. Never invent issues, counts, " +
	"URLs, or WCAG criteria. Respond with a single JSON object and nothing else."

const masterExample = `{
  "assessment_id": "a-123",
  "executive_summary": {
    "overview": "Plain-language overview of the assessment, at most 120 words.",
    "top_risks": ["Between two and four risks", "Each one short sentence"],
    "quick_wins": ["Between two and four quick wins", "Each one short sentence"],
    "estimated_impact": "High"
  },
  "personas": [
    {"persona": "screen_reader_user", "summary": "At most 150 words."}
  ]
}`

const personaExample = `{"persona": "screen_reader_user", "summary": "At most 150 words."}`

// Master builds the prompt pair for the full-report call.
func Master(in domain.AssessmentInput) Pair {
	payload := serialize(clamp(in, MasterIssueLimit, MasterDescLimit))

	var sb strings.Builder
	sb.WriteString("Assessment data:\n")
	sb.WriteString(payload)
	sb.WriteString("\n\nWrite an accessibility report for this assessment.\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("- overview: at most 120 words.\n")
	sb.WriteString("- top_risks and quick_wins: 2 to 4 entries each.\n")
	sb.WriteString("- estimated_impact: one of Critical, High, Medium, Low.\n")
	sb.WriteString("- personas: one entry per persona, in this order: ")
	sb.WriteString(personaList())
	sb.WriteString(". Each summary at most 150 words.\n")
	sb.WriteString("Output exactly this JSON shape:\n")
	sb.WriteString(masterExample)

	return Pair{System: systemInstruction, User: sb.String()}
}

// Persona builds the prompt pair for one persona-specific call.
func Persona(in domain.AssessmentInput, p domain.Persona) Pair {
	payload := serialize(clamp(in, PersonaIssueLimit, PersonaDescLimit))

	var sb strings.Builder
	sb.WriteString("Assessment data:\n")
	sb.WriteString(payload)
	fmt.Fprintf(&sb, "\n\nSummarize how the findings above affect %s.\n", domain.PersonaLabel(p))
	fmt.Fprintf(&sb, "Requirements:\n")
	fmt.Fprintf(&sb, "- persona: exactly %q.\n", string(p))
	sb.WriteString("- summary: at most 150 words, grounded only in the data above.\n")
	sb.WriteString("Output exactly this JSON shape:\n")
	sb.WriteString(personaExample)

	return Pair{System: systemInstruction, User: sb.String()}
}

// clamp returns a truncated copy; the input is never mutated.
func clamp(in domain.AssessmentInput, maxIssues, maxDesc int) domain.AssessmentInput {
	out := in
	n := len(in.Issues)
	if n > maxIssues {
		n = maxIssues
	}
	out.Issues = make([]domain.IssueRecord, n)
	copy(out.Issues, in.Issues[:n])
	for i := range out.Issues {
		if len(out.Issues[i].Description) > maxDesc {
			out.Issues[i].Description = out.Issues[i].Description[:maxDesc] + truncationMark
		}
	}
	return out
}

func serialize(in domain.AssessmentInput) string {
	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		// Domain values marshal cleanly; this only fires on programmer error.
		panic(fmt.Sprintf("prompts: serialize assessment: %v", err))
	}
	return string(b)
}

func personaList() string {
	names := make([]string, len(domain.AllPersonas))
	for i, p := range domain.AllPersonas {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
