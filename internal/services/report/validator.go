package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"vpatgen/internal/domain"
)

// Word ceilings for generated text.
const (
	OverviewWordLimit = 120
	SummaryWordLimit  = 150
	ListMinEntries    = 2
	ListMaxEntries    = 4
)

// Mode selects how persona summaries are checked. RequireAllPersonas is used
// when the model is asked for the complete report; ExecutiveOnly trusts just
// the executive summary because persona summaries come from separate calls.
type Mode int

const (
	RequireAllPersonas Mode = iota
	ExecutiveOnly
)

// ValidationError names the violated field and constraint. Expected validation
// failures are returned as this type, never as panics.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Constraint)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Constraint: fmt.Sprintf(format, args...)}
}

// ValidateReport checks a raw master-report object against the schema. On
// success the decoded report is returned; any failure is a *ValidationError.
func ValidateReport(raw json.RawMessage, mode Mode) (*domain.Report, error) {
	var rep domain.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, invalid("report", "not a report object: %v", err)
	}

	if err := validateExecutive("executive_summary", rep.ExecutiveSummary); err != nil {
		return nil, err
	}

	if mode == ExecutiveOnly {
		return &rep, nil
	}

	if len(rep.Personas) == 0 {
		return nil, invalid("personas", "must not be empty")
	}
	seen := make(map[domain.Persona]bool, len(rep.Personas))
	for i, ps := range rep.Personas {
		field := fmt.Sprintf("personas[%d]", i)
		if err := validatePersona(field, ps); err != nil {
			return nil, err
		}
		if seen[ps.Persona] {
			return nil, invalid(field+".persona", "duplicate persona %q", ps.Persona)
		}
		seen[ps.Persona] = true
	}
	for _, p := range domain.AllPersonas {
		if !seen[p] {
			return nil, invalid("personas", "missing persona %q", p)
		}
	}
	return &rep, nil
}

// ValidatePersonaSummary checks the output of one persona-specific call.
func ValidatePersonaSummary(raw json.RawMessage, want domain.Persona) (*domain.PersonaSummary, error) {
	var ps domain.PersonaSummary
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, invalid("persona_summary", "not a persona object: %v", err)
	}
	if err := validatePersona("persona_summary", ps); err != nil {
		return nil, err
	}
	if ps.Persona != want {
		return nil, invalid("persona_summary.persona", "got %q, want %q", ps.Persona, want)
	}
	return &ps, nil
}

func validateExecutive(field string, es domain.ExecutiveSummary) error {
	if strings.TrimSpace(es.Overview) == "" {
		return invalid(field+".overview", "required")
	}
	if n := wordCount(es.Overview); n > OverviewWordLimit {
		return invalid(field+".overview", "%d words, limit %d", n, OverviewWordLimit)
	}
	if err := validateList(field+".top_risks", es.TopRisks); err != nil {
		return err
	}
	if err := validateList(field+".quick_wins", es.QuickWins); err != nil {
		return err
	}
	if !domain.ValidImpact(es.EstimatedImpact) {
		return invalid(field+".estimated_impact", "%q is not one of Critical, High, Medium, Low", es.EstimatedImpact)
	}
	return nil
}

func validateList(field string, items []string) error {
	if len(items) < ListMinEntries || len(items) > ListMaxEntries {
		return invalid(field, "%d entries, want %d-%d", len(items), ListMinEntries, ListMaxEntries)
	}
	for i, it := range items {
		if strings.TrimSpace(it) == "" {
			return invalid(fmt.Sprintf("%s[%d]", field, i), "must not be blank")
		}
	}
	return nil
}

func validatePersona(field string, ps domain.PersonaSummary) error {
	if domain.PersonaIndex(ps.Persona) < 0 {
		return invalid(field+".persona", "%q is not a known persona", ps.Persona)
	}
	if strings.TrimSpace(ps.Summary) == "" {
		return invalid(field+".summary", "required")
	}
	if n := wordCount(ps.Summary); n > SummaryWordLimit {
		return invalid(field+".summary", "%d words, limit %d", n, SummaryWordLimit)
	}
	return nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
