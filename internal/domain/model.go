package domain

import "time"

// Core domain models for report and VPAT draft generation. Wire shapes for the
// model endpoint and the batch stream carry json tags here; persistence rows map
// onto these in the postgres adapter.

// Severity buckets issues are aggregated under.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Conformance levels used in VPAT draft rows.
type Conformance string

const (
	Supports          Conformance = "Supports"
	PartiallySupports Conformance = "Partially Supports"
	DoesNotSupport    Conformance = "Does Not Support"
	NotApplicable     Conformance = "Not Applicable"
)

// Impact is the estimated overall impact in an executive summary.
type Impact string

const (
	ImpactCritical Impact = "Critical"
	ImpactHigh     Impact = "High"
	ImpactMedium   Impact = "Medium"
	ImpactLow      Impact = "Low"
)

// ValidImpact reports whether v is one of the four impact levels.
func ValidImpact(v Impact) bool {
	switch v {
	case ImpactCritical, ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}

// Persona identifies one of the six fixed stakeholder viewpoints. The set is
// closed; persona summaries in an assembled report always follow AllPersonas
// order regardless of generation order.
type Persona string

const (
	PersonaScreenReaderUser  Persona = "screen_reader_user"
	PersonaLowVisionUser     Persona = "low_vision_user"
	PersonaKeyboardOnlyUser  Persona = "keyboard_only_user"
	PersonaDeafHardOfHearing Persona = "deaf_hard_of_hearing_user"
	PersonaCognitiveUser     Persona = "cognitive_user"
	PersonaComplianceOfficer Persona = "compliance_officer"
)

// AllPersonas is the canonical persona ordering.
var AllPersonas = []Persona{
	PersonaScreenReaderUser,
	PersonaLowVisionUser,
	PersonaKeyboardOnlyUser,
	PersonaDeafHardOfHearing,
	PersonaCognitiveUser,
	PersonaComplianceOfficer,
}

// PersonaIndex maps a persona to its canonical position. Unknown personas map
// to -1.
func PersonaIndex(p Persona) int {
	for i, q := range AllPersonas {
		if p == q {
			return i
		}
	}
	return -1
}

// PersonaLabel is the human-readable label embedded in prompts.
func PersonaLabel(p Persona) string {
	switch p {
	case PersonaScreenReaderUser:
		return "a blind screen reader user"
	case PersonaLowVisionUser:
		return "a low-vision user relying on zoom and high contrast"
	case PersonaKeyboardOnlyUser:
		return "a keyboard-only user with a motor impairment"
	case PersonaDeafHardOfHearing:
		return "a deaf or hard-of-hearing user"
	case PersonaCognitiveUser:
		return "a user with cognitive or learning disabilities"
	case PersonaComplianceOfficer:
		return "a compliance officer preparing procurement documentation"
	}
	return string(p)
}

// IssueRecord is one accessibility finding inside an AssessmentInput.
type IssueRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Status      string   `json:"status"`
	Criteria    []string `json:"criteria,omitempty"`
	Component   string   `json:"component,omitempty"`
	URL         string   `json:"url,omitempty"`
	Impact      string   `json:"impact,omitempty"`
}

// IssueStats aggregates issue counts across the assessment.
type IssueStats struct {
	BySeverity  map[Severity]int `json:"by_severity,omitempty"`
	ByPrinciple map[string]int   `json:"by_principle,omitempty"`
	ByCriterion map[string]int   `json:"by_criterion,omitempty"`
}

// AssessmentInput is the immutable payload handed to prompt construction.
// Prompt builders work on truncated copies; the original is never mutated.
type AssessmentInput struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Date   time.Time     `json:"date"`
	Stats  IssueStats    `json:"stats"`
	Issues []IssueRecord `json:"issues"`
}

// ExecutiveSummary is the summary portion of a generated report.
type ExecutiveSummary struct {
	Overview        string   `json:"overview"`
	TopRisks        []string `json:"top_risks"`
	QuickWins       []string `json:"quick_wins"`
	EstimatedImpact Impact   `json:"estimated_impact"`
}

// PersonaSummary pairs one persona with its generated summary.
type PersonaSummary struct {
	Persona Persona `json:"persona"`
	Summary string  `json:"summary"`
}

// Report is the assembled accessibility report.
type Report struct {
	AssessmentID     string           `json:"assessment_id"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	Personas         []PersonaSummary `json:"personas"`
}

// Criterion is a WCAG success criterion from the reference table.
type Criterion struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Level    string   `json:"level"`
	Versions []string `json:"versions,omitempty"`
}

// ConformanceSuggestion is the classifier output for one criterion. Warning is
// non-fatal advisory text, carried through to stream events.
type ConformanceSuggestion struct {
	Conformance     Conformance `json:"conformance"`
	Remarks         string      `json:"remarks"`
	RelatedIssueIDs []string    `json:"related_issue_ids,omitempty"`
	RelatedURLs     []string    `json:"related_urls,omitempty"`
	Warning         string      `json:"warning,omitempty"`
}

// DraftRow is the persisted draft state for one (vpat, criterion) pair.
type DraftRow struct {
	VPATID          string       `json:"vpatId"`
	CriterionID     string       `json:"criterionId"`
	Conformance     *Conformance `json:"conformance"`
	Remarks         string       `json:"remarks"`
	RelatedIssueIDs []string     `json:"relatedIssueIds,omitempty"`
	RelatedURLs     []string     `json:"relatedUrls,omitempty"`
	GeneratedAt     *time.Time   `json:"generatedAt,omitempty"`
	GeneratedBy     string       `json:"generatedBy,omitempty"`
}

// Filled reports whether the row holds content that generation must not
// overwrite.
func (r DraftRow) Filled() bool {
	return r.Conformance != nil || r.Remarks != ""
}

// BatchEvent types.
const (
	EventStart = "start"
	EventRow   = "row"
	EventSkip  = "skip"
	EventError = "error"
	EventDone  = "done"
)

// RowStatus describes how a row event was persisted.
type RowStatus string

const (
	RowUpdated  RowStatus = "UPDATED"
	RowInserted RowStatus = "INSERTED"
)

// BatchEvent is one tagged progress frame on the batch stream. Fields are
// populated per Type; consumers switch on Type and ignore absent fields.
type BatchEvent struct {
	Type        string    `json:"type"`
	VPATID      string    `json:"vpatId,omitempty"`
	Total       int       `json:"total,omitempty"`
	CriterionID string    `json:"criterionId,omitempty"`
	Status      RowStatus `json:"status,omitempty"`
	Row         *DraftRow `json:"row,omitempty"`
	Warning     string    `json:"warning,omitempty"`
	Message     string    `json:"message,omitempty"`
}
