package ports

import (
	"context"
	"encoding/json"

	"vpatgen/internal/domain"
)

// InvokeRequest is one system+user prompt pair sent to the model endpoint.
// Temperature zero means the client default.
type InvokeRequest struct {
	System      string
	User        string
	Temperature float64
}

// TokenUsage mirrors the endpoint's usage block. Observability only; never
// gates success or failure.
type TokenUsage struct {
	Prompt     int64
	Completion int64
	Total      int64
}

// Completion is the parsed result of one model call. JSON is guaranteed valid
// (possibly after repair); Raw is the untouched response text.
type Completion struct {
	JSON  json.RawMessage
	Raw   string
	Usage TokenUsage
}

// ModelInvoker sends a prompt pair to the LLM endpoint in JSON mode.
type ModelInvoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (*Completion, error)
}

// ReportGenerator produces assembled reports from assessment input.
type ReportGenerator interface {
	GenerateMaster(ctx context.Context, in domain.AssessmentInput) (*domain.Report, error)
	GeneratePersonas(ctx context.Context, in domain.AssessmentInput) (*domain.Report, error)
}

// BatchRunner drives one batch generation run and streams its progress. The
// returned channel closes after the terminal done event.
type BatchRunner interface {
	Run(ctx context.Context, vpatID string, criterionIDs []string) <-chan domain.BatchEvent
}

// IssueProvider returns open issues scoped to the assessment a VPAT belongs
// to, with severity and WCAG criterion associations attached.
type IssueProvider interface {
	OpenIssuesForVPAT(ctx context.Context, vpatID string) ([]domain.IssueRecord, error)
}

// CriterionProvider resolves WCAG success criteria from the reference table.
type CriterionProvider interface {
	CriterionByID(ctx context.Context, id string) (domain.Criterion, error)
	CriterionByCode(ctx context.Context, code string) (domain.Criterion, error)
}

// DraftRowStore persists VPAT draft rows keyed by (vpat id, criterion id).
//
// FillIfEmpty is a conditional update restricted to rows with no content; it
// reports whether a row was filled. InsertIgnore is a no-op when the row
// already exists. Together they give best-effort no-overwrite semantics with
// no row locks: under concurrent writers at most one fill wins.
type DraftRowStore interface {
	Get(ctx context.Context, vpatID, criterionID string) (domain.DraftRow, bool, error)
	FillIfEmpty(ctx context.Context, row domain.DraftRow) (bool, error)
	InsertIgnore(ctx context.Context, row domain.DraftRow) error
}
