package httpadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vpatgen/internal/domain"
	"vpatgen/internal/ports"
	reportsvc "vpatgen/internal/services/report"
)

type stubReports struct {
	rep *domain.Report
	err error
}

func (s *stubReports) GenerateMaster(context.Context, domain.AssessmentInput) (*domain.Report, error) {
	return s.rep, s.err
}

func (s *stubReports) GeneratePersonas(context.Context, domain.AssessmentInput) (*domain.Report, error) {
	return s.rep, s.err
}

type stubBatch struct {
	events []domain.BatchEvent
}

func (s *stubBatch) Run(context.Context, string, []string) <-chan domain.BatchEvent {
	ch := make(chan domain.BatchEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestPostReportValidationFailureMapsTo422(t *testing.T) {
	srv := New(&stubReports{err: &reportsvc.ValidationError{Field: "executive_summary.overview", Constraint: "121 words, limit 120"}}, &stubBatch{}, zap.NewNop())

	rec := do(t, srv, http.MethodPost, "/assessments/a-1/report", `{"name":"audit"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "executive_summary.overview")
}

func TestPostReportTransportFailureMapsTo502(t *testing.T) {
	srv := New(&stubReports{err: &ports.TransportError{Attempts: 3, Err: context.DeadlineExceeded}}, &stubBatch{}, zap.NewNop())

	rec := do(t, srv, http.MethodPost, "/assessments/a-1/report", `{"name":"audit"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again later")
}

func TestPostReportSuccess(t *testing.T) {
	rep := &domain.Report{AssessmentID: "a-1"}
	srv := New(&stubReports{rep: rep}, &stubBatch{}, zap.NewNop())

	rec := do(t, srv, http.MethodPost, "/assessments/a-1/report?mode=master", `{"name":"audit"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"assessment_id":"a-1"`)
}

func TestPostGenerateStreams(t *testing.T) {
	batch := &stubBatch{events: []domain.BatchEvent{
		{Type: domain.EventStart, VPATID: "v1", Total: 1},
		{Type: domain.EventDone},
	}}
	srv := New(&stubReports{}, batch, zap.NewNop())

	rec := do(t, srv, http.MethodPost, "/vpats/v1/generate", `{"criterionIds":["1.4.3"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"type":"start"`)
	assert.Contains(t, rec.Body.String(), `"type":"done"`)
}

func TestPostGenerateRequiresCriteria(t *testing.T) {
	srv := New(&stubReports{}, &stubBatch{}, zap.NewNop())

	rec := do(t, srv, http.MethodPost, "/vpats/v1/generate", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
