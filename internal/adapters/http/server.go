package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"vpatgen/internal/domain"
	"vpatgen/internal/ports"
	reportsvc "vpatgen/internal/services/report"
)

// Server exposes the report and batch-generation cores over HTTP. Handlers
// stay thin: parse, call the service, map the error. Ownership checks and
// authentication live in front of this server.
type Server struct {
	reports ports.ReportGenerator
	batch   ports.BatchRunner
	log     *zap.Logger
}

func New(reports ports.ReportGenerator, batch ports.BatchRunner, log *zap.Logger) *Server {
	return &Server{reports: reports, batch: batch, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.getHealthz)
	r.Post("/assessments/{id}/report", s.postReport)
	r.Post("/vpats/{id}/generate", s.postGenerate)
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) postReport(w http.ResponseWriter, r *http.Request) {
	var in domain.AssessmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.ID = chi.URLParam(r, "id")

	var (
		rep *domain.Report
		err error
	)
	if r.URL.Query().Get("mode") == "master" {
		rep, err = s.reports.GenerateMaster(r.Context(), in)
	} else {
		rep, err = s.reports.GeneratePersonas(r.Context(), in)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type generateRequest struct {
	CriterionIDs []string `json:"criterionIds"`
}

func (s *Server) postGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CriterionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "criterionIds is required")
		return
	}
	vpatID := chi.URLParam(r, "id")

	events := s.batch.Run(r.Context(), vpatID, req.CriterionIDs)
	streamEvents(w, events)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		ve  *reportsvc.ValidationError
		te  *ports.TransportError
		je  *ports.InvalidJSONError
		cfg *ports.ConfigurationError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.As(err, &te), errors.As(err, &je):
		s.log.Error("generation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "report generation failed, try again later")
	case errors.As(err, &cfg):
		s.log.Error("generation misconfigured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "service not configured")
	default:
		s.log.Error("generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
