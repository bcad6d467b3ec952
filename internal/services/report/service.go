// Package report generates assembled accessibility reports: one master call
// for the executive summary plus six concurrent persona calls, validated and
// reassembled in canonical persona order.
package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vpatgen/internal/domain"
	"vpatgen/internal/ports"
	"vpatgen/internal/services/prompts"
)

// Service orchestrates model calls into reports.
type Service struct {
	invoker ports.ModelInvoker
	log     *zap.Logger
}

func New(invoker ports.ModelInvoker, log *zap.Logger) *Service {
	return &Service{invoker: invoker, log: log}
}

// GenerateMaster asks the model for the complete report in a single call and
// validates it strictly. Persona summaries are re-sorted into canonical order.
func (s *Service) GenerateMaster(ctx context.Context, in domain.AssessmentInput) (*domain.Report, error) {
	pair := prompts.Master(in)
	comp, err := s.invoker.Invoke(ctx, ports.InvokeRequest{System: pair.System, User: pair.User})
	if err != nil {
		return nil, fmt.Errorf("master call: %w", err)
	}
	rep, err := ValidateReport(comp.JSON, RequireAllPersonas)
	if err != nil {
		return nil, err
	}
	rep.AssessmentID = in.ID
	sortPersonas(rep)
	return rep, nil
}

// GeneratePersonas fans out one persona call per canonical persona plus one
// master call that only contributes its executive summary. The whole request
// fails if any call fails: a report missing a persona is unpublishable.
func (s *Service) GeneratePersonas(ctx context.Context, in domain.AssessmentInput) (*domain.Report, error) {
	var exec domain.ExecutiveSummary
	summaries := make([]domain.PersonaSummary, len(domain.AllPersonas))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pair := prompts.Master(in)
		comp, err := s.invoker.Invoke(gctx, ports.InvokeRequest{System: pair.System, User: pair.User})
		if err != nil {
			return fmt.Errorf("master call: %w", err)
		}
		rep, err := ValidateReport(comp.JSON, ExecutiveOnly)
		if err != nil {
			return err
		}
		exec = rep.ExecutiveSummary
		return nil
	})

	for i, p := range domain.AllPersonas {
		g.Go(func() error {
			ps, err := s.generatePersona(gctx, in, p)
			if err != nil {
				return fmt.Errorf("persona %s: %w", p, err)
			}
			summaries[i] = *ps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Warn("persona fan-out failed", zap.String("assessment", in.ID), zap.Error(err))
		return nil, err
	}

	// summaries is already in canonical order: each goroutine wrote its own
	// canonical index, independent of completion order.
	return &domain.Report{
		AssessmentID:     in.ID,
		ExecutiveSummary: exec,
		Personas:         summaries,
	}, nil
}

func (s *Service) generatePersona(ctx context.Context, in domain.AssessmentInput, p domain.Persona) (*domain.PersonaSummary, error) {
	pair := prompts.Persona(in, p)
	comp, err := s.invoker.Invoke(ctx, ports.InvokeRequest{System: pair.System, User: pair.User})
	if err != nil {
		return nil, err
	}
	return ValidatePersonaSummary(comp.JSON, p)
}

// sortPersonas orders summaries by canonical persona index. Validation has
// already rejected unknown personas.
func sortPersonas(rep *domain.Report) {
	ordered := make([]domain.PersonaSummary, 0, len(rep.Personas))
	byPersona := make(map[domain.Persona]domain.PersonaSummary, len(rep.Personas))
	for _, ps := range rep.Personas {
		byPersona[ps.Persona] = ps
	}
	for _, p := range domain.AllPersonas {
		if ps, ok := byPersona[p]; ok {
			ordered = append(ordered, ps)
		}
	}
	rep.Personas = ordered
}
