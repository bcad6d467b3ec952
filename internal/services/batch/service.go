// Package batch drives VPAT draft generation over a list of target criteria,
// one at a time, emitting a progress event per item on a stream the transport
// layer frames. Items are processed sequentially to bound pressure on the
// model endpoint and keep events orderable.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vpatgen/internal/domain"
	"vpatgen/internal/ports"
	"vpatgen/internal/services/classifier"
)

// doneGrace bounds how long the terminal done event waits for a consumer that
// has already gone away.
const doneGrace = 100 * time.Millisecond

// PerItemError wraps a single criterion's failure. It is reported inline on
// the stream and never aborts the remaining items.
type PerItemError struct {
	CriterionID string
	Err         error
}

func (e *PerItemError) Error() string {
	return fmt.Sprintf("criterion %s: %v", e.CriterionID, e.Err)
}

func (e *PerItemError) Unwrap() error { return e.Err }

// Service coordinates one batch run per call to Run.
type Service struct {
	criteria ports.CriterionProvider
	issues   ports.IssueProvider
	drafts   ports.DraftRowStore
	log      *zap.Logger
	now      func() time.Time
}

func New(criteria ports.CriterionProvider, issues ports.IssueProvider, drafts ports.DraftRowStore, log *zap.Logger) *Service {
	return &Service{criteria: criteria, issues: issues, drafts: drafts, log: log, now: time.Now}
}

// Run starts a batch over criterionIDs and returns the event stream. The
// channel is closed after the terminal done event. Cancelling ctx stops
// further work between items; done is still emitted while the consumer is
// draining.
func (s *Service) Run(ctx context.Context, vpatID string, criterionIDs []string) <-chan domain.BatchEvent {
	events := make(chan domain.BatchEvent)
	go s.run(ctx, vpatID, criterionIDs, events)
	return events
}

func (s *Service) run(ctx context.Context, vpatID string, criterionIDs []string, events chan<- domain.BatchEvent) {
	defer close(events)

	runID := uuid.NewString()
	log := s.log.With(zap.String("run", runID), zap.String("vpat", vpatID))

	// emit delivers an event unless the consumer is gone; a false return
	// means the stream is dead and nothing more should be attempted.
	emit := func(ev domain.BatchEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// The terminal event is still delivered to a consumer draining after
	// cancellation; the timeout covers a consumer that is simply gone.
	defer func() {
		select {
		case events <- domain.BatchEvent{Type: domain.EventDone}:
		case <-time.After(doneGrace):
		}
	}()

	if !emit(domain.BatchEvent{Type: domain.EventStart, VPATID: vpatID, Total: len(criterionIDs)}) {
		return
	}

	issues, err := s.issues.OpenIssuesForVPAT(ctx, vpatID)
	if err != nil {
		log.Error("issue lookup failed", zap.Error(err))
		emit(domain.BatchEvent{Type: domain.EventError, Message: fmt.Sprintf("load issues: %v", err)})
		return
	}

	for _, cid := range criterionIDs {
		if ctx.Err() != nil {
			break
		}
		ev := s.processOne(ctx, vpatID, cid, issues, runID)
		if ev.Type == domain.EventError {
			log.Warn("criterion failed", zap.String("criterion", cid), zap.String("message", ev.Message))
		} else {
			log.Info("criterion processed", zap.String("criterion", cid), zap.String("event", ev.Type), zap.String("status", string(ev.Status)))
		}
		if !emit(ev) {
			break
		}
	}
}

// processOne runs the per-criterion state machine: classify, guard, fill.
// Every failure collapses into a single error event for this criterion.
func (s *Service) processOne(ctx context.Context, vpatID, criterionID string, issues []domain.IssueRecord, runID string) domain.BatchEvent {
	fail := func(err error) domain.BatchEvent {
		item := &PerItemError{CriterionID: criterionID, Err: err}
		return domain.BatchEvent{Type: domain.EventError, CriterionID: criterionID, Message: item.Error()}
	}

	criterion, err := s.criteria.CriterionByID(ctx, criterionID)
	if err != nil {
		return fail(fmt.Errorf("resolve criterion: %w", err))
	}

	sugg := classifier.Suggest(criterion, issues)

	existing, found, err := s.drafts.Get(ctx, vpatID, criterionID)
	if err != nil {
		return fail(fmt.Errorf("load draft row: %w", err))
	}
	if found && existing.Filled() {
		return domain.BatchEvent{
			Type:        domain.EventSkip,
			CriterionID: criterionID,
			Row:         &existing,
			Warning:     sugg.Warning,
		}
	}

	now := s.now().UTC()
	conformance := sugg.Conformance
	row := domain.DraftRow{
		VPATID:          vpatID,
		CriterionID:     criterionID,
		Conformance:     &conformance,
		Remarks:         sugg.Remarks,
		RelatedIssueIDs: sugg.RelatedIssueIDs,
		RelatedURLs:     sugg.RelatedURLs,
		GeneratedAt:     &now,
		GeneratedBy:     "auto:" + runID,
	}

	status := domain.RowUpdated
	filled, err := s.drafts.FillIfEmpty(ctx, row)
	if err != nil {
		return fail(fmt.Errorf("fill draft row: %w", err))
	}
	if !filled {
		// Row absent, or a concurrent writer won the fill. Insert is a no-op
		// on conflict either way.
		if err := s.drafts.InsertIgnore(ctx, row); err != nil {
			return fail(fmt.Errorf("insert draft row: %w", err))
		}
		status = domain.RowInserted
	}

	final, _, err := s.drafts.Get(ctx, vpatID, criterionID)
	if err != nil {
		return fail(fmt.Errorf("reload draft row: %w", err))
	}

	return domain.BatchEvent{
		Type:        domain.EventRow,
		CriterionID: criterionID,
		Status:      status,
		Row:         &final,
		Warning:     sugg.Warning,
	}
}
