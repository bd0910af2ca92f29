// Package marketplace implements the project and proposal lifecycle: posting
// projects, submitting proposals, and the accept / complete / reject / close
// transitions that move both documents together.
//
// Every multi-document transition runs inside one store transaction and
// re-checks the expected status as part of the write, so a stale view can
// never hire two freelancers for the same project. Notifications and change
// events are emitted only after the transaction commits.
package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/metrics"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
)

// Notifier delivers a notification without reporting failure.
type Notifier interface {
	Notify(ctx context.Context, m notify.Message)
}

// Publisher pushes change events to connected users.
type Publisher interface {
	Publish(ctx context.Context, recipients []uuid.UUID, v interface{}) error
}

type Service struct {
	store    repository.Store
	notifier Notifier
	events   Publisher
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repository.Store, notifier Notifier, events Publisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		events:   events,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

const msgUnavailable = "We could not reach the marketplace right now, please try again"

// fail converts repository errors into apperr kinds. Errors that already
// carry a kind pass through.
func fail(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrStateConflict):
		return apperr.InvalidState("This item was changed by someone else, please refresh and try again")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.InvalidState("This item already exists")
	}
	return apperr.Unavailable(err, msgUnavailable)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrPermissionDenied):
		return "forbidden"
	case errors.Is(err, apperr.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperr.ErrValidation):
		return "invalid_input"
	case errors.Is(err, apperr.ErrUnavailable):
		return "unavailable"
	}
	return "error"
}

// observe records the outcome of op and logs dependency failures.
func (s *Service) observe(op string, err error, fields ...zap.Field) {
	metrics.RecordWorkflow(op, outcome(err))
	if errors.Is(err, apperr.ErrUnavailable) {
		s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	}
}

func (s *Service) notify(ctx context.Context, m notify.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, m)
}

func (s *Service) publishProject(ctx context.Context, p *models.Project) {
	recipients := []uuid.UUID{p.ClientID}
	if p.FreelancerID != nil {
		recipients = append(recipients, *p.FreelancerID)
	}
	s.publish(ctx, recipients, realtime.Event{
		Type:      "project_updated",
		Entity:    "project",
		ID:        p.ID,
		Status:    string(p.Status),
		UpdatedAt: p.UpdatedAt,
		Data:      p,
	})
}

func (s *Service) publishProposal(ctx context.Context, clientID uuid.UUID, p *models.Proposal) {
	s.publish(ctx, []uuid.UUID{clientID, p.FreelancerID}, realtime.Event{
		Type:      "proposal_updated",
		Entity:    "proposal",
		ID:        p.ID,
		Status:    string(p.Status),
		UpdatedAt: p.UpdatedAt,
		Data:      p,
	})
}

func (s *Service) publishRemoved(ctx context.Context, recipients []uuid.UUID, entity string, id uuid.UUID) {
	s.publish(ctx, recipients, realtime.Event{
		Type:      entity + "_deleted",
		Entity:    entity,
		ID:        id,
		UpdatedAt: s.clock(),
	})
}

func (s *Service) publish(ctx context.Context, recipients []uuid.UUID, ev realtime.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, recipients, ev); err != nil {
		s.log.Warn("publish change event",
			zap.String("entity", ev.Entity),
			zap.String("id", ev.ID.String()),
			zap.Error(err))
	}
}
