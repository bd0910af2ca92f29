// Package notify records user notifications and pushes them to connected
// clients. Delivery is best effort: callers are never failed by it.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/metrics"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

const defaultListLimit = 50

// Publisher pushes a payload to the given users' live connections.
type Publisher interface {
	Publish(ctx context.Context, recipients []uuid.UUID, v interface{}) error
}

type Message struct {
	Recipient uuid.UUID
	Kind      models.NotificationKind
	Title     string
	Body      string
	Payload   map[string]interface{}
}

type Service struct {
	store repository.Store
	pub   Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, pub Publisher, log *zap.Logger) *Service {
	return &Service{store: store, pub: pub, log: log, now: time.Now}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Notify persists m and pushes it live. Failures are logged and counted.
func (s *Service) Notify(ctx context.Context, m Message) {
	if m.Recipient == uuid.Nil {
		return
	}
	log := s.log.With(zap.String("user_id", m.Recipient.String()), zap.String("kind", string(m.Kind)))

	payload, err := json.Marshal(m.Payload)
	if err != nil {
		log.Warn("encode notification payload", zap.Error(err))
		payload = []byte("{}")
	}

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    m.Recipient,
		Kind:      m.Kind,
		Title:     m.Title,
		Message:   m.Body,
		Payload:   datatypes.JSON(payload),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		log.Warn("store notification", zap.Error(err))
		metrics.RecordNotification(string(m.Kind), "failed")
		return
	}
	metrics.RecordNotification(string(m.Kind), "stored")

	if s.pub == nil {
		return
	}
	ev := realtime.Event{
		Type:      "notification",
		Entity:    "notification",
		ID:        n.ID,
		UpdatedAt: n.CreatedAt,
		Data:      n,
	}
	if err := s.pub.Publish(ctx, []uuid.UUID{m.Recipient}, ev); err != nil {
		log.Warn("push notification", zap.Error(err))
		metrics.RecordNotification(string(m.Kind), "push_failed")
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	items, err := s.store.Notifications().ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not load notifications")
	}
	return items, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Unavailable(err, "Could not load notifications")
	}
	return n, nil
}

// MarkRead marks one of the user's notifications as read. Notifications of
// other users are reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	err := s.store.Notifications().MarkRead(ctx, userID, id, s.now().UTC())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Notification not found")
	}
	return apperr.Unavailable(err, "Could not update notification")
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.store.Notifications().MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, apperr.Unavailable(err, "Could not update notifications")
	}
	return n, nil
}
