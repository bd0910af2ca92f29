package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	t, done, err := r.s.begin("reviews.create")
	if err != nil {
		return err
	}
	defer done()

	for _, other := range t.reviews {
		if other.ProjectID == rv.ProjectID {
			return repository.ErrDuplicate
		}
	}
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	now := r.s.now()
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = now
	}
	rv.UpdatedAt = now
	t.reviews[rv.ID] = *rv
	t.stamp(rv.ID)
	return nil
}

func (r reviewRepo) FindByProject(ctx context.Context, projectID uuid.UUID) (*models.Review, error) {
	t, done, err := r.s.begin("reviews.find_by_project")
	if err != nil {
		return nil, err
	}
	defer done()

	for _, rv := range t.reviews {
		if rv.ProjectID == projectID {
			return &rv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r reviewRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Review, error) {
	t, done, err := r.s.begin("reviews.list_by_freelancer")
	if err != nil {
		return nil, err
	}
	defer done()

	out := []models.Review{}
	for _, rv := range t.reviews {
		if rv.FreelancerID == freelancerID {
			out = append(out, rv)
		}
	}
	sortNewest(t, out,
		func(rv models.Review) time.Time { return rv.CreatedAt },
		func(rv models.Review) uuid.UUID { return rv.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r reviewRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	t, done, err := r.s.begin("reviews.delete_by_project")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, rv := range t.reviews {
		if rv.ProjectID == projectID {
			delete(t.reviews, id)
			n++
		}
	}
	return n, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	t, done, err := r.s.begin("notifications.create")
	if err != nil {
		return err
	}
	defer done()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	t.notifications[n.ID] = *n
	t.stamp(n.ID)
	return nil
}

func (r notificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	t, done, err := r.s.begin("notifications.list_for_user")
	if err != nil {
		return nil, err
	}
	defer done()

	out := []models.Notification{}
	for _, n := range t.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sortNewest(t, out,
		func(n models.Notification) time.Time { return n.CreatedAt },
		func(n models.Notification) uuid.UUID { return n.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	t, done, err := r.s.begin("notifications.count_unread")
	if err != nil {
		return 0, err
	}
	defer done()

	var c int64
	for _, n := range t.notifications {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	t, done, err := r.s.begin("notifications.mark_read")
	if err != nil {
		return err
	}
	defer done()

	n, ok := t.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	t.notifications[id] = n
	return nil
}

func (r notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	t, done, err := r.s.begin("notifications.mark_all_read")
	if err != nil {
		return 0, err
	}
	defer done()

	var c int64
	for id, n := range t.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			stamp := at
			n.ReadAt = &stamp
			t.notifications[id] = n
			c++
		}
	}
	return c, nil
}
