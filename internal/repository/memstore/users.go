package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	t, done, err := r.s.begin("users.create")
	if err != nil {
		return err
	}
	defer done()

	for _, existing := range t.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := r.s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	t.users[u.ID] = *u
	t.stamp(u.ID)
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	t, done, err := r.s.begin("users.find_by_id")
	if err != nil {
		return nil, err
	}
	defer done()

	u, ok := t.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	t, done, err := r.s.begin("users.find_by_email")
	if err != nil {
		return nil, err
	}
	defer done()

	for _, u := range t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type profileRepo struct{ s *Store }

func (r profileRepo) FindClient(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error) {
	t, done, err := r.s.begin("profiles.find_client")
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := t.clients[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r profileRepo) FindFreelancer(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	t, done, err := r.s.begin("profiles.find_freelancer")
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := t.freelancers[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r profileRepo) FindClients(ctx context.Context, userIDs []uuid.UUID) ([]models.ClientProfile, error) {
	t, done, err := r.s.begin("profiles.find_clients")
	if err != nil {
		return nil, err
	}
	defer done()

	out := []models.ClientProfile{}
	for _, id := range userIDs {
		if p, ok := t.clients[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r profileRepo) FindFreelancers(ctx context.Context, userIDs []uuid.UUID) ([]models.FreelancerProfile, error) {
	t, done, err := r.s.begin("profiles.find_freelancers")
	if err != nil {
		return nil, err
	}
	defer done()

	out := []models.FreelancerProfile{}
	for _, id := range userIDs {
		if p, ok := t.freelancers[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r profileRepo) SaveClient(ctx context.Context, p *models.ClientProfile) error {
	t, done, err := r.s.begin("profiles.save_client")
	if err != nil {
		return err
	}
	defer done()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	t.clients[p.UserID] = *p
	return nil
}

func (r profileRepo) SaveFreelancer(ctx context.Context, p *models.FreelancerProfile) error {
	t, done, err := r.s.begin("profiles.save_freelancer")
	if err != nil {
		return err
	}
	defer done()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	t.freelancers[p.UserID] = *p
	return nil
}
