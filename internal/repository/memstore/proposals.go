package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

type proposalRepo struct{ s *Store }

func (r proposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	t, done, err := r.s.begin("proposals.create")
	if err != nil {
		return err
	}
	defer done()

	// Mirrors the partial unique index on (project_id, freelancer_id).
	if p.Status.IsActive() {
		for _, other := range t.proposals {
			if other.ProjectID == p.ProjectID && other.FreelancerID == p.FreelancerID && other.Status.IsActive() {
				return repository.ErrDuplicate
			}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	t.proposals[p.ID] = *p
	t.stamp(p.ID)
	return nil
}

func (r proposalRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	t, done, err := r.s.begin("proposals.find_by_id")
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := t.proposals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r proposalRepo) collect(t *tables, keep func(models.Proposal) bool) []models.Proposal {
	out := []models.Proposal{}
	for _, p := range t.proposals {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortNewest(t, out,
		func(p models.Proposal) time.Time { return p.CreatedAt },
		func(p models.Proposal) uuid.UUID { return p.ID })
	return out
}

func (r proposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	t, done, err := r.s.begin("proposals.list_by_project")
	if err != nil {
		return nil, err
	}
	defer done()

	return r.collect(t, func(p models.Proposal) bool { return p.ProjectID == projectID }), nil
}

func (r proposalRepo) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]models.Proposal, error) {
	t, done, err := r.s.begin("proposals.list_by_projects")
	if err != nil {
		return nil, err
	}
	defer done()

	return r.collect(t, func(p models.Proposal) bool { return contains(projectIDs, p.ProjectID) }), nil
}

func (r proposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	t, done, err := r.s.begin("proposals.list_by_freelancer")
	if err != nil {
		return nil, err
	}
	defer done()

	return r.collect(t, func(p models.Proposal) bool { return p.FreelancerID == freelancerID }), nil
}

func (r proposalRepo) FindActive(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error) {
	t, done, err := r.s.begin("proposals.find_active")
	if err != nil {
		return nil, err
	}
	defer done()

	for _, p := range t.proposals {
		if p.ProjectID == projectID && p.FreelancerID == freelancerID && p.Status.IsActive() {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r proposalRepo) UpdateIfStatus(ctx context.Context, p *models.Proposal, expected ...models.ProposalStatus) error {
	t, done, err := r.s.begin("proposals.update_if_status")
	if err != nil {
		return err
	}
	defer done()

	cur, ok := t.proposals[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !contains(expected, cur.Status) {
		return repository.ErrStateConflict
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = r.s.now()
	}
	next := *p
	next.ProjectID = cur.ProjectID
	next.FreelancerID = cur.FreelancerID
	next.FreelancerName = cur.FreelancerName
	next.CreatedAt = cur.CreatedAt
	t.proposals[p.ID] = next
	return nil
}

func (r proposalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	t, done, err := r.s.begin("proposals.delete")
	if err != nil {
		return err
	}
	defer done()

	if _, ok := t.proposals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.proposals, id)
	return nil
}

func (r proposalRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	t, done, err := r.s.begin("proposals.delete_by_project")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.proposals {
		if p.ProjectID == projectID {
			delete(t.proposals, id)
			n++
		}
	}
	return n, nil
}

func (r proposalRepo) DeleteOrphaned(ctx context.Context) (int64, error) {
	t, done, err := r.s.begin("proposals.delete_orphaned")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.proposals {
		if _, ok := t.projects[p.ProjectID]; !ok {
			delete(t.proposals, id)
			n++
		}
	}
	return n, nil
}

func (r proposalRepo) SetFreelancerName(ctx context.Context, freelancerID uuid.UUID, name string) (int64, error) {
	t, done, err := r.s.begin("proposals.set_freelancer_name")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.proposals {
		if p.FreelancerID == freelancerID && p.FreelancerName != name {
			p.FreelancerName = name
			t.proposals[id] = p
			n++
		}
	}
	return n, nil
}

func (r proposalRepo) SyncFreelancerNames(ctx context.Context) (int64, error) {
	t, done, err := r.s.begin("proposals.sync_freelancer_names")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.proposals {
		prof, ok := t.freelancers[p.FreelancerID]
		if !ok || prof.DisplayName == "" || prof.DisplayName == p.FreelancerName {
			continue
		}
		p.FreelancerName = prof.DisplayName
		t.proposals[id] = p
		n++
	}
	return n, nil
}
