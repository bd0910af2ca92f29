package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

type projectRepo struct{ s *Store }

func (r projectRepo) Create(ctx context.Context, p *models.Project) error {
	t, done, err := r.s.begin("projects.create")
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
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	t.projects[p.ID] = *p
	t.stamp(p.ID)
	return nil
}

func (r projectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	t, done, err := r.s.begin("projects.find_by_id")
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := t.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// The snapshot transaction already serialises writers, so there is no
// separate row lock.
func (r projectRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	t, done, err := r.s.begin("projects.find_by_id_for_update")
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := t.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r projectRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Project, error) {
	t, done, err := r.s.begin("projects.find_by_ids")
	if err != nil {
		return nil, err
	}
	defer done()

	out := []models.Project{}
	for _, id := range ids {
		if p, ok := t.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r projectRepo) collect(t *tables, keep func(models.Project) bool) []models.Project {
	out := []models.Project{}
	for _, p := range t.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortNewest(t, out,
		func(p models.Project) time.Time { return p.CreatedAt },
		func(p models.Project) uuid.UUID { return p.ID })
	return out
}

func (r projectRepo) ListByClient(ctx context.Context, clientID uuid.UUID, newestFirst bool) ([]models.Project, error) {
	t, done, err := r.s.begin("projects.list_by_client")
	if err != nil {
		return nil, err
	}
	defer done()

	out := r.collect(t, func(p models.Project) bool { return p.ClientID == clientID })
	if !newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r projectRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	t, done, err := r.s.begin("projects.list_by_freelancer")
	if err != nil {
		return nil, err
	}
	defer done()

	return r.collect(t, func(p models.Project) bool {
		return p.FreelancerID != nil && *p.FreelancerID == freelancerID
	}), nil
}

func (r projectRepo) List(ctx context.Context, f repository.ProjectFilter) ([]models.Project, error) {
	t, done, err := r.s.begin("projects.list")
	if err != nil {
		return nil, err
	}
	defer done()

	out := r.collect(t, func(p models.Project) bool {
		if len(f.Statuses) > 0 && !contains(f.Statuses, p.Status) {
			return false
		}
		if f.Visibility != "" && p.Visibility != f.Visibility {
			return false
		}
		if f.Skill != "" && !contains([]string(p.Skills), f.Skill) {
			return false
		}
		return true
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Project{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r projectRepo) UpdateIfStatus(ctx context.Context, p *models.Project, expected ...models.ProjectStatus) error {
	t, done, err := r.s.begin("projects.update_if_status")
	if err != nil {
		return err
	}
	defer done()

	cur, ok := t.projects[p.ID]
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
	next.ClientID = cur.ClientID
	next.ClientName = cur.ClientName
	next.CreatedAt = cur.CreatedAt
	t.projects[p.ID] = next
	return nil
}

func (r projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	t, done, err := r.s.begin("projects.delete")
	if err != nil {
		return err
	}
	defer done()

	if _, ok := t.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.projects, id)
	return nil
}

func (r projectRepo) SetClientName(ctx context.Context, clientID uuid.UUID, name string) (int64, error) {
	t, done, err := r.s.begin("projects.set_client_name")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.projects {
		if p.ClientID == clientID && p.ClientName != name {
			p.ClientName = name
			t.projects[id] = p
			n++
		}
	}
	return n, nil
}

func (r projectRepo) SyncClientNames(ctx context.Context) (int64, error) {
	t, done, err := r.s.begin("projects.sync_client_names")
	if err != nil {
		return 0, err
	}
	defer done()

	var n int64
	for id, p := range t.projects {
		prof, ok := t.clients[p.ClientID]
		if !ok || prof.DisplayName == "" || prof.DisplayName == p.ClientName {
			continue
		}
		p.ClientName = prof.DisplayName
		t.projects[id] = p
		n++
	}
	return n, nil
}
