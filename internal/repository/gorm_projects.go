package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

type projectRepo struct{ db *gorm.DB }

func (r *projectRepo) Create(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *projectRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *projectRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Project, error) {
	out := []models.Project{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *projectRepo) ListByClient(ctx context.Context, clientID uuid.UUID, newestFirst bool) ([]models.Project, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	out := []models.Project{}
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order(order).
		Find(&out).Error
	return out, err
}

func (r *projectRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	out := []models.Project{}
	err := r.db.WithContext(ctx).
		Where("freelancer_id = ?", freelancerID).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}

func (r *projectRepo) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if f.Skill != "" {
		needle, _ := json.Marshal([]string{f.Skill})
		q = q.Where("skills @> ?::jsonb", string(needle))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	out := []models.Project{}
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *projectRepo) UpdateIfStatus(ctx context.Context, p *models.Project, expected ...models.ProjectStatus) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND status IN ?", p.ID, expected).
		Updates(map[string]interface{}{
			"title":                p.Title,
			"description":          p.Description,
			"budget":               p.Budget,
			"duration":             p.Duration,
			"skills":               p.Skills,
			"visibility":           p.Visibility,
			"status":               p.Status,
			"freelancer_id":        p.FreelancerID,
			"accepted_proposal_id": p.AcceptedProposalID,
			"completed_at":         p.CompletedAt,
			"updated_at":           p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOrConflict(ctx, p.ID)
	}
	return nil
}

func (r *projectRepo) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStateConflict
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) SetClientName(ctx context.Context, clientID uuid.UUID, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("client_id = ? AND client_name IS DISTINCT FROM ?", clientID, name).
		Update("client_name", name)
	return res.RowsAffected, res.Error
}

func (r *projectRepo) SyncClientNames(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE projects p
		SET client_name = c.display_name
		FROM client_profiles c
		WHERE c.user_id = p.client_id
		  AND c.display_name <> ''
		  AND p.client_name IS DISTINCT FROM c.display_name`)
	return res.RowsAffected, res.Error
}
