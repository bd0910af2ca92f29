package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

type proposalRepo struct{ db *gorm.DB }

func (r *proposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *proposalRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *proposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error) {
	out := []models.Proposal{}
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *proposalRepo) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]models.Proposal, error) {
	out := []models.Proposal{}
	if len(projectIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *proposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	out := []models.Proposal{}
	err := r.db.WithContext(ctx).
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *proposalRepo) FindActive(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND freelancer_id = ? AND status IN ?", projectID, freelancerID, models.ActiveProposalStatuses).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *proposalRepo) UpdateIfStatus(ctx context.Context, p *models.Proposal, expected ...models.ProposalStatus) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status IN ?", p.ID, expected).
		Updates(map[string]interface{}{
			"status":          p.Status,
			"content":         p.Content,
			"bid":             p.Bid,
			"client_id":       p.ClientID,
			"accepted_at":     p.AcceptedAt,
			"completed_at":    p.CompletedAt,
			"updated_at":      p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Proposal{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStateConflict
	}
	return nil
}

func (r *proposalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Proposal{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *proposalRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Proposal{})
	return res.RowsAffected, res.Error
}

func (r *proposalRepo) DeleteOrphaned(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM proposals
		WHERE NOT EXISTS (SELECT 1 FROM projects WHERE projects.id = proposals.project_id)`)
	return res.RowsAffected, res.Error
}

func (r *proposalRepo) SetFreelancerName(ctx context.Context, freelancerID uuid.UUID, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("freelancer_id = ? AND freelancer_name IS DISTINCT FROM ?", freelancerID, name).
		Update("freelancer_name", name)
	return res.RowsAffected, res.Error
}

func (r *proposalRepo) SyncFreelancerNames(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE proposals p
		SET freelancer_name = f.display_name
		FROM freelancer_profiles f
		WHERE f.user_id = p.freelancer_id
		  AND f.display_name <> ''
		  AND p.freelancer_name IS DISTINCT FROM f.display_name`)
	return res.RowsAffected, res.Error
}
