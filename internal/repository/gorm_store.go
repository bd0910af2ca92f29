package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

// GormStore is the postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Users() UserRepository                 { return &userRepo{db: s.DB} }
func (s *GormStore) Profiles() ProfileRepository           { return &profileRepo{db: s.DB} }
func (s *GormStore) Projects() ProjectRepository           { return &projectRepo{db: s.DB} }
func (s *GormStore) Proposals() ProposalRepository         { return &proposalRepo{db: s.DB} }
func (s *GormStore) Reviews() ReviewRepository             { return &reviewRepo{db: s.DB} }
func (s *GormStore) Notifications() NotificationRepository { return &notificationRepo{db: s.DB} }

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

// translate maps gorm sentinels onto repository ones.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type userRepo struct{ db *gorm.DB }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

type profileRepo struct{ db *gorm.DB }

func (r *profileRepo) FindClient(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error) {
	var p models.ClientProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *profileRepo) FindFreelancer(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *profileRepo) FindClients(ctx context.Context, userIDs []uuid.UUID) ([]models.ClientProfile, error) {
	out := []models.ClientProfile{}
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}

func (r *profileRepo) FindFreelancers(ctx context.Context, userIDs []uuid.UUID) ([]models.FreelancerProfile, error) {
	out := []models.FreelancerProfile{}
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}

func (r *profileRepo) SaveClient(ctx context.Context, p *models.ClientProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *profileRepo) SaveFreelancer(ctx context.Context, p *models.FreelancerProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
