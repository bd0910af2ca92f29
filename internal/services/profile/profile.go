// Package profile edits client and freelancer profiles. The display name is
// copied onto proposals and projects for listing, so an edit rewrites those
// copies in the same transaction.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

const msgUnavailable = "Could not save your profile, please try again"

type Service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

type ClientInput struct {
	DisplayName  string `json:"display_name" validate:"required,max=120"`
	CompanyName  string `json:"company_name" validate:"max=160"`
	PhotoURL     string `json:"photo_url" validate:"omitempty,url"`
	Industry     string `json:"industry" validate:"max=120"`
	Location     string `json:"location" validate:"max=120"`
	About        string `json:"about" validate:"max=4000"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,min=8,max=30"`
}

type FreelancerInput struct {
	DisplayName  string   `json:"display_name" validate:"required,max=120"`
	PhotoURL     string   `json:"photo_url" validate:"omitempty,url"`
	University   string   `json:"university" validate:"max=160"`
	Major        string   `json:"major" validate:"max=120"`
	StudyYear    int      `json:"study_year" validate:"min=0,max=10"`
	About        string   `json:"about" validate:"max=4000"`
	Skills       []string `json:"skills" validate:"max=30,dive,required,max=60"`
	PortfolioURL string   `json:"portfolio_url" validate:"omitempty,url"`
	HourlyRate   *int64   `json:"hourly_rate" validate:"omitempty,min=0"`
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Unavailable(err, "Could not load the profile, please try again")
}

func (s *Service) GetClient(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error) {
	p, err := s.store.Profiles().FindClient(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Client profile not found")
	}
	return p, nil
}

func (s *Service) GetFreelancer(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	p, err := s.store.Profiles().FindFreelancer(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Freelancer profile not found")
	}
	return p, nil
}

// UpdateClient saves the caller's client profile, creating it if needed, and
// refreshes the client name stored on their projects.
func (s *Service) UpdateClient(ctx context.Context, actor models.Principal, in ClientInput) (*models.ClientProfile, error) {
	if !actor.IsClient() {
		return nil, apperr.PermissionDenied("Only clients have a client profile")
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := utils.Validate(&in); err != nil {
		return nil, err
	}

	var (
		out     *models.ClientProfile
		renamed int64
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Profiles().FindClient(ctx, actor.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			p = &models.ClientProfile{ID: uuid.New(), UserID: actor.UserID, CreatedAt: s.now().UTC()}
		case err != nil:
			return err
		}

		p.DisplayName = in.DisplayName
		p.CompanyName = strings.TrimSpace(in.CompanyName)
		p.PhotoURL = in.PhotoURL
		p.Industry = strings.TrimSpace(in.Industry)
		p.Location = strings.TrimSpace(in.Location)
		p.About = in.About
		p.ContactPhone = strings.TrimSpace(in.ContactPhone)
		p.UpdatedAt = s.now().UTC()
		if err := tx.Profiles().SaveClient(ctx, p); err != nil {
			return err
		}

		renamed, err = tx.Projects().SetClientName(ctx, actor.UserID, p.DisplayName)
		out = p
		return err
	})
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	if renamed > 0 {
		s.log.Info("client name propagated",
			zap.String("user_id", actor.UserID.String()), zap.Int64("projects", renamed))
	}
	return out, nil
}

// UpdateFreelancer saves the caller's freelancer profile and refreshes the
// name snapshot on their proposals.
func (s *Service) UpdateFreelancer(ctx context.Context, actor models.Principal, in FreelancerInput) (*models.FreelancerProfile, error) {
	if !actor.IsFreelancer() {
		return nil, apperr.PermissionDenied("Only freelancers have a freelancer profile")
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := utils.Validate(&in); err != nil {
		return nil, err
	}

	var (
		out     *models.FreelancerProfile
		renamed int64
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.Profiles().FindFreelancer(ctx, actor.UserID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			p = &models.FreelancerProfile{ID: uuid.New(), UserID: actor.UserID, CreatedAt: s.now().UTC()}
		case err != nil:
			return err
		}

		p.DisplayName = in.DisplayName
		p.PhotoURL = in.PhotoURL
		p.University = strings.TrimSpace(in.University)
		p.Major = strings.TrimSpace(in.Major)
		p.StudyYear = in.StudyYear
		p.About = in.About
		p.Skills = trimAll(in.Skills)
		p.PortfolioURL = in.PortfolioURL
		p.HourlyRate = in.HourlyRate
		p.UpdatedAt = s.now().UTC()
		if err := tx.Profiles().SaveFreelancer(ctx, p); err != nil {
			return err
		}

		renamed, err = tx.Proposals().SetFreelancerName(ctx, actor.UserID, p.DisplayName)
		out = p
		return err
	})
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	if renamed > 0 {
		s.log.Info("freelancer name propagated",
			zap.String("user_id", actor.UserID.String()), zap.Int64("proposals", renamed))
	}
	return out, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
