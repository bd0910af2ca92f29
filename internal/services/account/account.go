// Package account registers users and checks their credentials. Session
// tokens are minted by the HTTP layer from the returned user.
package account

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

var errBadCredentials = apperr.Validation("Wrong email or password", nil)

type Service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

type RegisterInput struct {
	Name     string      `json:"name" validate:"required,max=120"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Phone    string      `json:"phone" validate:"omitempty,min=8,max=30"`
	Role     models.Role `json:"role" validate:"required,oneof=client freelancer"`
}

// Register creates the user and an empty profile for their role in one
// transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = models.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if err := utils.Validate(&in); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not process the password")
	}

	now := s.now().UTC()
	u := &models.User{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  hash,
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("Please check the highlighted fields", map[string][]string{
			"email": {"Email is already registered"},
		})
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not create your account, please try again")
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return u, nil
}

// create inserts u and an empty profile for its role in one transaction.
func (s *Service) create(ctx context.Context, u *models.User) error {
	now := u.CreatedAt
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		if u.Role == models.RoleFreelancer {
			return tx.Profiles().SaveFreelancer(ctx, &models.FreelancerProfile{
				ID: uuid.New(), UserID: u.ID, DisplayName: u.Name, CreatedAt: now, UpdatedAt: now,
			})
		}
		return tx.Profiles().SaveClient(ctx, &models.ClientProfile{
			ID: uuid.New(), UserID: u.ID, DisplayName: u.Name, ContactPhone: u.Phone, CreatedAt: now, UpdatedAt: now,
		})
	})
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login returns the user for valid credentials. Unknown emails and wrong
// passwords get the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.Validate(&in); err != nil {
		return nil, err
	}

	u, err := s.store.Users().FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not sign you in, please try again")
	}
	if !utils.CheckPassword(u.Password, in.Password) {
		return nil, errBadCredentials
	}
	if !u.IsActive {
		return nil, apperr.PermissionDenied("This account is not active")
	}
	return u, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Account not found")
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not load your account")
	}
	return u, nil
}

// Identity is an account asserted by an external sign-in provider.
type Identity struct {
	Provider string
	Email    string
	Name     string
	Verified bool
}

// SignInExternal returns the user owning the identity's email. On first
// sign-in an account with role is created (client when empty); an existing
// account keeps its role. created reports whether a new account was made.
func (s *Service) SignInExternal(ctx context.Context, id Identity, role models.Role) (u *models.User, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" || !id.Verified {
		return nil, false, apperr.Validation("The "+id.Provider+" account has no verified email", nil)
	}
	role = models.Role(strings.ToLower(strings.TrimSpace(string(role))))
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleFreelancer {
		return nil, false, apperr.Validation("Please check the highlighted fields", map[string][]string{
			"role": {"Must be one of: client freelancer"},
		})
	}

	u, err = s.store.Users().FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.IsActive {
			return nil, false, apperr.PermissionDenied("This account is not active")
		}
		return u, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperr.Unavailable(err, "Could not sign you in, please try again")
	}

	// no usable password until the user sets one
	secret, err := utils.RandomToken(24)
	if err != nil {
		return nil, false, apperr.Unavailable(err, "Could not create your account, please try again")
	}
	hash, err := utils.HashPassword(secret)
	if err != nil {
		return nil, false, apperr.Unavailable(err, "Could not process the password")
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := s.now().UTC()
	u = &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		// signed up concurrently; use the account that won
		existing, ferr := s.store.Users().FindByEmail(ctx, email)
		if ferr != nil {
			return nil, false, apperr.Unavailable(ferr, "Could not sign you in, please try again")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, apperr.Unavailable(err, "Could not create your account, please try again")
	}
	s.log.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("provider", id.Provider))
	return u, true, nil
}
