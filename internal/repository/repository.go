// Package repository defines the document-store contracts the services depend
// on, plus a gorm/postgres implementation of them.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")

	// ErrStateConflict is returned by conditional writes when the stored
	// document is no longer in one of the expected statuses.
	ErrStateConflict = errors.New("record state changed")
)

// Store groups the collections and exposes an atomic multi-document write.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Projects() ProjectRepository
	Proposals() ProposalRepository
	Reviews() ReviewRepository
	Notifications() NotificationRepository

	// WithinTx runs fn against a transactional view of the store. Either
	// every write made through tx is applied, or none is.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProfileRepository interface {
	FindClient(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error)
	FindFreelancer(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	FindClients(ctx context.Context, userIDs []uuid.UUID) ([]models.ClientProfile, error)
	FindFreelancers(ctx context.Context, userIDs []uuid.UUID) ([]models.FreelancerProfile, error)
	SaveClient(ctx context.Context, p *models.ClientProfile) error
	SaveFreelancer(ctx context.Context, p *models.FreelancerProfile) error
}

// ProjectFilter selects projects for browsing. Zero values mean "any".
type ProjectFilter struct {
	Statuses   []models.ProjectStatus
	Visibility models.Visibility
	Skill      string
	Limit      int
	Offset     int
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// FindByIDForUpdate locks the row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, newestFirst bool) ([]models.Project, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]models.Project, error)

	// UpdateIfStatus writes the mutable columns of p only if the stored
	// status is one of expected. ErrStateConflict otherwise.
	UpdateIfStatus(ctx context.Context, p *models.Project, expected ...models.ProjectStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	SetClientName(ctx context.Context, clientID uuid.UUID, name string) (int64, error)
	SyncClientNames(ctx context.Context) (int64, error)
}

type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Proposal, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error)
	// FindActive returns the pending or accepted proposal of a freelancer on
	// a project, or ErrNotFound.
	FindActive(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error)

	UpdateIfStatus(ctx context.Context, p *models.Proposal, expected ...models.ProposalStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	// DeleteOrphaned removes proposals whose project no longer exists.
	DeleteOrphaned(ctx context.Context) (int64, error)

	SetFreelancerName(ctx context.Context, freelancerID uuid.UUID, name string) (int64, error)
	SyncFreelancerNames(ctx context.Context) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error
	FindByProject(ctx context.Context, projectID uuid.UUID) (*models.Review, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Review, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
