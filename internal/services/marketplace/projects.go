package marketplace

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

const (
	msgProjectNotFound = "Project not found"
	maxBrowseLimit     = 100
)

// ProjectInput holds the client-editable fields of a project.
type ProjectInput struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"required"`
	Budget      *decimal.Decimal  `json:"budget"`
	Duration    string            `json:"duration" validate:"max=80"`
	Skills      []string          `json:"skills" validate:"min=1,dive,required,max=60"`
	Visibility  models.Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
}

func (in *ProjectInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Skills = normalizeSkills(in.Skills)
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if err := utils.Validate(in); err != nil {
		return err
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return apperr.Validation("Please check the highlighted fields", map[string][]string{
			"budget": {"Must not be negative"},
		})
	}
	return nil
}

// normalizeSkills trims, drops blanks and de-duplicates case-insensitively,
// keeping the first spelling.
func normalizeSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (in *ProjectInput) apply(p *models.Project) {
	p.Title = in.Title
	p.Description = in.Description
	p.Budget = decimal.NullDecimal{}
	if in.Budget != nil {
		p.Budget = decimal.NewNullDecimal(*in.Budget)
	}
	p.Duration = in.Duration
	p.Skills = in.Skills
	p.Visibility = in.Visibility
}

// CreateProject posts a new open project owned by actor.
func (s *Service) CreateProject(ctx context.Context, actor models.Principal, in ProjectInput) (p *models.Project, err error) {
	defer func() { s.observe("create_project", err, zap.String("user_id", actor.UserID.String())) }()

	if !actor.IsClient() {
		return nil, apperr.PermissionDenied("Only clients can post projects")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := s.clock()
	p = &models.Project{
		ID:         uuid.New(),
		ClientID:   actor.UserID,
		ClientName: s.clientName(ctx, actor.UserID),
		Status:     models.ProjectOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	in.apply(p)

	if err := s.store.Projects().Create(ctx, p); err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	s.publishProject(ctx, p)
	return p, nil
}

// clientName resolves the display name snapshot stored on projects. A missing
// profile falls back to the account name.
func (s *Service) clientName(ctx context.Context, userID uuid.UUID) string {
	if prof, err := s.store.Profiles().FindClient(ctx, userID); err == nil && prof.DisplayName != "" {
		return prof.DisplayName
	}
	if u, err := s.store.Users().FindByID(ctx, userID); err == nil {
		return u.Name
	}
	return ""
}

func canView(actor models.Principal, p *models.Project) bool {
	if p.Visibility != models.VisibilityPrivate {
		return true
	}
	if p.ClientID == actor.UserID {
		return true
	}
	return p.FreelancerID != nil && *p.FreelancerID == actor.UserID
}

// GetProject returns a project. Private projects are reported as not found to
// anyone but the owner and the hired freelancer.
func (s *Service) GetProject(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Project, error) {
	p, err := s.store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	if !canView(actor, p) {
		return nil, apperr.NotFound(msgProjectNotFound)
	}
	return p, nil
}

func (s *Service) ListProjectsForClient(ctx context.Context, ownerID uuid.UUID, newestFirst bool) ([]models.Project, error) {
	items, err := s.store.Projects().ListByClient(ctx, ownerID, newestFirst)
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	return items, nil
}

// ListProjectsForFreelancer returns the projects the freelancer was hired for.
func (s *Service) ListProjectsForFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	items, err := s.store.Projects().ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	return items, nil
}

type BrowseQuery struct {
	Skill  string
	Limit  int
	Offset int
}

// BrowseOpenProjects lists public projects that accept proposals.
func (s *Service) BrowseOpenProjects(ctx context.Context, q BrowseQuery) ([]models.Project, error) {
	if q.Limit <= 0 || q.Limit > maxBrowseLimit {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	items, err := s.store.Projects().List(ctx, repository.ProjectFilter{
		Statuses:   []models.ProjectStatus{models.ProjectOpen},
		Visibility: models.VisibilityPublic,
		Skill:      strings.TrimSpace(q.Skill),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	return items, nil
}

// loadOwned fetches a project and checks that actor owns it.
func (s *Service) loadOwned(ctx context.Context, store repository.Store, actor models.Principal, id uuid.UUID, lock bool) (*models.Project, error) {
	var (
		p   *models.Project
		err error
	)
	if lock {
		p, err = store.Projects().FindByIDForUpdate(ctx, id)
	} else {
		p, err = store.Projects().FindByID(ctx, id)
	}
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}
	if p.ClientID != actor.UserID {
		return nil, apperr.PermissionDenied("Only the project owner can do this")
	}
	return p, nil
}

// UpdateProjectDetails edits the descriptive fields of an open project.
func (s *Service) UpdateProjectDetails(ctx context.Context, actor models.Principal, id uuid.UUID, in ProjectInput) (p *models.Project, err error) {
	defer func() { s.observe("update_project", err, zap.String("project_id", id.String())) }()

	p, err = s.loadOwned(ctx, s.store, actor, id, false)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProjectOpen {
		return nil, apperr.InvalidState("Only open projects can be edited")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	in.apply(p)
	p.UpdatedAt = s.clock()
	if err := s.store.Projects().UpdateIfStatus(ctx, p, models.ProjectOpen); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, apperr.InvalidState("Only open projects can be edited")
		}
		return nil, fail(err, msgProjectNotFound)
	}
	s.publishProject(ctx, p)
	return p, nil
}

// UpdateProjectStatus is the owner-only status primitive. Hiring and
// completion have their own operations; here a project can only be closed
// or reopened.
func (s *Service) UpdateProjectStatus(ctx context.Context, actor models.Principal, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Unknown project status", map[string][]string{
			"status": {"Must be one of: open, in-progress, completed, closed"},
		})
	}
	switch status {
	case models.ProjectClosed:
		return s.CloseProject(ctx, actor, id)
	case models.ProjectOpen:
		return s.ReopenProject(ctx, actor, id)
	}

	if _, err := s.loadOwned(ctx, s.store, actor, id, false); err != nil {
		return nil, err
	}
	if status == models.ProjectInProgress {
		return nil, apperr.InvalidState("Accept a proposal to start work on this project")
	}
	return nil, apperr.InvalidState("Use complete to finish this project")
}

// CloseProject stops an open project from taking proposals. Pending
// proposals are rejected in the same transaction.
func (s *Service) CloseProject(ctx context.Context, actor models.Principal, id uuid.UUID) (p *models.Project, err error) {
	defer func() { s.observe("close_project", err, zap.String("project_id", id.String())) }()

	var rejected []models.Proposal
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		rejected = nil

		var err error
		p, err = s.loadOwned(ctx, tx, actor, id, true)
		if err != nil {
			return err
		}
		if p.Status != models.ProjectOpen {
			return apperr.InvalidState("Only open projects can be closed")
		}

		now := s.clock()
		p.Status = models.ProjectClosed
		p.UpdatedAt = now
		if err := tx.Projects().UpdateIfStatus(ctx, p, models.ProjectOpen); err != nil {
			return closeConflict(err)
		}

		proposals, err := tx.Proposals().ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		for i := range proposals {
			prop := proposals[i]
			if prop.Status != models.ProposalPending {
				continue
			}
			prop.Status = models.ProposalRejected
			prop.UpdatedAt = now
			if err := tx.Proposals().UpdateIfStatus(ctx, &prop, models.ProposalPending); err != nil {
				return err
			}
			rejected = append(rejected, prop)
		}
		return nil
	})
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}

	s.publishProject(ctx, p)
	for i := range rejected {
		prop := &rejected[i]
		s.publishProposal(ctx, p.ClientID, prop)
		s.notify(ctx, notify.Message{
			Recipient: prop.FreelancerID,
			Kind:      models.NotifyProjectClosed,
			Title:     "Project closed",
			Body:      "The client closed \"" + p.Title + "\" without hiring",
			Payload:   map[string]interface{}{"project_id": p.ID, "proposal_id": prop.ID},
		})
	}
	return p, nil
}

func closeConflict(err error) error {
	if errors.Is(err, repository.ErrStateConflict) {
		return apperr.InvalidState("Only open projects can be closed")
	}
	return err
}

// ReopenProject puts a closed project back on the market.
func (s *Service) ReopenProject(ctx context.Context, actor models.Principal, id uuid.UUID) (p *models.Project, err error) {
	defer func() { s.observe("reopen_project", err, zap.String("project_id", id.String())) }()

	p, err = s.loadOwned(ctx, s.store, actor, id, false)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProjectClosed {
		return nil, apperr.InvalidState("Only closed projects can be reopened")
	}
	p.Status = models.ProjectOpen
	p.UpdatedAt = s.clock()
	if err := s.store.Projects().UpdateIfStatus(ctx, p, models.ProjectClosed); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, apperr.InvalidState("Only closed projects can be reopened")
		}
		return nil, fail(err, msgProjectNotFound)
	}
	s.publishProject(ctx, p)
	return p, nil
}

// DeleteProject removes a project together with its proposals and review in
// one transaction. Projects with a hired freelancer still working cannot be
// deleted.
func (s *Service) DeleteProject(ctx context.Context, actor models.Principal, id uuid.UUID) (err error) {
	defer func() { s.observe("delete_project", err, zap.String("project_id", id.String())) }()

	var (
		project   *models.Project
		proposals []models.Proposal
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		project, err = s.loadOwned(ctx, tx, actor, id, true)
		if err != nil {
			return err
		}
		switch project.Status {
		case models.ProjectInProgress:
			return apperr.InvalidState("A project with a hired freelancer cannot be deleted")
		case models.ProjectCompleted:
			// the review belongs to the freelancer's history
			return apperr.InvalidState("A completed project cannot be deleted")
		}

		proposals, err = tx.Proposals().ListByProject(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Reviews().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if _, err := tx.Proposals().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return fail(err, msgProjectNotFound)
	}

	recipients := []uuid.UUID{project.ClientID}
	for _, prop := range proposals {
		recipients = append(recipients, prop.FreelancerID)
	}
	s.publishRemoved(ctx, recipients, "project", id)
	return nil
}
