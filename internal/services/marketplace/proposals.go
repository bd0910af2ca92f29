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

const msgProposalNotFound = "Proposal not found"

type ProposalInput struct {
	Content string          `json:"content" validate:"required,max=5000"`
	Bid     decimal.Decimal `json:"bid"`
}

func (in *ProposalInput) normalize() error {
	in.Content = strings.TrimSpace(in.Content)
	if err := utils.Validate(in); err != nil {
		return err
	}
	if !in.Bid.IsPositive() {
		return apperr.Validation("Please check the highlighted fields", map[string][]string{
			"bid": {"Must be greater than 0"},
		})
	}
	return nil
}

func (s *Service) freelancerName(ctx context.Context, userID uuid.UUID) string {
	if prof, err := s.store.Profiles().FindFreelancer(ctx, userID); err == nil && prof.DisplayName != "" {
		return prof.DisplayName
	}
	if u, err := s.store.Users().FindByID(ctx, userID); err == nil {
		return u.Name
	}
	return ""
}

// SubmitProposal creates a pending proposal by actor on an open project. A
// freelancer holds at most one pending or accepted proposal per project.
func (s *Service) SubmitProposal(ctx context.Context, actor models.Principal, projectID uuid.UUID, in ProposalInput) (prop *models.Proposal, err error) {
	defer func() {
		s.observe("submit_proposal", err,
			zap.String("project_id", projectID.String()),
			zap.String("user_id", actor.UserID.String()))
	}()

	if !actor.IsFreelancer() {
		return nil, apperr.PermissionDenied("Only freelancers can submit proposals")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	name := s.freelancerName(ctx, actor.UserID)

	var project *models.Project
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		project, err = tx.Projects().FindByIDForUpdate(ctx, projectID)
		if err != nil {
			return fail(err, msgProjectNotFound)
		}
		if project.ClientID == actor.UserID {
			return apperr.PermissionDenied("You cannot bid on your own project")
		}
		if project.Status != models.ProjectOpen {
			return apperr.InvalidState("This project is no longer accepting proposals")
		}

		_, err = tx.Proposals().FindActive(ctx, projectID, actor.UserID)
		switch {
		case err == nil:
			return apperr.InvalidState("You already have an active proposal on this project")
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		now := s.clock()
		prop = &models.Proposal{
			ID:             uuid.New(),
			ProjectID:      projectID,
			FreelancerID:   actor.UserID,
			FreelancerName: name,
			Content:        in.Content,
			Bid:            in.Bid,
			Status:         models.ProposalPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Proposals().Create(ctx, prop); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.InvalidState("You already have an active proposal on this project")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}

	s.publishProposal(ctx, project.ClientID, prop)
	s.notify(ctx, notify.Message{
		Recipient: project.ClientID,
		Kind:      models.NotifyNewProposal,
		Title:     "New proposal",
		Body:      displayName(prop.FreelancerName) + " sent a proposal for \"" + project.Title + "\"",
		Payload: map[string]interface{}{
			"project_id":  project.ID,
			"proposal_id": prop.ID,
			"bid":         prop.Bid.String(),
		},
	})
	return prop, nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "A freelancer"
	}
	return name
}

// ListProposalsForProject returns what actor may see of a project's
// proposals: all of them for the owner, only their own for anyone else. A
// missing project yields an empty list.
func (s *Service) ListProposalsForProject(ctx context.Context, actor models.Principal, projectID uuid.UUID) ([]models.Proposal, error) {
	project, err := s.store.Projects().FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.Proposal{}, nil
	}
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}

	items, err := s.store.Proposals().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fail(err, msgProposalNotFound)
	}
	if project.ClientID == actor.UserID {
		return items, nil
	}
	own := []models.Proposal{}
	for _, p := range items {
		if p.FreelancerID == actor.UserID {
			own = append(own, p)
		}
	}
	return own, nil
}

func (s *Service) ListProposalsForFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	items, err := s.store.Proposals().ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, fail(err, msgProposalNotFound)
	}
	return items, nil
}

// GetProposal is visible to its freelancer and to the project owner.
func (s *Service) GetProposal(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Proposal, error) {
	prop, err := s.store.Proposals().FindByID(ctx, id)
	if err != nil {
		return nil, fail(err, msgProposalNotFound)
	}
	if prop.FreelancerID == actor.UserID {
		return prop, nil
	}
	project, err := s.store.Projects().FindByID(ctx, prop.ProjectID)
	if err != nil || project.ClientID != actor.UserID {
		return nil, apperr.NotFound(msgProposalNotFound)
	}
	return prop, nil
}

// loadForOwner loads a proposal and its project and checks that actor owns
// the project.
func (s *Service) loadForOwner(ctx context.Context, actor models.Principal, proposalID uuid.UUID) (*models.Proposal, *models.Project, error) {
	prop, err := s.store.Proposals().FindByID(ctx, proposalID)
	if err != nil {
		return nil, nil, fail(err, msgProposalNotFound)
	}
	project, err := s.store.Projects().FindByID(ctx, prop.ProjectID)
	if err != nil {
		return nil, nil, fail(err, msgProjectNotFound)
	}
	if project.ClientID != actor.UserID {
		return nil, nil, apperr.PermissionDenied("Only the project owner can do this")
	}
	return prop, project, nil
}

// SetProposalStatus is the direct status mutation behind the reject and
// withdraw paths.
func (s *Service) SetProposalStatus(ctx context.Context, actor models.Principal, id uuid.UUID, status models.ProposalStatus) (*models.Proposal, error) {
	switch status {
	case models.ProposalRejected:
		return s.RejectProposal(ctx, actor, id)
	case models.ProposalWithdrawn:
		return s.WithdrawProposal(ctx, actor, id)
	case models.ProposalAccepted:
		res, err := s.AcceptProposal(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		return res.Proposal, nil
	}
	return nil, apperr.InvalidState("This status cannot be set directly")
}

// RejectProposal declines a pending proposal. Only the proposal document
// changes.
func (s *Service) RejectProposal(ctx context.Context, actor models.Principal, id uuid.UUID) (prop *models.Proposal, err error) {
	defer func() { s.observe("reject_proposal", err, zap.String("proposal_id", id.String())) }()

	prop, project, err := s.loadForOwner(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if prop.Status != models.ProposalPending {
		return nil, apperr.InvalidState("Only pending proposals can be rejected")
	}

	prop.Status = models.ProposalRejected
	prop.UpdatedAt = s.clock()
	if err := s.store.Proposals().UpdateIfStatus(ctx, prop, models.ProposalPending); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, apperr.InvalidState("Only pending proposals can be rejected")
		}
		return nil, fail(err, msgProposalNotFound)
	}

	s.publishProposal(ctx, project.ClientID, prop)
	s.notify(ctx, notify.Message{
		Recipient: prop.FreelancerID,
		Kind:      models.NotifyProposalRejected,
		Title:     "Proposal not selected",
		Body:      "Your proposal for \"" + project.Title + "\" was not selected",
		Payload:   map[string]interface{}{"project_id": project.ID, "proposal_id": prop.ID},
	})
	return prop, nil
}

// WithdrawProposal lets a freelancer retract their own pending proposal.
func (s *Service) WithdrawProposal(ctx context.Context, actor models.Principal, id uuid.UUID) (prop *models.Proposal, err error) {
	defer func() { s.observe("withdraw_proposal", err, zap.String("proposal_id", id.String())) }()

	prop, err = s.store.Proposals().FindByID(ctx, id)
	if err != nil {
		return nil, fail(err, msgProposalNotFound)
	}
	if prop.FreelancerID != actor.UserID {
		return nil, apperr.PermissionDenied("Only the freelancer who sent this proposal can withdraw it")
	}
	if prop.Status != models.ProposalPending {
		return nil, apperr.InvalidState("Only pending proposals can be withdrawn")
	}

	prop.Status = models.ProposalWithdrawn
	prop.UpdatedAt = s.clock()
	if err := s.store.Proposals().UpdateIfStatus(ctx, prop, models.ProposalPending); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, apperr.InvalidState("Only pending proposals can be withdrawn")
		}
		return nil, fail(err, msgProposalNotFound)
	}

	project, perr := s.store.Projects().FindByID(ctx, prop.ProjectID)
	if perr != nil {
		s.log.Warn("withdrawn proposal without project",
			zap.String("proposal_id", prop.ID.String()), zap.Error(perr))
		return prop, nil
	}
	s.publishProposal(ctx, project.ClientID, prop)
	s.notify(ctx, notify.Message{
		Recipient: project.ClientID,
		Kind:      models.NotifyProposalWithdrawn,
		Title:     "Proposal withdrawn",
		Body:      displayName(prop.FreelancerName) + " withdrew their proposal for \"" + project.Title + "\"",
		Payload:   map[string]interface{}{"project_id": project.ID, "proposal_id": prop.ID},
	})
	return prop, nil
}

// DeleteProposal removes a proposal. Its freelancer or the project owner may
// do so unless the proposal was hired, since the project still points at it.
func (s *Service) DeleteProposal(ctx context.Context, actor models.Principal, id uuid.UUID) (err error) {
	defer func() { s.observe("delete_proposal", err, zap.String("proposal_id", id.String())) }()

	var clientID uuid.UUID
	var prop *models.Proposal
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		prop, err = tx.Proposals().FindByID(ctx, id)
		if err != nil {
			return fail(err, msgProposalNotFound)
		}

		// Lock the parent so a concurrent accept cannot hire this proposal
		// between the check and the delete.
		project, err := tx.Projects().FindByIDForUpdate(ctx, prop.ProjectID)
		switch {
		case err == nil:
			clientID = project.ClientID
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		if prop.FreelancerID != actor.UserID && (project == nil || project.ClientID != actor.UserID) {
			return apperr.PermissionDenied("You cannot remove this proposal")
		}

		prop, err = tx.Proposals().FindByID(ctx, id)
		if err != nil {
			return fail(err, msgProposalNotFound)
		}
		if prop.Status.WasAccepted() {
			return apperr.InvalidState("A hired proposal cannot be removed")
		}
		return tx.Proposals().Delete(ctx, id)
	})
	if err != nil {
		return fail(err, msgProposalNotFound)
	}

	s.publishRemoved(ctx, []uuid.UUID{clientID, prop.FreelancerID}, "proposal", id)
	return nil
}
