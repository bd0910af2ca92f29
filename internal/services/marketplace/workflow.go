package marketplace

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

const (
	msgNotOpen       = "This project is no longer open for hiring"
	msgNotPending    = "This proposal can no longer be accepted"
	msgNotInProgress = "Only projects in progress can be completed"
)

// Acceptance is the committed state of a hired (project, proposal) pair.
type Acceptance struct {
	Project  *models.Project  `json:"project"`
	Proposal *models.Proposal `json:"proposal"`
}

// AcceptProposal hires the proposal's freelancer. The project moves from
// open to in-progress and the proposal from pending to accepted, both in one
// transaction that fails if either status changed since it was read.
func (s *Service) AcceptProposal(ctx context.Context, actor models.Principal, proposalID uuid.UUID) (res *Acceptance, err error) {
	defer func() {
		s.observe("accept_proposal", err,
			zap.String("proposal_id", proposalID.String()),
			zap.String("user_id", actor.UserID.String()))
	}()

	// Pre-checks give precise errors; the transaction below re-verifies.
	prop, project, err := s.loadForOwner(ctx, actor, proposalID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectOpen {
		return nil, apperr.InvalidState(msgNotOpen)
	}
	if prop.Status != models.ProposalPending {
		return nil, apperr.InvalidState(msgNotPending)
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		project, err = tx.Projects().FindByIDForUpdate(ctx, prop.ProjectID)
		if err != nil {
			return fail(err, msgProjectNotFound)
		}
		if project.ClientID != actor.UserID {
			return apperr.PermissionDenied("Only the project owner can do this")
		}
		prop, err = tx.Proposals().FindByID(ctx, proposalID)
		if err != nil {
			return fail(err, msgProposalNotFound)
		}

		now := s.clock()
		freelancerID, acceptedID := prop.FreelancerID, prop.ID
		project.Status = models.ProjectInProgress
		project.FreelancerID = &freelancerID
		project.AcceptedProposalID = &acceptedID
		project.UpdatedAt = now
		if err := tx.Projects().UpdateIfStatus(ctx, project, models.ProjectOpen); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return apperr.InvalidState(msgNotOpen)
			}
			return err
		}

		clientID, acceptedAt := actor.UserID, now
		prop.Status = models.ProposalAccepted
		prop.AcceptedAt = &acceptedAt
		prop.ClientID = &clientID
		prop.UpdatedAt = now
		if err := tx.Proposals().UpdateIfStatus(ctx, prop, models.ProposalPending); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return apperr.InvalidState(msgNotPending)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fail(err, msgProposalNotFound)
	}

	s.log.Info("proposal accepted",
		zap.String("project_id", project.ID.String()),
		zap.String("proposal_id", prop.ID.String()),
		zap.String("freelancer_id", prop.FreelancerID.String()))

	s.publishProject(ctx, project)
	s.publishProposal(ctx, project.ClientID, prop)
	s.notify(ctx, notify.Message{
		Recipient: prop.FreelancerID,
		Kind:      models.NotifyHired,
		Title:     "You're hired!",
		Body:      "Your proposal for \"" + project.Title + "\" was accepted",
		Payload:   map[string]interface{}{"project_id": project.ID, "project_title": project.Title, "proposal_id": prop.ID},
	})
	return &Acceptance{Project: project, Proposal: prop}, nil
}

type CompleteInput struct {
	Notes  string `json:"notes" validate:"max=2000"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

// Completion is the committed result of finishing a project.
type Completion struct {
	Project  *models.Project  `json:"project"`
	Proposal *models.Proposal `json:"proposal"`
	Review   *models.Review   `json:"review"`
}

// CompleteProject finishes an in-progress project, completes its accepted
// proposal and records the client's review of the freelancer.
func (s *Service) CompleteProject(ctx context.Context, actor models.Principal, projectID uuid.UUID, in CompleteInput) (res *Completion, err error) {
	defer func() { s.observe("complete_project", err, zap.String("project_id", projectID.String())) }()

	in.Notes = strings.TrimSpace(in.Notes)
	if err := utils.Validate(&in); err != nil {
		return nil, err
	}

	project, err := s.loadOwned(ctx, s.store, actor, projectID, false)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectInProgress {
		return nil, apperr.InvalidState(msgNotInProgress)
	}

	res = &Completion{}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		project, err := s.loadOwned(ctx, tx, actor, projectID, true)
		if err != nil {
			return err
		}
		if project.Status != models.ProjectInProgress {
			return apperr.InvalidState(msgNotInProgress)
		}
		if project.AcceptedProposalID == nil {
			return apperr.InvalidState("This project has no hired proposal")
		}

		now := s.clock()
		completedAt := now
		project.Status = models.ProjectCompleted
		project.CompletedAt = &completedAt
		project.UpdatedAt = now
		if err := tx.Projects().UpdateIfStatus(ctx, project, models.ProjectInProgress); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return apperr.InvalidState(msgNotInProgress)
			}
			return err
		}

		prop, err := tx.Proposals().FindByID(ctx, *project.AcceptedProposalID)
		if err != nil {
			return fail(err, msgProposalNotFound)
		}
		prop.Status = models.ProposalCompleted
		prop.CompletedAt = &completedAt
		prop.UpdatedAt = now
		if err := tx.Proposals().UpdateIfStatus(ctx, prop, models.ProposalAccepted); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return apperr.InvalidState("The hired proposal is no longer active")
			}
			return err
		}

		review := &models.Review{
			ID:           uuid.New(),
			ProjectID:    project.ID,
			ProposalID:   prop.ID,
			ClientID:     actor.UserID,
			FreelancerID: prop.FreelancerID,
			Rating:       in.Rating,
			Comment:      in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.InvalidState("This project was already reviewed")
			}
			return err
		}

		res.Project, res.Proposal, res.Review = project, prop, review
		return nil
	})
	if err != nil {
		return nil, fail(err, msgProjectNotFound)
	}

	s.publishProject(ctx, res.Project)
	s.publishProposal(ctx, res.Project.ClientID, res.Proposal)
	s.notify(ctx, notify.Message{
		Recipient: res.Proposal.FreelancerID,
		Kind:      models.NotifyProjectCompleted,
		Title:     "Project completed",
		Body:      "\"" + res.Project.Title + "\" was marked complete",
		Payload: map[string]interface{}{
			"project_id":  res.Project.ID,
			"proposal_id": res.Proposal.ID,
			"rating":      res.Review.Rating,
		},
	})
	return res, nil
}
