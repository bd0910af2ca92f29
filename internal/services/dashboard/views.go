// Package dashboard builds the read-side views that join projects, proposals,
// profiles and reviews for display. Views never mutate anything, and a
// missing joined document degrades to a placeholder instead of an error.
package dashboard

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

const (
	msgUnavailable     = "Could not load your dashboard, please try again"
	missingProjectName = "Project no longer available"
)

type Service struct {
	store repository.Store
	log   *zap.Logger
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// ClientProposal is a proposal merged with its parent project.
type ClientProposal struct {
	models.Proposal
	ProjectTitle       string               `json:"project_title"`
	ProjectDescription string               `json:"project_description"`
	ProjectStatus      models.ProjectStatus `json:"project_status"`
	FreelancerName     string               `json:"freelancer_name"`
	FreelancerPhotoURL string               `json:"freelancer_photo_url,omitempty"`
	SubmittedOn        string               `json:"submitted_on"`
}

type ClientDashboard struct {
	Stats     ClientStats      `json:"stats"`
	Projects  []models.Project `json:"projects"`
	Proposals []ClientProposal `json:"proposals"`
}

func (s *Service) ClientDashboard(ctx context.Context, clientID uuid.UUID) (*ClientDashboard, error) {
	projects, err := s.store.Projects().ListByClient(ctx, clientID, true)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	byID := make(map[uuid.UUID]models.Project, len(projects))
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	proposals, err := s.store.Proposals().ListByProjects(ctx, ids)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	freelancers := s.freelancerProfiles(ctx, proposals)

	rows := make([]ClientProposal, 0, len(proposals))
	for _, prop := range proposals {
		project := byID[prop.ProjectID]
		prof := freelancers[prop.FreelancerID]
		rows = append(rows, ClientProposal{
			Proposal:           prop,
			ProjectTitle:       project.Title,
			ProjectDescription: project.Description,
			ProjectStatus:      project.Status,
			FreelancerName:     nameOr(prof.DisplayName, prop.FreelancerName),
			FreelancerPhotoURL: prof.PhotoURL,
			SubmittedOn:        FormatDate(&prop.CreatedAt),
		})
	}

	return &ClientDashboard{
		Stats:     ComputeClientStats(projects, proposals),
		Projects:  projects,
		Proposals: rows,
	}, nil
}

// FreelancerProposal is a proposal with its parent project resolved.
type FreelancerProposal struct {
	models.Proposal
	ProjectTitle   string               `json:"project_title"`
	ProjectStatus  models.ProjectStatus `json:"project_status,omitempty"`
	ProjectBudget  decimal.NullDecimal  `json:"project_budget"`
	ClientName     string               `json:"client_name"`
	ProjectMissing bool                 `json:"project_missing,omitempty"`
	SubmittedOn    string               `json:"submitted_on"`
}

type FreelancerDashboard struct {
	Stats     FreelancerStats      `json:"stats"`
	Proposals []FreelancerProposal `json:"proposals"`
}

func (s *Service) FreelancerDashboard(ctx context.Context, freelancerID uuid.UUID) (*FreelancerDashboard, error) {
	proposals, err := s.store.Proposals().ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	projects := s.projectsFor(ctx, proposals)
	clients := s.clientProfiles(ctx, projects)

	rows := make([]FreelancerProposal, 0, len(proposals))
	for _, prop := range proposals {
		row := FreelancerProposal{
			Proposal:    prop,
			SubmittedOn: FormatDate(&prop.CreatedAt),
		}
		if project, ok := projects[prop.ProjectID]; ok {
			row.ProjectTitle = project.Title
			row.ProjectStatus = project.Status
			row.ProjectBudget = project.Budget
			row.ClientName = nameOr(clients[project.ClientID].DisplayName, project.ClientName)
		} else {
			row.ProjectTitle = missingProjectName
			row.ClientName = AnonymousName
			row.ProjectMissing = true
		}
		rows = append(rows, row)
	}

	return &FreelancerDashboard{
		Stats:     ComputeFreelancerStats(proposals),
		Proposals: rows,
	}, nil
}

// CompletedProject is one row of the completed-project history.
type CompletedProject struct {
	ProjectID      uuid.UUID           `json:"project_id"`
	ProposalID     *uuid.UUID          `json:"proposal_id,omitempty"`
	Title          string              `json:"title"`
	Budget         decimal.NullDecimal `json:"budget"`
	ClientID       uuid.UUID           `json:"client_id"`
	ClientName     string              `json:"client_name"`
	FreelancerID   *uuid.UUID          `json:"freelancer_id,omitempty"`
	FreelancerName string              `json:"freelancer_name"`
	Bid            *decimal.Decimal    `json:"bid,omitempty"`
	AcceptedAt     *time.Time          `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	AcceptedOn     string              `json:"accepted_on"`
	CompletedOn    string              `json:"completed_on"`
	DurationDays   *int                `json:"duration_days"`
	Rating         *int                `json:"rating,omitempty"`
}

// ClientHistory lists the client's completed projects, newest first.
func (s *Service) ClientHistory(ctx context.Context, clientID uuid.UUID) ([]CompletedProject, error) {
	projects, err := s.store.Projects().ListByClient(ctx, clientID, true)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	completed := make([]models.Project, 0, len(projects))
	ids := []uuid.UUID{}
	for _, p := range projects {
		if p.Status == models.ProjectCompleted {
			completed = append(completed, p)
			ids = append(ids, p.ID)
		}
	}

	proposals, err := s.store.Proposals().ListByProjects(ctx, ids)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	hired := hiredByProject(completed, proposals)
	freelancers := s.freelancerProfiles(ctx, proposals)

	rows := make([]CompletedProject, 0, len(completed))
	for _, p := range completed {
		var prop *models.Proposal
		if h, ok := hired[p.ID]; ok {
			prop = &h
		}
		var prof models.FreelancerProfile
		if prop != nil {
			prof = freelancers[prop.FreelancerID]
		}
		rows = append(rows, s.completedRow(ctx, p, prop, p.ClientName, prof.DisplayName))
	}
	return rows, nil
}

// FreelancerHistory lists projects the freelancer completed.
func (s *Service) FreelancerHistory(ctx context.Context, freelancerID uuid.UUID) ([]CompletedProject, error) {
	proposals, err := s.store.Proposals().ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, apperr.Unavailable(err, msgUnavailable)
	}
	done := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.Status == models.ProposalCompleted {
			done = append(done, p)
		}
	}
	projects := s.projectsFor(ctx, done)
	clients := s.clientProfiles(ctx, projects)

	rows := make([]CompletedProject, 0, len(done))
	for i := range done {
		prop := &done[i]
		project, ok := projects[prop.ProjectID]
		if !ok {
			project = models.Project{ID: prop.ProjectID, Title: missingProjectName}
		}
		client := ""
		if ok {
			client = nameOr(clients[project.ClientID].DisplayName, project.ClientName)
		}
		rows = append(rows, s.completedRow(ctx, project, prop, client, ""))
	}
	return rows, nil
}

func (s *Service) completedRow(ctx context.Context, p models.Project, prop *models.Proposal, clientName, freelancerName string) CompletedProject {
	row := CompletedProject{
		ProjectID:   p.ID,
		Title:       p.Title,
		Budget:      p.Budget,
		ClientID:    p.ClientID,
		ClientName:  nameOr(clientName),
		CompletedAt: p.CompletedAt,
		AcceptedOn:  UnknownDate,
		CompletedOn: FormatDate(p.CompletedAt),
	}
	if prop == nil {
		row.FreelancerName = AnonymousName
		return row
	}

	id, fid, bid := prop.ID, prop.FreelancerID, prop.Bid
	row.ProposalID = &id
	row.FreelancerID = &fid
	row.FreelancerName = nameOr(freelancerName, prop.FreelancerName)
	row.Bid = &bid
	row.AcceptedAt = prop.AcceptedAt
	row.AcceptedOn = FormatDate(prop.AcceptedAt)
	if row.CompletedAt == nil {
		row.CompletedAt = prop.CompletedAt
		row.CompletedOn = FormatDate(prop.CompletedAt)
	}
	if days, ok := DurationDays(row.AcceptedAt, row.CompletedAt); ok {
		row.DurationDays = &days
	}

	review, err := s.store.Reviews().FindByProject(ctx, p.ID)
	if err == nil {
		rating := review.Rating
		row.Rating = &rating
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("load review for history", zap.String("project_id", p.ID.String()), zap.Error(err))
	}
	return row
}

// hiredByProject picks the accepted proposal of each project, preferring the
// one the project points at.
func hiredByProject(projects []models.Project, proposals []models.Proposal) map[uuid.UUID]models.Proposal {
	want := make(map[uuid.UUID]uuid.UUID, len(projects))
	for _, p := range projects {
		if p.AcceptedProposalID != nil {
			want[p.ID] = *p.AcceptedProposalID
		}
	}
	out := make(map[uuid.UUID]models.Proposal, len(projects))
	for _, prop := range proposals {
		if !prop.Status.WasAccepted() {
			continue
		}
		if id, ok := want[prop.ProjectID]; ok && id != prop.ID {
			continue
		}
		out[prop.ProjectID] = prop
	}
	return out
}

type Review struct {
	models.Review
	ClientName   string `json:"client_name"`
	ProjectTitle string `json:"project_title"`
	ReviewedOn   string `json:"reviewed_on"`
}

type ReviewSummary struct {
	Average float64  `json:"average"`
	Count   int      `json:"count"`
	Reviews []Review `json:"reviews"`
}

// FreelancerReviews returns the rating summary over all reviews and the
// newest limit reviews.
func (s *Service) FreelancerReviews(ctx context.Context, freelancerID uuid.UUID, limit int) (*ReviewSummary, error) {
	all, err := s.store.Reviews().ListByFreelancer(ctx, freelancerID, 0)
	if err != nil {
		return nil, apperr.Unavailable(err, "Could not load reviews, please try again")
	}

	sum := &ReviewSummary{Count: len(all), Reviews: []Review{}}
	total := 0
	for _, r := range all {
		total += r.Rating
	}
	if sum.Count > 0 {
		sum.Average = math.Round(float64(total)/float64(sum.Count)*10) / 10
	}

	newest := all
	if limit > 0 && len(newest) > limit {
		newest = newest[:limit]
	}
	projectIDs := make([]uuid.UUID, 0, len(newest))
	clientIDs := make([]uuid.UUID, 0, len(newest))
	for _, r := range newest {
		projectIDs = append(projectIDs, r.ProjectID)
		clientIDs = append(clientIDs, r.ClientID)
	}
	titles := map[uuid.UUID]string{}
	if projects, err := s.store.Projects().FindByIDs(ctx, projectIDs); err == nil {
		for _, p := range projects {
			titles[p.ID] = p.Title
		}
	} else {
		s.log.Warn("load reviewed projects", zap.Error(err))
	}
	names := map[uuid.UUID]string{}
	if profiles, err := s.store.Profiles().FindClients(ctx, clientIDs); err == nil {
		for _, p := range profiles {
			names[p.UserID] = p.DisplayName
		}
	} else {
		s.log.Warn("load reviewer profiles", zap.Error(err))
	}

	for _, r := range newest {
		title := titles[r.ProjectID]
		if title == "" {
			title = missingProjectName
		}
		created := r.CreatedAt
		sum.Reviews = append(sum.Reviews, Review{
			Review:       r,
			ClientName:   nameOr(names[r.ClientID]),
			ProjectTitle: title,
			ReviewedOn:   FormatDate(&created),
		})
	}
	return sum, nil
}

func (s *Service) projectsFor(ctx context.Context, proposals []models.Proposal) map[uuid.UUID]models.Project {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, p := range proposals {
		if !seen[p.ProjectID] {
			seen[p.ProjectID] = true
			ids = append(ids, p.ProjectID)
		}
	}
	out := make(map[uuid.UUID]models.Project, len(ids))
	projects, err := s.store.Projects().FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("resolve proposal projects", zap.Error(err))
		return out
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out
}

func (s *Service) freelancerProfiles(ctx context.Context, proposals []models.Proposal) map[uuid.UUID]models.FreelancerProfile {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, p := range proposals {
		if !seen[p.FreelancerID] {
			seen[p.FreelancerID] = true
			ids = append(ids, p.FreelancerID)
		}
	}
	out := make(map[uuid.UUID]models.FreelancerProfile, len(ids))
	profiles, err := s.store.Profiles().FindFreelancers(ctx, ids)
	if err != nil {
		s.log.Warn("resolve freelancer profiles", zap.Error(err))
		return out
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out
}

func (s *Service) clientProfiles(ctx context.Context, projects map[uuid.UUID]models.Project) map[uuid.UUID]models.ClientProfile {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, p := range projects {
		if !seen[p.ClientID] {
			seen[p.ClientID] = true
			ids = append(ids, p.ClientID)
		}
	}
	out := make(map[uuid.UUID]models.ClientProfile, len(ids))
	profiles, err := s.store.Profiles().FindClients(ctx, ids)
	if err != nil {
		s.log.Warn("resolve client profiles", zap.Error(err))
		return out
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out
}
