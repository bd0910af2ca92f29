package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository/memstore"
)

type seed struct {
	ctx        context.Context
	store      *memstore.Store
	svc        *Service
	client     uuid.UUID
	freelancer uuid.UUID
	t0         time.Time
}

func newSeed(t *testing.T) *seed {
	t.Helper()
	s := &seed{
		ctx:        context.Background(),
		store:      memstore.New(),
		client:     uuid.New(),
		freelancer: uuid.New(),
		t0:         time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	s.svc = NewService(s.store, zap.NewNop())
	return s
}

func (s *seed) project(t *testing.T, status models.ProjectStatus, budget int64) *models.Project {
	t.Helper()
	p := &models.Project{
		ClientID:   s.client,
		ClientName: "Old Name",
		Title:      "Project " + string(status),
		Status:     status,
		Budget:     decimal.NewNullDecimal(decimal.NewFromInt(budget)),
		CreatedAt:  s.t0,
	}
	require.NoError(t, s.store.Projects().Create(s.ctx, p))
	return p
}

func (s *seed) proposal(t *testing.T, projectID uuid.UUID, status models.ProposalStatus) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		ProjectID:      projectID,
		FreelancerID:   s.freelancer,
		FreelancerName: "Snapshot Name",
		Content:        "pitch",
		Bid:            decimal.NewFromInt(90),
		Status:         status,
		CreatedAt:      s.t0,
	}
	require.NoError(t, s.store.Proposals().Create(s.ctx, p))
	return p
}

// hire stamps the accepted proposal on the project the way the workflow does.
func (s *seed) hire(t *testing.T, p *models.Project, prop *models.Proposal, accepted, completed time.Time) {
	t.Helper()
	prop.AcceptedAt = &accepted
	prop.CompletedAt = &completed
	require.NoError(t, s.store.Proposals().UpdateIfStatus(s.ctx, prop, prop.Status))
	p.FreelancerID = &prop.FreelancerID
	p.AcceptedProposalID = &prop.ID
	p.CompletedAt = &completed
	require.NoError(t, s.store.Projects().UpdateIfStatus(s.ctx, p, p.Status))
}

func TestClientDashboard(t *testing.T) {
	s := newSeed(t)
	open := s.project(t, models.ProjectOpen, 100)
	done := s.project(t, models.ProjectCompleted, 300)
	s.proposal(t, open.ID, models.ProposalPending)
	s.proposal(t, done.ID, models.ProposalCompleted)

	require.NoError(t, s.store.Profiles().SaveFreelancer(s.ctx, &models.FreelancerProfile{
		UserID: s.freelancer, DisplayName: "Rina Putri", PhotoURL: "https://cdn.example/rina.png",
	}))

	d, err := s.svc.ClientDashboard(s.ctx, s.client)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalProjects)
	assert.Equal(t, 1, d.Stats.ActiveProjects)
	assert.Equal(t, 1, d.Stats.PendingProposals)
	assert.Equal(t, "300", d.Stats.TotalSpent.String())

	require.Len(t, d.Proposals, 2)
	for _, row := range d.Proposals {
		assert.Equal(t, "Rina Putri", row.FreelancerName)
		assert.NotEmpty(t, row.ProjectTitle)
		assert.Equal(t, "1 Feb 2026", row.SubmittedOn)
	}
}

func TestClientDashboardFallsBackToPlaceholders(t *testing.T) {
	s := newSeed(t)
	p := s.project(t, models.ProjectOpen, 100)
	prop := s.proposal(t, p.ID, models.ProposalPending)
	prop.FreelancerName = ""
	require.NoError(t, s.store.Proposals().UpdateIfStatus(s.ctx, prop, models.ProposalPending))

	s.store.InjectFault("profiles.find_freelancers", errors.New("profiles offline"))
	d, err := s.svc.ClientDashboard(s.ctx, s.client)
	require.NoError(t, err)
	require.Len(t, d.Proposals, 1)
	assert.Equal(t, AnonymousName, d.Proposals[0].FreelancerName)
}

func TestClientDashboardUnavailable(t *testing.T) {
	s := newSeed(t)
	s.store.InjectFault("projects.list_by_client", errors.New("timeout"))
	_, err := s.svc.ClientDashboard(s.ctx, s.client)
	require.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestFreelancerDashboard(t *testing.T) {
	s := newSeed(t)
	a := s.project(t, models.ProjectInProgress, 100)
	s.proposal(t, a.ID, models.ProposalAccepted)
	s.proposal(t, uuid.New(), models.ProposalRejected) // project gone

	d, err := s.svc.FreelancerDashboard(s.ctx, s.freelancer)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.ProposalsSent)
	assert.Equal(t, 1, d.Stats.AcceptedProposals)
	assert.InDelta(t, 50.0, d.Stats.CompletionRate, 0.0001)

	require.Len(t, d.Proposals, 2)
	var missing, found int
	for _, row := range d.Proposals {
		if row.ProjectMissing {
			missing++
			assert.Equal(t, AnonymousName, row.ClientName)
			continue
		}
		found++
		assert.Equal(t, "Old Name", row.ClientName)
		assert.Equal(t, a.Title, row.ProjectTitle)
	}
	assert.Equal(t, 1, missing)
	assert.Equal(t, 1, found)
}

func TestClientHistory(t *testing.T) {
	s := newSeed(t)
	p := s.project(t, models.ProjectCompleted, 300)
	prop := s.proposal(t, p.ID, models.ProposalCompleted)
	s.proposal(t, s.project(t, models.ProjectOpen, 50).ID, models.ProposalPending)

	accepted := s.t0.Add(2 * time.Hour)
	s.hire(t, p, prop, accepted, accepted.Add(49*time.Hour))
	require.NoError(t, s.store.Reviews().Create(s.ctx, &models.Review{
		ProjectID: p.ID, ProposalID: prop.ID, ClientID: s.client, FreelancerID: s.freelancer, Rating: 4,
	}))

	rows, err := s.svc.ClientHistory(s.ctx, s.client)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Snapshot Name", row.FreelancerName)
	require.NotNil(t, row.DurationDays)
	assert.Equal(t, 3, *row.DurationDays)
	require.NotNil(t, row.Rating)
	assert.Equal(t, 4, *row.Rating)
	assert.Equal(t, "90", row.Bid.String())
	assert.Equal(t, "1 Feb 2026", row.AcceptedOn)
}

func TestClientHistoryWithoutProposal(t *testing.T) {
	s := newSeed(t)
	s.project(t, models.ProjectCompleted, 300)

	rows, err := s.svc.ClientHistory(s.ctx, s.client)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, AnonymousName, rows[0].FreelancerName)
	assert.Equal(t, UnknownDate, rows[0].AcceptedOn)
	assert.Equal(t, UnknownDate, rows[0].CompletedOn)
	assert.Nil(t, rows[0].DurationDays)
}

func TestFreelancerHistory(t *testing.T) {
	s := newSeed(t)
	p := s.project(t, models.ProjectCompleted, 300)
	prop := s.proposal(t, p.ID, models.ProposalCompleted)
	s.hire(t, p, prop, s.t0, s.t0.Add(24*time.Hour))
	require.NoError(t, s.store.Profiles().SaveClient(s.ctx, &models.ClientProfile{UserID: s.client, DisplayName: "Acme"}))

	rows, err := s.svc.FreelancerHistory(s.ctx, s.freelancer)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].ClientName)
	require.NotNil(t, rows[0].DurationDays)
	assert.Equal(t, 1, *rows[0].DurationDays)
}

func TestFreelancerReviews(t *testing.T) {
	s := newSeed(t)
	for i, rating := range []int{5, 4, 4} {
		p := s.project(t, models.ProjectCompleted, 100)
		require.NoError(t, s.store.Reviews().Create(s.ctx, &models.Review{
			ProjectID: p.ID, ClientID: s.client, FreelancerID: s.freelancer, Rating: rating,
			CreatedAt: s.t0.Add(time.Duration(i) * time.Hour),
		}))
	}

	sum, err := s.svc.FreelancerReviews(s.ctx, s.freelancer, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 4.3, sum.Average, 0.0001)
	require.Len(t, sum.Reviews, 2)
	assert.Equal(t, AnonymousName, sum.Reviews[0].ClientName)
	assert.Equal(t, 4, sum.Reviews[0].Rating)

	empty, err := s.svc.FreelancerReviews(s.ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)
	assert.Empty(t, empty.Reviews)
}
