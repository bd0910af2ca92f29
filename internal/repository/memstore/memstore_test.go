package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

func newProject(t *testing.T, s *Store, clientID uuid.UUID) *models.Project {
	t.Helper()
	p := &models.Project{ClientID: clientID, Title: "Logo Design", Description: "New logo", Status: models.ProjectOpen}
	require.NoError(t, s.Projects().Create(context.Background(), p))
	return p
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProject(t, s, uuid.New())

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		p.Status = models.ProjectInProgress
		require.NoError(t, tx.Projects().UpdateIfStatus(ctx, p, models.ProjectOpen))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectOpen, got.Status)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProject(t, s, uuid.New())

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		p.Status = models.ProjectClosed
		return tx.Projects().UpdateIfStatus(ctx, p, models.ProjectOpen)
	})
	require.NoError(t, err)

	got, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectClosed, got.Status)
}

func TestUpdateIfStatusConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProject(t, s, uuid.New())

	p.Status = models.ProjectCompleted
	err := s.Projects().UpdateIfStatus(ctx, p, models.ProjectInProgress)
	assert.ErrorIs(t, err, repository.ErrStateConflict)

	missing := &models.Project{ID: uuid.New(), Status: models.ProjectClosed}
	assert.ErrorIs(t, s.Projects().UpdateIfStatus(ctx, missing, models.ProjectOpen), repository.ErrNotFound)
}

func TestInjectFaultFiresOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("network down")
	s.InjectFault("projects.find_by_id", boom)

	_, err := s.Projects().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, boom)

	_, err = s.Projects().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActiveProposalUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProject(t, s, uuid.New())
	freelancer := uuid.New()

	first := &models.Proposal{ProjectID: p.ID, FreelancerID: freelancer, Content: "hi", Bid: decimal.NewFromInt(100), Status: models.ProposalPending}
	require.NoError(t, s.Proposals().Create(ctx, first))

	second := &models.Proposal{ProjectID: p.ID, FreelancerID: freelancer, Content: "again", Bid: decimal.NewFromInt(90), Status: models.ProposalPending}
	assert.ErrorIs(t, s.Proposals().Create(ctx, second), repository.ErrDuplicate)

	withdrawn := *first
	withdrawn.Status = models.ProposalWithdrawn
	require.NoError(t, s.Proposals().UpdateIfStatus(ctx, &withdrawn, models.ProposalPending))
	assert.NoError(t, s.Proposals().Create(ctx, second))
}

func TestDeleteOrphaned(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := newProject(t, s, uuid.New())
	prop := &models.Proposal{ProjectID: p.ID, FreelancerID: uuid.New(), Bid: decimal.NewFromInt(5), Status: models.ProposalPending}
	require.NoError(t, s.Proposals().Create(ctx, prop))

	n, err := s.Proposals().DeleteOrphaned(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Projects().Delete(ctx, p.ID))
	n, err = s.Proposals().DeleteOrphaned(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Proposals().DeleteOrphaned(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListByClientOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	client := uuid.New()
	a := newProject(t, s, client)
	b := newProject(t, s, client)
	newProject(t, s, uuid.New())

	newest, err := s.Projects().ListByClient(ctx, client, true)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, b.ID, newest[0].ID)

	oldest, err := s.Projects().ListByClient(ctx, client, false)
	require.NoError(t, err)
	assert.Equal(t, a.ID, oldest[0].ID)
}

func TestConditionalUpdateKeepsRenamedDisplayNames(t *testing.T) {
	ctx := context.Background()
	s := New()
	clientID, freelancerID := uuid.New(), uuid.New()

	p := &models.Project{ClientID: clientID, ClientName: "Old Client", Title: "Poster", Description: "A3", Status: models.ProjectOpen}
	require.NoError(t, s.Projects().Create(ctx, p))
	prop := &models.Proposal{ProjectID: p.ID, FreelancerID: freelancerID, FreelancerName: "Old Dev", Content: "hi", Bid: decimal.NewFromInt(10), Status: models.ProposalPending}
	require.NoError(t, s.Proposals().Create(ctx, prop))

	staleProject, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	staleProposal, err := s.Proposals().FindByID(ctx, prop.ID)
	require.NoError(t, err)

	_, err = s.Projects().SetClientName(ctx, clientID, "New Client")
	require.NoError(t, err)
	_, err = s.Proposals().SetFreelancerName(ctx, freelancerID, "New Dev")
	require.NoError(t, err)

	staleProject.Title = "Poster v2"
	require.NoError(t, s.Projects().UpdateIfStatus(ctx, staleProject, models.ProjectOpen))
	staleProposal.Status = models.ProposalRejected
	require.NoError(t, s.Proposals().UpdateIfStatus(ctx, staleProposal, models.ProposalPending))

	gotProject, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poster v2", gotProject.Title)
	assert.Equal(t, "New Client", gotProject.ClientName)

	gotProposal, err := s.Proposals().FindByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, gotProposal.Status)
	assert.Equal(t, "New Dev", gotProposal.FreelancerName)
}
