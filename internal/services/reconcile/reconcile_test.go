package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository/memstore"
)

func TestRunOnceRepairsDrift(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	client, freelancer := uuid.New(), uuid.New()

	project := &models.Project{ClientID: client, ClientName: "stale", Title: "t", Description: "d", Status: models.ProjectOpen}
	require.NoError(t, store.Projects().Create(ctx, project))
	kept := &models.Proposal{ProjectID: project.ID, FreelancerID: freelancer, FreelancerName: "stale", Content: "x", Bid: decimal.NewFromInt(1), Status: models.ProposalPending}
	require.NoError(t, store.Proposals().Create(ctx, kept))
	orphan := &models.Proposal{ProjectID: uuid.New(), FreelancerID: freelancer, Content: "x", Bid: decimal.NewFromInt(1), Status: models.ProposalPending}
	require.NoError(t, store.Proposals().Create(ctx, orphan))

	require.NoError(t, store.Profiles().SaveClient(ctx, &models.ClientProfile{UserID: client, DisplayName: "Acme"}))
	require.NoError(t, store.Profiles().SaveFreelancer(ctx, &models.FreelancerProfile{UserID: freelancer, DisplayName: "Rina"}))

	s := NewScheduler(store, zap.NewNop())
	results := s.RunOnce(ctx)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err, r.Job)
	}
	assert.EqualValues(t, 1, results[0].Rows)

	_, err := store.Proposals().FindByID(ctx, orphan.ID)
	assert.Error(t, err)
	got, err := store.Proposals().FindByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rina", got.FreelancerName)
	p, err := store.Projects().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.ClientName)

	// Second sweep has nothing left to do.
	for _, r := range s.RunOnce(ctx) {
		assert.Zero(t, r.Rows, r.Job)
	}
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	store := memstore.New()
	store.InjectFault("proposals.delete_orphaned", errors.New("db down"))

	results := NewScheduler(store, zap.NewNop()).RunOnce(context.Background())
	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(memstore.New(), zap.NewNop())
	assert.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}
