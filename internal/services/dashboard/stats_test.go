package dashboard

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

func project(status models.ProjectStatus, budget int64) models.Project {
	p := models.Project{ID: uuid.New(), Status: status}
	if budget > 0 {
		p.Budget = decimal.NewNullDecimal(decimal.NewFromInt(budget))
	}
	return p
}

func proposal(status models.ProposalStatus, bid int64) models.Proposal {
	return models.Proposal{ID: uuid.New(), Status: status, Bid: decimal.NewFromInt(bid)}
}

func TestComputeClientStats(t *testing.T) {
	projects := []models.Project{
		project(models.ProjectOpen, 100),
		project(models.ProjectInProgress, 200),
		project(models.ProjectCompleted, 300),
		project(models.ProjectCompleted, 0),
		project(models.ProjectClosed, 400),
	}
	proposals := []models.Proposal{
		proposal(models.ProposalPending, 10),
		proposal(models.ProposalPending, 20),
		proposal(models.ProposalAccepted, 30),
		proposal(models.ProposalRejected, 40),
	}

	st := ComputeClientStats(projects, proposals)
	assert.Equal(t, 5, st.TotalProjects)
	assert.Equal(t, 2, st.ActiveProjects)
	assert.Equal(t, 2, st.PendingProposals)
	assert.Equal(t, "300", st.TotalSpent.String())

	// Same result in any order.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(projects), func(a, b int) { projects[a], projects[b] = projects[b], projects[a] })
		rng.Shuffle(len(proposals), func(a, b int) { proposals[a], proposals[b] = proposals[b], proposals[a] })
		got := ComputeClientStats(projects, proposals)
		assert.Equal(t, st.TotalProjects, got.TotalProjects)
		assert.Equal(t, st.ActiveProjects, got.ActiveProjects)
		assert.Equal(t, st.PendingProposals, got.PendingProposals)
		assert.True(t, st.TotalSpent.Equal(got.TotalSpent))
	}
}

func TestComputeClientStatsEmpty(t *testing.T) {
	st := ComputeClientStats(nil, nil)
	assert.Zero(t, st.TotalProjects)
	assert.True(t, st.TotalSpent.IsZero())
}

func TestComputeFreelancerStats(t *testing.T) {
	tests := []struct {
		name      string
		proposals []models.Proposal
		accepted  int
		rate      float64
		earned    string
	}{
		{name: "none sent", proposals: nil, accepted: 0, rate: 0, earned: "0"},
		{
			name: "accepted and completed both count",
			proposals: []models.Proposal{
				proposal(models.ProposalAccepted, 100),
				proposal(models.ProposalCompleted, 250),
				proposal(models.ProposalRejected, 50),
				proposal(models.ProposalPending, 75),
			},
			accepted: 2, rate: 50, earned: "250",
		},
		{
			name:      "all rejected",
			proposals: []models.Proposal{proposal(models.ProposalRejected, 1), proposal(models.ProposalWithdrawn, 1)},
			accepted:  0, rate: 0, earned: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ComputeFreelancerStats(tt.proposals)
			assert.Equal(t, len(tt.proposals), st.ProposalsSent)
			assert.Equal(t, tt.accepted, st.AcceptedProposals)
			assert.InDelta(t, tt.rate, st.CompletionRate, 0.0001)
			assert.Equal(t, tt.earned, st.TotalEarned.String())
		})
	}
}

func TestDurationDays(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		v := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC).Add(d)
		return &v
	}
	tests := []struct {
		name      string
		accepted  *time.Time
		completed *time.Time
		days      int
		ok        bool
	}{
		{"same instant", at(0), at(0), 0, true},
		{"one hour rounds up", at(0), at(time.Hour), 1, true},
		{"exactly two days", at(0), at(48 * time.Hour), 2, true},
		{"two days and a minute", at(0), at(48*time.Hour + time.Minute), 3, true},
		{"completed before accepted", at(time.Hour), at(0), 0, true},
		{"missing accepted", nil, at(0), 0, false},
		{"missing completed", at(0), nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DurationDays(tt.accepted, tt.completed)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, UnknownDate, FormatDate(nil))
	assert.Equal(t, UnknownDate, FormatDate(&time.Time{}))
	d := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "7 Mar 2026", FormatDate(&d))
}
