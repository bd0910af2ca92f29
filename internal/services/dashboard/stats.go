package dashboard

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

const (
	AnonymousName = "Anonymous"
	UnknownDate   = "Unknown date"
	dateLayout    = "2 Jan 2006"
)

type ClientStats struct {
	TotalProjects    int             `json:"total_projects"`
	ActiveProjects   int             `json:"active_projects"`
	PendingProposals int             `json:"pending_proposals"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

// ComputeClientStats derives the client dashboard counters. It depends only
// on the set of inputs, not their order.
func ComputeClientStats(projects []models.Project, proposals []models.Proposal) ClientStats {
	st := ClientStats{TotalProjects: len(projects), TotalSpent: decimal.Zero}
	for _, p := range projects {
		if p.Status.IsActive() {
			st.ActiveProjects++
		}
		if p.Status == models.ProjectCompleted && p.Budget.Valid {
			st.TotalSpent = st.TotalSpent.Add(p.Budget.Decimal)
		}
	}
	for _, p := range proposals {
		if p.Status == models.ProposalPending {
			st.PendingProposals++
		}
	}
	return st
}

type FreelancerStats struct {
	ProposalsSent     int             `json:"proposals_sent"`
	PendingProposals  int             `json:"pending_proposals"`
	AcceptedProposals int             `json:"accepted_proposals"`
	CompletedProjects int             `json:"completed_projects"`
	CompletionRate    float64         `json:"completion_rate"`
	TotalEarned       decimal.Decimal `json:"total_earned"`
}

// ComputeFreelancerStats counts a freelancer's proposals. A proposal counts as
// accepted once hired, including after completion.
func ComputeFreelancerStats(proposals []models.Proposal) FreelancerStats {
	st := FreelancerStats{ProposalsSent: len(proposals), TotalEarned: decimal.Zero}
	for _, p := range proposals {
		switch p.Status {
		case models.ProposalPending:
			st.PendingProposals++
		case models.ProposalCompleted:
			st.CompletedProjects++
			st.TotalEarned = st.TotalEarned.Add(p.Bid)
		}
		if p.Status.WasAccepted() {
			st.AcceptedProposals++
		}
	}
	st.CompletionRate = CompletionRate(st.AcceptedProposals, st.ProposalsSent)
	return st
}

// CompletionRate is accepted/sent as a percentage, 0 when nothing was sent.
func CompletionRate(accepted, sent int) float64 {
	if sent == 0 {
		return 0
	}
	return float64(accepted) / float64(sent) * 100
}

// DurationDays is completedAt - acceptedAt in whole days, rounded up. ok is
// false when either timestamp is missing.
func DurationDays(acceptedAt, completedAt *time.Time) (days int, ok bool) {
	if acceptedAt == nil || completedAt == nil || acceptedAt.IsZero() || completedAt.IsZero() {
		return 0, false
	}
	d := completedAt.Sub(*acceptedAt)
	if d <= 0 {
		return 0, true
	}
	return int(math.Ceil(d.Hours() / 24)), true
}

// FormatDate renders t for display, or the placeholder when unknown.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return UnknownDate
	}
	return t.Format(dateLayout)
}

func nameOr(names ...string) string {
	for _, n := range names {
		if n != "" {
			return n
		}
	}
	return AnonymousName
}
