package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalWithdrawn ProposalStatus = "withdrawn"
	ProposalCompleted ProposalStatus = "completed"
)

// ActiveProposalStatuses are the statuses that occupy a freelancer's single
// slot on a project.
var ActiveProposalStatuses = []ProposalStatus{ProposalPending, ProposalAccepted}

// IsActive reports whether the proposal is pending or accepted.
func (s ProposalStatus) IsActive() bool {
	return s == ProposalPending || s == ProposalAccepted
}

// WasAccepted reports whether the proposal was hired at some point.
func (s ProposalStatus) WasAccepted() bool {
	return s == ProposalAccepted || s == ProposalCompleted
}

type Proposal struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`

	FreelancerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_id"`
	FreelancerName string    `gorm:"type:varchar(120)" json:"freelancer_name"` // snapshot for display

	// ClientID is stamped by the client that accepts the proposal.
	ClientID *uuid.UUID `gorm:"type:uuid" json:"client_id,omitempty"`

	Content string          `gorm:"type:text;not null" json:"content"`
	Bid     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"bid"`

	Status ProposalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
