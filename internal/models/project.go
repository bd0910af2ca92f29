package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectClosed     ProjectStatus = "closed"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// IsActive reports whether the project still counts towards a client's
// active work (open for proposals or being worked on).
func (s ProjectStatus) IsActive() bool {
	return s == ProjectOpen || s == ProjectInProgress
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectClosed:
		return true
	}
	return false
}

type Project struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	// ClientID never changes after creation.
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	ClientName string    `gorm:"type:varchar(120)" json:"client_name"` // denormalized from ClientProfile

	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Budget      decimal.NullDecimal         `gorm:"type:numeric(14,2)" json:"budget"`
	Duration    string                      `gorm:"type:varchar(80)" json:"duration"`
	Skills      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	Visibility  Visibility                  `gorm:"type:varchar(10);not null;default:'public'" json:"visibility"`

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	// Set together when a proposal is accepted.
	FreelancerID       *uuid.UUID `gorm:"type:uuid;index" json:"freelancer_id,omitempty"`
	AcceptedProposalID *uuid.UUID `gorm:"type:uuid" json:"accepted_proposal_id,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
