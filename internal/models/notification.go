package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotifyNewProposal       NotificationKind = "new_proposal"
	NotifyHired             NotificationKind = "hired"
	NotifyProposalRejected  NotificationKind = "proposal_rejected"
	NotifyProposalWithdrawn NotificationKind = "proposal_withdrawn"
	NotifyProjectCompleted  NotificationKind = "project_completed"
	NotifyProjectClosed     NotificationKind = "project_closed"
)

type Notification struct {
	ID     uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Kind   NotificationKind `gorm:"type:varchar(40);not null" json:"kind"`

	Title   string         `gorm:"type:varchar(200)" json:"title"`
	Message string         `gorm:"type:text" json:"message"`
	Payload datatypes.JSON `json:"payload"`

	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
