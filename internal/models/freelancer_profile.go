// internal/models/freelancer_profile.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FreelancerProfile is the public record of a student freelancer, keyed by user id.
type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	DisplayName string `gorm:"type:varchar(120)" json:"display_name"`
	PhotoURL    string `gorm:"type:text" json:"photo_url"`
	University  string `gorm:"type:varchar(160)" json:"university"`
	Major       string `gorm:"type:varchar(120)" json:"major"`
	StudyYear   int    `json:"study_year"`
	About       string `gorm:"type:text" json:"about"`

	Skills       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	PortfolioURL string                      `gorm:"type:text" json:"portfolio_url"`
	HourlyRate   *int64                      `json:"hourly_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
