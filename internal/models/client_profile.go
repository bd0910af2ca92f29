package models

import (
	"time"

	"github.com/google/uuid"
)

type ClientProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	DisplayName  string `gorm:"type:varchar(120)" json:"display_name"`
	CompanyName  string `gorm:"type:varchar(160)" json:"company_name"`
	PhotoURL     string `gorm:"type:text" json:"photo_url"`
	Industry     string `gorm:"type:varchar(120)" json:"industry"`
	Location     string `gorm:"type:varchar(120)" json:"location"`
	About        string `gorm:"type:text" json:"about"`
	ContactPhone string `gorm:"type:varchar(30)" json:"contact_phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
