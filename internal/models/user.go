package models

import "time"

// User is the read-model for the authenticated operator. Identity comes
// from the external auth provider; authorization is decided by the admin
// allow-list, not by anything stored here.
type User struct {
	ID          string `json:"id" gorm:"primaryKey;size:255"`
	Email       string `json:"email" gorm:"size:255;index"`
	DisplayName string `json:"display_name" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
