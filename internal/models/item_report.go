package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

var ErrImagePairing = errors.New("image and image_ref must be set together")

// ValidItemType reports whether t is one of the accepted report types.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ItemReport is a lost or found posting. OwnerID and Type are fixed at creation.
type ItemReport struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Location    string    `gorm:"not null;size:255" json:"location"`
	Type        string    `gorm:"not null;size:10;index" json:"type"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Image       *string   `gorm:"size:1024" json:"image"`
	ImageRef    *string   `gorm:"size:512" json:"image_ref"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by the service layer, never persisted.
	Owner        *UserSummary `gorm:"-" json:"owner,omitempty"`
	MessageCount int64        `gorm:"-" json:"message_count"`
}

func (r *ItemReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}

func (r *ItemReport) BeforeSave(tx *gorm.DB) error {
	if (r.Image == nil) != (r.ImageRef == nil) {
		return ErrImagePairing
	}
	return nil
}

// UserSummary is the public projection of a user attached to reports and messages.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
