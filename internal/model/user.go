package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string
	Name           string
	// Pending marks users created through an invitation who have not
	// logged in yet; InvitedTaskID is the task they were invited to work
	// on, so the first login can land them on it.
	Pending       bool       `gorm:"not null;default:false"`
	InvitedTaskID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}
