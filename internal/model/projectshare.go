package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectShare binds a user to a project with a role.
type ProjectShare struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"not null;check:role IN ('annotator', 'editor')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}

// Project roles
const (
	RoleAnnotator = "annotator" // works assignments
	RoleEditor    = "editor"    // defines tasks and distributes work
)
