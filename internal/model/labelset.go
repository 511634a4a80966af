package model

import (
	"github.com/google/uuid"
)

// Labelset is the label vocabulary a task annotates with.
type Labelset struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Labels    []string  `gorm:"serializer:json"`

	Project Project `gorm:"foreignKey:ProjectID"`
}
