package model

import (
	"time"

	"github.com/google/uuid"
)

// Annotation granularity levels
const (
	LevelDocument = "document" // one choice per document
	LevelSpan     = "span"     // labeled character spans
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	LabelsetID  uuid.UUID `gorm:"type:uuid;not null"`
	Level       string    `gorm:"not null;check:level IN ('document', 'span')"`
	Guidelines  string
	ModelRef    *string // optional ML-assist model reference
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project  Project  `gorm:"foreignKey:ProjectID"`
	Labelset Labelset `gorm:"foreignKey:LabelsetID"`
}
