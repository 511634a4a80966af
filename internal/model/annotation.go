package model

import (
	"github.com/google/uuid"
)

// Annotation is a labeled span, or a document-level choice when Start
// and End are nil. LsID is the widget-local identifier the annotation
// widget assigns; relations cross-reference annotations through it.
type Annotation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Label        string    `gorm:"not null"`
	Start        *int
	End          *int
	Text         string
	LsID         string `gorm:"column:ls_id"`
	Confidence   float64
	Origin       string `gorm:"not null;default:'manual';check:origin IN ('manual', 'imported')"`

	Assignment Assignment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
}
