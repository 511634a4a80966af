package model

import (
	"github.com/google/uuid"
)

// Relation is a directed link between two annotations. LsFrom/LsTo keep
// the widget-local identifiers so the pair can be re-rendered in the
// annotation widget without a database round trip.
type Relation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FromID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ToID      uuid.UUID `gorm:"type:uuid;not null;index"`
	LsFrom    string    `gorm:"column:ls_from"`
	LsTo      string    `gorm:"column:ls_to"`
	Direction string
	Labels    []string `gorm:"serializer:json"`

	From Annotation `gorm:"foreignKey:FromID;constraint:OnDelete:CASCADE"`
	To   Annotation `gorm:"foreignKey:ToID;constraint:OnDelete:CASCADE"`
}
