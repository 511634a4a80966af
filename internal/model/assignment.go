package model

import (
	"github.com/google/uuid"
)

// Assignment statuses
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Assignment origins
const (
	OriginManual   = "manual"
	OriginImported = "imported"
)

// Assignment binds one (task, document, annotator slot) triple.
// AnnotatorNumber is the durable slot; AnnotatorID is whichever user
// currently fills it and may be rebound without touching the slot.
// SeqPos orders an annotator's queue within a task and is set once at
// creation, never renumbered.
type Assignment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TaskID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentID      uuid.UUID  `gorm:"type:uuid;not null"`
	AnnotatorID     *uuid.UUID `gorm:"type:uuid;index"`
	AnnotatorNumber int        `gorm:"not null"`
	SeqPos          int        `gorm:"not null"`
	Status          string     `gorm:"not null;default:'pending';check:status IN ('pending', 'done')"`
	Difficulty      int
	Origin          string `gorm:"not null;default:'manual';check:origin IN ('manual', 'imported')"`

	Task      Task     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Document  Document `gorm:"foreignKey:DocumentID"`
	Annotator *User    `gorm:"foreignKey:AnnotatorID"`
}
