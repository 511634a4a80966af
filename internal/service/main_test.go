package service

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"labelhub/internal/model"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectShare{},
		&model.Labelset{},
		&model.Task{},
		&model.Document{},
		&model.Assignment{},
		&model.Annotation{},
		&model.Relation{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		ID:    uuid.New(),
		Email: email,
		Name:  email,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, owner *model.User) *model.Project {
	t.Helper()
	project := &model.Project{
		ID:      uuid.New(),
		Name:    "test project",
		OwnerID: owner.ID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func seedTask(t *testing.T, db *gorm.DB, project *model.Project, name string) *model.Task {
	t.Helper()
	labelset := &model.Labelset{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Name:      "entities",
		Labels:    []string{"PER", "ORG"},
	}
	if err := db.Create(labelset).Error; err != nil {
		t.Fatalf("seed labelset: %v", err)
	}
	task := &model.Task{
		ID:         uuid.New(),
		ProjectID:  project.ID,
		Name:       name,
		LabelsetID: labelset.ID,
		Level:      model.LevelSpan,
		Guidelines: "label all entities",
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func seedDocument(t *testing.T, db *gorm.DB, project *model.Project, name string) *model.Document {
	t.Helper()
	document := &model.Document{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Name:      name,
		Text:      "some text to annotate",
	}
	if err := db.Create(document).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return document
}

func seedAssignment(t *testing.T, db *gorm.DB, task *model.Task, doc *model.Document, annotator *model.User, slot, seqPos int, status string) *model.Assignment {
	t.Helper()
	assignment := &model.Assignment{
		ID:              uuid.New(),
		TaskID:          task.ID,
		DocumentID:      doc.ID,
		AnnotatorNumber: slot,
		SeqPos:          seqPos,
		Status:          status,
		Origin:          model.OriginManual,
	}
	if annotator != nil {
		assignment.AnnotatorID = &annotator.ID
	}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return assignment
}

func seedAnnotation(t *testing.T, db *gorm.DB, assignment *model.Assignment, label, lsID string, start, end int) *model.Annotation {
	t.Helper()
	annotation := &model.Annotation{
		ID:           uuid.New(),
		AssignmentID: assignment.ID,
		Label:        label,
		Start:        &start,
		End:          &end,
		Text:         "span text",
		LsID:         lsID,
		Confidence:   0.9,
		Origin:       model.OriginManual,
	}
	if err := db.Create(annotation).Error; err != nil {
		t.Fatalf("seed annotation: %v", err)
	}
	return annotation
}

func seedRelation(t *testing.T, db *gorm.DB, from, to *model.Annotation) *model.Relation {
	t.Helper()
	relation := &model.Relation{
		ID:        uuid.New(),
		FromID:    from.ID,
		ToID:      to.ID,
		LsFrom:    from.LsID,
		LsTo:      to.LsID,
		Direction: "right",
		Labels:    []string{"refers-to"},
	}
	if err := db.Create(relation).Error; err != nil {
		t.Fatalf("seed relation: %v", err)
	}
	return relation
}
