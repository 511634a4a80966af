package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"labelhub/internal/model"
	"labelhub/internal/repository"
)

// fakeMailer records invitations and can be told to fail for specific
// addresses.
type fakeMailer struct {
	sent    []string
	failFor map[string]bool
}

func (m *fakeMailer) SendInvite(ctx context.Context, email string, taskID uuid.UUID) error {
	if m.failFor[email] {
		return errors.New("invitation delivery failed")
	}
	m.sent = append(m.sent, email)
	return nil
}

func newReassigner(db *gorm.DB, mail *fakeMailer) *Reassigner {
	return NewReassigner(
		repository.NewUserRepository(db),
		repository.NewAssignmentRepository(db),
		mail,
	)
}

func TestReassigner_AllSlotsReassigned(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	annotatorB := seedUser(t, db, "b@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorA, 1, 2, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorB, 2, 1, model.StatusPending)

	mail := &fakeMailer{}
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"new-a@example.com", "new-b@example.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAllReassigned, result.Outcome)
	assert.Equal(t, "All the assignments have been reassigned", result.Message)
	require.Len(t, result.Annotators, 2)
	assert.Equal(t, 2, result.Annotators[0].Succeeded)
	assert.Equal(t, 1, result.Annotators[1].Succeeded)

	// Both emails got a freshly provisioned pending user carrying the
	// task in its profile, and an invitation.
	assert.ElementsMatch(t, []string{"new-a@example.com", "new-b@example.com"}, mail.sent)
	for _, email := range []string{"new-a@example.com", "new-b@example.com"} {
		var user model.User
		require.NoError(t, db.Where("email = ?", email).First(&user).Error)
		assert.True(t, user.Pending)
		require.NotNil(t, user.InvitedTaskID)
		assert.Equal(t, task.ID, *user.InvitedTaskID)

		var count int64
		require.NoError(t, db.Model(&model.Assignment{}).
			Where("task_id = ? AND annotator_id = ?", task.ID, user.ID).
			Count(&count).Error)
		assert.NotZero(t, count)
	}

	// Slot numbers and sequence positions survive reassignment.
	var assignments []model.Assignment
	require.NoError(t, db.Where("task_id = ?", task.ID).Order("annotator_number").Order("seq_pos").Find(&assignments).Error)
	require.Len(t, assignments, 3)
	assert.Equal(t, []int{1, 1, 2}, []int{assignments[0].AnnotatorNumber, assignments[1].AnnotatorNumber, assignments[2].AnnotatorNumber})
	assert.Equal(t, []int{1, 2, 1}, []int{assignments[0].SeqPos, assignments[1].SeqPos, assignments[2].SeqPos})
}

func TestReassigner_ExistingUserIsReused(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	existing := seedUser(t, db, "c@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)

	mail := &fakeMailer{}
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"c@example.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAllReassigned, result.Outcome)
	assert.Empty(t, mail.sent)

	var assignment model.Assignment
	require.NoError(t, db.Where("task_id = ?", task.ID).First(&assignment).Error)
	require.NotNil(t, assignment.AnnotatorID)
	assert.Equal(t, existing.ID, *assignment.AnnotatorID)
}

func TestReassigner_NoChanges(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	annotatorB := seedUser(t, db, "b@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorB, 2, 1, model.StatusPending)

	var before []model.Assignment
	require.NoError(t, db.Order("annotator_number").Find(&before).Error)

	mail := &fakeMailer{}
	// Current email for slot 1, blank for slot 2: both slots are left
	// alone.
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"a@example.com", ""})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoChanges, result.Outcome)
	assert.Equal(t, "No changes have been made", result.Message)
	assert.Empty(t, result.Annotators)
	assert.Empty(t, mail.sent)

	var after []model.Assignment
	require.NoError(t, db.Order("annotator_number").Find(&after).Error)
	assert.Equal(t, before, after)
}

func TestReassigner_PartialFailurePersistsSuccessfulSlots(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	annotatorB := seedUser(t, db, "b@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorB, 2, 1, model.StatusPending)

	mail := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"good@example.com", "bad@example.com"})
	require.NoError(t, err)

	// Aggregate outcome is a failure, yet the slot that succeeded has
	// persisted its new binding. There is no rollback.
	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	require.Error(t, result.Errs)
	require.Len(t, result.Annotators, 2)
	assert.Equal(t, 1, result.Annotators[0].Succeeded)
	assert.NotEmpty(t, result.Annotators[1].Error)

	var good model.User
	require.NoError(t, db.Where("email = ?", "good@example.com").First(&good).Error)

	var slot1 model.Assignment
	require.NoError(t, db.Where("task_id = ? AND annotator_number = ?", task.ID, 1).First(&slot1).Error)
	require.NotNil(t, slot1.AnnotatorID)
	assert.Equal(t, good.ID, *slot1.AnnotatorID)

	// The failed slot keeps its previous annotator.
	var slot2 model.Assignment
	require.NoError(t, db.Where("task_id = ? AND annotator_number = ?", task.ID, 2).First(&slot2).Error)
	require.NotNil(t, slot2.AnnotatorID)
	assert.Equal(t, annotatorB.ID, *slot2.AnnotatorID)
}

func TestReassigner_SplitSlotKeepsSlotAlignment(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	annotatorB := seedUser(t, db, "b@example.com")
	annotatorC := seedUser(t, db, "c@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	// Slot 1 is split between two users, as an interrupted reassignment
	// leaves it. Slot 2 is intact.
	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorB, 1, 2, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorC, 2, 1, model.StatusPending)

	mail := &fakeMailer{}
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"new-a@example.com", "new-b@example.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAllReassigned, result.Outcome)
	require.Len(t, result.Annotators, 2)
	assert.Equal(t, 1, result.Annotators[0].Slot)
	assert.Equal(t, "new-a@example.com", result.Annotators[0].Email)
	assert.Equal(t, 2, result.Annotators[0].Succeeded)
	assert.Equal(t, 2, result.Annotators[1].Slot)
	assert.Equal(t, "new-b@example.com", result.Annotators[1].Email)
	assert.Equal(t, 1, result.Annotators[1].Succeeded)

	// The first email lands on slot 1 in its entirety, the second on
	// slot 2. The duplicate binding must not shift the email-to-slot
	// correspondence.
	var newA, newB model.User
	require.NoError(t, db.Where("email = ?", "new-a@example.com").First(&newA).Error)
	require.NoError(t, db.Where("email = ?", "new-b@example.com").First(&newB).Error)

	var slot1 []model.Assignment
	require.NoError(t, db.Where("task_id = ? AND annotator_number = ?", task.ID, 1).Find(&slot1).Error)
	require.Len(t, slot1, 2)
	for _, assignment := range slot1 {
		require.NotNil(t, assignment.AnnotatorID)
		assert.Equal(t, newA.ID, *assignment.AnnotatorID)
	}

	var slot2 model.Assignment
	require.NoError(t, db.Where("task_id = ? AND annotator_number = ?", task.ID, 2).First(&slot2).Error)
	require.NotNil(t, slot2.AnnotatorID)
	assert.Equal(t, newB.ID, *slot2.AnnotatorID)
}

func TestReassigner_SplitSlotRepairedByCurrentEmail(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	annotatorB := seedUser(t, db, "b@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)
	seedAssignment(t, db, task, doc, annotatorB, 1, 2, model.StatusPending)

	mail := &fakeMailer{}
	// Resubmitting an email the slot already partially carries re-binds
	// the whole slot to that user.
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"a@example.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAllReassigned, result.Outcome)
	assert.Empty(t, mail.sent)

	var slot1 []model.Assignment
	require.NoError(t, db.Where("task_id = ? AND annotator_number = ?", task.ID, 1).Find(&slot1).Error)
	require.Len(t, slot1, 2)
	for _, assignment := range slot1 {
		require.NotNil(t, assignment.AnnotatorID)
		assert.Equal(t, annotatorA.ID, *assignment.AnnotatorID)
	}
}

func TestReassigner_TotalFailure(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner@example.com")
	annotatorA := seedUser(t, db, "a@example.com")
	project := seedProject(t, db, owner)
	task := seedTask(t, db, project, "ner")
	doc := seedDocument(t, db, project, "doc-1")

	seedAssignment(t, db, task, doc, annotatorA, 1, 1, model.StatusPending)

	mail := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}
	result, err := newReassigner(db, mail).UpdateAssignees(context.Background(), task.ID, []string{"bad@example.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeTotalFailure, result.Outcome)
	require.Error(t, result.Errs)

	// The assignment keeps its previous annotator.
	var assignment model.Assignment
	require.NoError(t, db.Where("task_id = ?", task.ID).First(&assignment).Error)
	require.NotNil(t, assignment.AnnotatorID)
	assert.Equal(t, annotatorA.ID, *assignment.AnnotatorID)
}
