package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"labelhub/internal/mailer"
	"labelhub/internal/model"
	"labelhub/internal/repository"
)

// Outcome classifies the aggregate result of a reassignment call.
type Outcome string

const (
	OutcomeAllReassigned  Outcome = "all_reassigned"
	OutcomeNoChanges      Outcome = "no_changes"
	OutcomePartialFailure Outcome = "partial_failure"
	OutcomeTotalFailure   Outcome = "total_failure"
)

// SlotResult reports what happened to one annotator slot.
type SlotResult struct {
	Slot      int    `json:"slot"`
	Email     string `json:"email"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Result is the tagged aggregate of a reassignment call. Slots that
// succeeded have persisted their new bindings even when the overall
// outcome is a failure, so callers can always tell "nothing changed"
// apart from "some changes happened but the call failed".
type Result struct {
	Outcome    Outcome      `json:"outcome"`
	Message    string       `json:"message"`
	Annotators []SlotResult `json:"annotators"`

	// Errs collects the per-assignment and per-slot failures behind a
	// PartialFailure or TotalFailure outcome.
	Errs error `json:"-"`
}

const (
	msgAllReassigned  = "All the assignments have been reassigned"
	msgNoChanges      = "No changes have been made"
	msgPartialFailure = "Some assignments could not be reassigned"
	msgTotalFailure   = "The assignments could not be reassigned"
)

// Reassigner moves pending work between annotator identities. Slot
// numbers and sequence positions never change; only the bound user
// does, so work history stays intact.
type Reassigner struct {
	users       repository.UserRepositoryInterface
	assignments *repository.AssignmentRepository
	mail        mailer.Mailer
}

func NewReassigner(users repository.UserRepositoryInterface, assignments *repository.AssignmentRepository, mail mailer.Mailer) *Reassigner {
	return &Reassigner{
		users:       users,
		assignments: assignments,
		mail:        mail,
	}
}

// UpdateAssignees re-binds a task's annotator slots to the requested
// emails. emails is ordered by slot; an empty string or an unchanged
// email leaves that slot alone, except that a slot split across users
// is rebound even when the requested email matches. Each touched slot first resolves a
// concrete user (existing account, or a freshly invited one carrying
// the task in its profile); a slot whose user cannot be resolved is
// recorded as failed and its assignments are not touched.
//
// Rebinding is performed assignment-by-assignment with no enclosing
// transaction. A failure mid-slot leaves earlier rebinds in place;
// that partial state is reported, not rolled back. Callers must not
// run two reassignments against the same task concurrently.
func (s *Reassigner) UpdateAssignees(ctx context.Context, taskID uuid.UUID, emails []string) (*Result, error) {
	slots, err := s.assignments.Slots(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var errs *multierror.Error
	succeeded, failed := 0, 0

	for i, slot := range slots {
		if i >= len(emails) {
			break
		}
		email := strings.ToLower(strings.TrimSpace(emails[i]))
		if email == "" {
			continue
		}
		// A mixed slot is never "unchanged": rebinding everything to the
		// requested user is how an interrupted reassignment is repaired.
		if email == slot.Email && !slot.Mixed {
			continue
		}

		slotResult := SlotResult{Slot: slot.AnnotatorNumber, Email: email}

		userID, err := s.resolveUser(ctx, email, taskID)
		if err != nil {
			// The whole slot is skipped; its assignments keep their
			// current annotator.
			slotResult.Error = err.Error()
			errs = multierror.Append(errs, err)
			failed++
			result.Annotators = append(result.Annotators, slotResult)
			continue
		}

		batch, err := s.assignments.GetByTaskAndSlot(ctx, taskID, slot.AnnotatorNumber)
		if err != nil {
			slotResult.Error = err.Error()
			errs = multierror.Append(errs, err)
			failed++
			result.Annotators = append(result.Annotators, slotResult)
			continue
		}

		for _, assignment := range batch {
			if err := s.assignments.Rebind(ctx, assignment.ID, userID); err != nil {
				slotResult.Failed++
				failed++
				errs = multierror.Append(errs, err)
				continue
			}
			slotResult.Succeeded++
			succeeded++
		}

		result.Annotators = append(result.Annotators, slotResult)
	}

	switch {
	case succeeded == 0 && failed == 0:
		result.Outcome = OutcomeNoChanges
		result.Message = msgNoChanges
	case failed == 0:
		result.Outcome = OutcomeAllReassigned
		result.Message = msgAllReassigned
	case succeeded > 0:
		result.Outcome = OutcomePartialFailure
		result.Message = msgPartialFailure
		result.Errs = errs.ErrorOrNil()
	default:
		result.Outcome = OutcomeTotalFailure
		result.Message = msgTotalFailure
		result.Errs = errs.ErrorOrNil()
	}

	logrus.WithFields(logrus.Fields{
		"task":      taskID,
		"outcome":   result.Outcome,
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("assignees updated")

	return result, nil
}

// resolveUser finds the account for an email, or provisions a pending
// one and mails an invitation embedding the target task. Either path
// must produce a concrete user id before any assignment is touched.
func (s *Reassigner) resolveUser(ctx context.Context, email string, taskID uuid.UUID) (uuid.UUID, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if user != nil {
		return user.ID, nil
	}

	invited := &model.User{
		ID:            uuid.New(),
		Email:         email,
		Pending:       true,
		InvitedTaskID: &taskID,
	}
	if err := s.users.Create(ctx, invited); err != nil {
		return uuid.Nil, err
	}

	if err := s.mail.SendInvite(ctx, email, taskID); err != nil {
		return uuid.Nil, err
	}

	return invited.ID, nil
}
