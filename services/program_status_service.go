package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"accelerator-program-api/models"
)

// ProgramStatusService governs the Draft/Active/Completed lifecycle and
// the completion fan-out.
type ProgramStatusService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewProgramStatusService(db *gorm.DB, notifier *NotificationService) *ProgramStatusService {
	return &ProgramStatusService{db: db, notifier: notifier}
}

// checkTransition applies the lifecycle table. Same-state transitions are
// no-ops; Draft may move anywhere forward, Active only to Completed,
// Completed nowhere.
func checkTransition(from, to models.ProgramStatus) error {
	if from == to {
		return nil
	}
	switch from {
	case models.ProgramDraft:
		return nil
	case models.ProgramActive:
		if to == models.ProgramCompleted {
			return nil
		}
		return ErrInvalidTransition("an active program cannot return to draft")
	case models.ProgramCompleted:
		return ErrInvalidTransition("a completed program is final and cannot change status")
	}
	return ErrInvalidTransition("unknown current status %q", from)
}

// UpdateStatus moves a program to the target status, updating is_template
// when supplied. Completing a program notifies every mentor, every
// individual-startup submitter and every team member, best-effort.
func (s *ProgramStatusService) UpdateStatus(programID int, target models.ProgramStatus, isTemplate *bool) (*models.Program, error) {
	if !target.IsValid() {
		return nil, ErrInvalid("unknown program status %q", target)
	}

	var program models.Program
	var completed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("program_id = ?", programID).First(&program).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("program %d not found", programID)
			}
			return ErrInternal(err, "failed to load program")
		}

		if err := checkTransition(program.Status, target); err != nil {
			return err
		}
		completed = program.Status != models.ProgramCompleted && target == models.ProgramCompleted

		now := time.Now()
		updates := map[string]interface{}{
			"status":    target,
			"update_at": now,
		}
		if isTemplate != nil {
			updates["is_template"] = *isTemplate
		}
		if err := tx.Model(&models.Program{}).
			Where("program_id = ?", programID).
			Updates(updates).Error; err != nil {
			return ErrInternal(err, "failed to update program status")
		}

		program.Status = target
		program.UpdateAt = &now
		if isTemplate != nil {
			program.IsTemplate = *isTemplate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notifyCompletion(&program)
	}
	return &program, nil
}

// notifyCompletion fans out program_completed to everyone involved in the
// program. Recipients are deduplicated; failures are logged by the
// dispatcher and never abort the transition.
func (s *ProgramStatusService) notifyCompletion(program *models.Program) {
	recipients := make(map[int]struct{})

	var mentorIDs []int
	if err := s.db.Model(&models.ProgramMentor{}).
		Where("program_id = ?", program.ProgramID).
		Pluck("mentor_user_id", &mentorIDs).Error; err == nil {
		for _, id := range mentorIDs {
			recipients[id] = struct{}{}
		}
	}

	var startupUserIDs []int
	if err := s.db.Model(&models.Submission{}).
		Joins("JOIN program_submissions ps ON ps.submission_id = submissions.submission_id").
		Where("ps.program_id = ? AND submissions.role = ?", program.ProgramID, models.SubmitterStartup).
		Pluck("submissions.user_id", &startupUserIDs).Error; err == nil {
		for _, id := range startupUserIDs {
			recipients[id] = struct{}{}
		}
	}

	var teamUserIDs []int
	if err := s.db.Model(&models.Submission{}).
		Joins("JOIN candidature_members cm ON cm.submission_id = submissions.submission_id").
		Joins("JOIN candidatures c ON c.candidature_id = cm.candidature_id").
		Where("c.program_id = ? AND c.kind = ?", program.ProgramID, models.CandidatureTeam).
		Pluck("submissions.user_id", &teamUserIDs).Error; err == nil {
		for _, id := range teamUserIDs {
			recipients[id] = struct{}{}
		}
	}

	reqs := make([]NotificationRequest, 0, len(recipients))
	for userID := range recipients {
		reqs = append(reqs, NotificationRequest{
			UserID:           userID,
			Title:            "program_completed",
			Message:          fmt.Sprintf("The program %q is now completed.", program.Name),
			Type:             "info",
			RelatedProgramID: &program.ProgramID,
		})
	}
	s.notifier.DispatchAll(reqs)
}
