package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"accelerator-program-api/models"
)

// CandidatureService owns candidature entities and the membership
// invariant between a submission and a candidature.
type CandidatureService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewCandidatureService(db *gorm.DB, notifier *NotificationService) *CandidatureService {
	return &CandidatureService{db: db, notifier: notifier}
}

// CreateCandidature forms a team candidature from the given submissions.
// Every submission must exist, belong to a form of the program, and not
// already be a member of another candidature. Members are linked into the
// program's submission pool as a side effect.
func (s *CandidatureService) CreateCandidature(name, description string, programID int, submissionIDs []int) (*models.Candidature, error) {
	if name == "" {
		return nil, ErrInvalid("candidature name is required")
	}
	if len(submissionIDs) == 0 {
		return nil, ErrInvalid("at least one submission is required")
	}
	seen := make(map[int]bool, len(submissionIDs))
	for _, submissionID := range submissionIDs {
		if seen[submissionID] {
			return nil, ErrInvalid("submission %d is listed more than once", submissionID)
		}
		seen[submissionID] = true
	}

	var candidature models.Candidature
	var memberUserIDs []int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var program models.Program
		if err := tx.Where("program_id = ?", programID).First(&program).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("program %d not found", programID)
			}
			return ErrInternal(err, "failed to load program")
		}

		submissions := make([]models.Submission, 0, len(submissionIDs))
		for _, submissionID := range submissionIDs {
			var submission models.Submission
			if err := tx.Preload("Form").Where("submission_id = ?", submissionID).
				First(&submission).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound("submission %d not found", submissionID)
				}
				return ErrInternal(err, "failed to load submission")
			}
			if submission.Form.ProgramID != programID {
				return ErrNotFound("submission %d does not belong to program %d", submissionID, programID)
			}

			var existing int64
			if err := tx.Model(&models.CandidatureMember{}).
				Where("submission_id = ?", submissionID).
				Count(&existing).Error; err != nil {
				return ErrInternal(err, "failed to check membership")
			}
			if existing > 0 {
				return ErrConflict("submission %d is already a member of another candidature", submissionID)
			}

			submissions = append(submissions, submission)
		}

		candidature = models.Candidature{
			Name:        name,
			Description: description,
			ProgramID:   programID,
			Kind:        models.CandidatureTeam,
		}
		if err := tx.Create(&candidature).Error; err != nil {
			return ErrInternal(err, "failed to create candidature")
		}

		for _, submission := range submissions {
			member := models.CandidatureMember{
				CandidatureID: candidature.CandidatureID,
				SubmissionID:  submission.SubmissionID,
			}
			if err := tx.Create(&member).Error; err != nil {
				return ErrInternal(err, "failed to link member")
			}

			var pooled int64
			if err := tx.Model(&models.ProgramSubmission{}).
				Where("program_id = ? AND submission_id = ?", programID, submission.SubmissionID).
				Count(&pooled).Error; err != nil {
				return ErrInternal(err, "failed to check submission pool")
			}
			if pooled == 0 {
				pool := models.ProgramSubmission{ProgramID: programID, SubmissionID: submission.SubmissionID}
				if err := tx.Create(&pool).Error; err != nil {
					return ErrInternal(err, "failed to pool submission")
				}
			}

			memberUserIDs = append(memberUserIDs, submission.UserID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	reqs := make([]NotificationRequest, 0, len(memberUserIDs))
	for _, userID := range memberUserIDs {
		reqs = append(reqs, NotificationRequest{
			UserID:               userID,
			Title:                "team_creation",
			Message:              fmt.Sprintf("You have been added to the candidature %q.", candidature.Name),
			Type:                 "info",
			RelatedProgramID:     &candidature.ProgramID,
			RelatedCandidatureID: &candidature.CandidatureID,
		})
	}
	s.notifier.DispatchAll(reqs)

	return &candidature, nil
}

// GetMembers returns the submission ids linked to a candidature.
func (s *CandidatureService) GetMembers(candidatureID int) ([]int, error) {
	var candidature models.Candidature
	if err := s.db.Where("candidature_id = ?", candidatureID).First(&candidature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("candidature %d not found", candidatureID)
		}
		return nil, ErrInternal(err, "failed to load candidature")
	}

	var ids []int
	if err := s.db.Model(&models.CandidatureMember{}).
		Where("candidature_id = ?", candidatureID).
		Order("submission_id").
		Pluck("submission_id", &ids).Error; err != nil {
		return nil, ErrInternal(err, "failed to list members")
	}
	return ids, nil
}

// DeleteCandidature removes a candidature together with its membership
// rows, phase history, responses and final scores, then notifies every
// former member.
func (s *CandidatureService) DeleteCandidature(candidatureID int) error {
	var candidature models.Candidature
	var memberUserIDs []int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("candidature_id = ?", candidatureID).First(&candidature).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("candidature %d not found", candidatureID)
			}
			return ErrInternal(err, "failed to load candidature")
		}

		if err := tx.Model(&models.Submission{}).
			Joins("JOIN candidature_members cm ON cm.submission_id = submissions.submission_id").
			Where("cm.candidature_id = ?", candidatureID).
			Pluck("submissions.user_id", &memberUserIDs).Error; err != nil {
			return ErrInternal(err, "failed to list member users")
		}

		for _, target := range []interface{}{
			&models.Response{},
			&models.PhaseFinalScore{},
			&models.CandidaturePhase{},
			&models.CandidatureMember{},
		} {
			if err := tx.Where("candidature_id = ?", candidatureID).Delete(target).Error; err != nil {
				return ErrInternal(err, "failed to cascade delete")
			}
		}

		if err := tx.Delete(&models.Candidature{}, "candidature_id = ?", candidatureID).Error; err != nil {
			return ErrInternal(err, "failed to delete candidature")
		}

		return nil
	})
	if err != nil {
		return err
	}

	reqs := make([]NotificationRequest, 0, len(memberUserIDs))
	for _, userID := range memberUserIDs {
		reqs = append(reqs, NotificationRequest{
			UserID:           userID,
			Title:            "candidature_removed",
			Message:          fmt.Sprintf("The candidature %q has been removed from the program.", candidature.Name),
			Type:             "warning",
			RelatedProgramID: &candidature.ProgramID,
		})
	}
	s.notifier.DispatchAll(reqs)

	return nil
}
