package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"accelerator-program-api/models"
)

// WinnerService restricts winner assignment to a program's terminal
// phase and fans out the announcement.
type WinnerService struct {
	db       *gorm.DB
	phases   *PhaseService
	notifier *NotificationService
}

func NewWinnerService(db *gorm.DB, phases *PhaseService, notifier *NotificationService) *WinnerService {
	return &WinnerService{db: db, phases: phases, notifier: notifier}
}

// DeclareWinner binds the candidature as the phase's winner. The phase
// must be its program's last phase and the candidature must belong to
// the same program. Announcements fan out to the winning members, to
// every member of every other candidature, and to the program's mentors.
func (s *WinnerService) DeclareWinner(phaseID, candidatureID int) error {
	var phase models.Phase
	var winner models.Candidature

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phase_id = ?", phaseID).First(&phase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("phase %d not found", phaseID)
			}
			return ErrInternal(err, "failed to load phase")
		}

		if err := tx.Where("candidature_id = ?", candidatureID).First(&winner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("candidature %d not found", candidatureID)
			}
			return ErrInternal(err, "failed to load candidature")
		}

		last, err := s.phases.isLastPhaseTx(tx, &phase)
		if err != nil {
			return err
		}
		if !last {
			return ErrInvalid("phase %d is not the last phase of program %d", phaseID, phase.ProgramID)
		}

		if phase.ProgramID != winner.ProgramID {
			return ErrConflict("candidature %d does not belong to program %d", candidatureID, phase.ProgramID)
		}

		if err := tx.Model(&models.Phase{}).
			Where("phase_id = ?", phaseID).
			Update("winner_candidature_id", candidatureID).Error; err != nil {
			return ErrInternal(err, "failed to set winner")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyWinner(&phase, &winner)
	return nil
}

func (s *WinnerService) notifyWinner(phase *models.Phase, winner *models.Candidature) {
	winnerIsTeam := winner.Kind == models.CandidatureTeam

	winMessage := fmt.Sprintf("Congratulations, your startup won the program with %q.", winner.Name)
	loseMessage := fmt.Sprintf("The startup candidature %q has won the program.", winner.Name)
	if winnerIsTeam {
		winMessage = fmt.Sprintf("Congratulations, your team %q won the program.", winner.Name)
		loseMessage = fmt.Sprintf("The team %q has won the program.", winner.Name)
	}

	var reqs []NotificationRequest

	var winnerUserIDs []int
	if err := s.db.Model(&models.Submission{}).
		Joins("JOIN candidature_members cm ON cm.submission_id = submissions.submission_id").
		Where("cm.candidature_id = ?", winner.CandidatureID).
		Pluck("submissions.user_id", &winnerUserIDs).Error; err == nil {
		for _, userID := range winnerUserIDs {
			reqs = append(reqs, NotificationRequest{
				UserID:               userID,
				Title:                "winner_announcement",
				Message:              winMessage,
				Type:                 "success",
				RelatedProgramID:     &phase.ProgramID,
				RelatedCandidatureID: &winner.CandidatureID,
			})
		}
	}

	var otherUserIDs []int
	if err := s.db.Model(&models.Submission{}).
		Joins("JOIN candidature_members cm ON cm.submission_id = submissions.submission_id").
		Joins("JOIN candidatures c ON c.candidature_id = cm.candidature_id").
		Where("c.program_id = ? AND c.candidature_id <> ?", phase.ProgramID, winner.CandidatureID).
		Pluck("submissions.user_id", &otherUserIDs).Error; err == nil {
		for _, userID := range otherUserIDs {
			reqs = append(reqs, NotificationRequest{
				UserID:               userID,
				Title:                "winner_announcement",
				Message:              loseMessage,
				Type:                 "info",
				RelatedProgramID:     &phase.ProgramID,
				RelatedCandidatureID: &winner.CandidatureID,
			})
		}
	}

	var mentorIDs []int
	if err := s.db.Model(&models.ProgramMentor{}).
		Where("program_id = ?", phase.ProgramID).
		Pluck("mentor_user_id", &mentorIDs).Error; err == nil {
		for _, mentorID := range mentorIDs {
			reqs = append(reqs, NotificationRequest{
				UserID:               mentorID,
				Title:                "winner_announcement",
				Message:              loseMessage,
				Type:                 "info",
				RelatedProgramID:     &phase.ProgramID,
				RelatedCandidatureID: &winner.CandidatureID,
			})
		}
	}

	s.notifier.DispatchAll(reqs)
}

// GetProgramWinner resolves the winning candidature of the program's
// latest phase with a winner declared.
func (s *WinnerService) GetProgramWinner(programID int) (*models.Candidature, error) {
	var program models.Program
	if err := s.db.Where("program_id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("program %d not found", programID)
		}
		return nil, ErrInternal(err, "failed to load program")
	}

	var phase models.Phase
	err := s.db.Where("program_id = ? AND winner_candidature_id IS NOT NULL", programID).
		Order("date_fin DESC").
		First(&phase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("no winner declared for program %d", programID)
		}
		return nil, ErrInternal(err, "failed to resolve winner phase")
	}

	var winner models.Candidature
	if err := s.db.Where("candidature_id = ?", *phase.WinnerCandidatureID).First(&winner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("winner candidature no longer exists")
		}
		return nil, ErrInternal(err, "failed to load winner")
	}
	return &winner, nil
}
