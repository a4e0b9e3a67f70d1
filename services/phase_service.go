package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"accelerator-program-api/models"
)

// EntityKind names the kind of entity being advanced through phases.
type EntityKind string

const (
	EntityTeam    EntityKind = "equipe"
	EntityStartup EntityKind = "startup"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case EntityTeam, EntityStartup:
		return true
	}
	return false
}

// PhaseService tracks which phase a candidature occupies and its history,
// and resolves a program's terminal phase.
type PhaseService struct {
	db *gorm.DB
}

func NewPhaseService(db *gorm.DB) *PhaseService {
	return &PhaseService{db: db}
}

// GetCurrentPhase returns the phase of the candidature's most recent
// passage, or nil when it has not entered any phase yet.
func (s *PhaseService) GetCurrentPhase(candidatureID int) (*models.Phase, error) {
	var passage models.CandidaturePhase
	err := s.db.Where("candidature_id = ?", candidatureID).
		Order("passage_timestamp DESC").
		First(&passage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ErrInternal(err, "failed to load phase history")
	}

	var phase models.Phase
	if err := s.db.Where("phase_id = ?", passage.PhaseID).First(&phase).Error; err != nil {
		return nil, ErrInternal(err, "failed to load phase")
	}
	return &phase, nil
}

// IsLastPhase reports whether the phase has the maximal date_fin of its
// program. Two phases sharing the maximal date_fin are both last.
func (s *PhaseService) IsLastPhase(phaseID int) (bool, error) {
	var phase models.Phase
	if err := s.db.Where("phase_id = ?", phaseID).First(&phase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound("phase %d not found", phaseID)
		}
		return false, ErrInternal(err, "failed to load phase")
	}

	return s.isLastPhaseTx(s.db, &phase)
}

// isLastPhaseTx runs the terminal-phase check on the caller's handle so
// winner declaration can keep it inside its own transaction.
func (s *PhaseService) isLastPhaseTx(tx *gorm.DB, phase *models.Phase) (bool, error) {
	var later int64
	if err := tx.Model(&models.Phase{}).
		Where("program_id = ? AND date_fin > ?", phase.ProgramID, phase.DateFin).
		Count(&later).Error; err != nil {
		return false, ErrInternal(err, "failed to compare phases")
	}
	return later == 0, nil
}

// Advance records the candidature's passage into the target phase. The
// target is only checked for membership in the candidature's program:
// any phase of the program is a legal target, moving backwards included.
// Re-entering an already-visited phase refreshes the passage timestamp.
func (s *PhaseService) Advance(candidatureID, targetPhaseID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.advanceTx(tx, candidatureID, targetPhaseID)
	})
}

func (s *PhaseService) advanceTx(tx *gorm.DB, candidatureID, targetPhaseID int) error {
	var candidature models.Candidature
	if err := tx.Where("candidature_id = ?", candidatureID).First(&candidature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("candidature %d not found", candidatureID)
		}
		return ErrInternal(err, "failed to load candidature")
	}

	var phase models.Phase
	if err := tx.Where("phase_id = ?", targetPhaseID).First(&phase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("phase %d not found", targetPhaseID)
		}
		return ErrInternal(err, "failed to load phase")
	}
	if phase.ProgramID != candidature.ProgramID {
		return ErrConflict("phase %d does not belong to program %d", targetPhaseID, candidature.ProgramID)
	}

	now := time.Now()
	var passage models.CandidaturePhase
	err := tx.Where("candidature_id = ? AND phase_id = ?", candidatureID, targetPhaseID).
		First(&passage).Error
	switch {
	case err == nil:
		if err := tx.Model(&models.CandidaturePhase{}).
			Where("candidature_id = ? AND phase_id = ?", candidatureID, targetPhaseID).
			Update("passage_timestamp", now).Error; err != nil {
			return ErrInternal(err, "failed to refresh passage")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		passage = models.CandidaturePhase{
			CandidatureID:    candidatureID,
			PhaseID:          targetPhaseID,
			PassageTimestamp: now,
		}
		if err := tx.Create(&passage).Error; err != nil {
			return ErrInternal(err, "failed to record passage")
		}
	default:
		return ErrInternal(err, "failed to check passage")
	}

	return nil
}

// AdvanceEntity is the unified advance used by the HTTP surface. A team
// advances its own candidature. An individual startup submission advances
// a single-member candidature of its own: when the submission sits in a
// multi-member team, a new individual candidature is forked off and
// advanced, the team's membership left untouched; when the submission has
// no candidature at all, one is created on the fly.
func (s *PhaseService) AdvanceEntity(kind EntityKind, entityID, targetPhaseID, programID int) (int, error) {
	if !kind.IsValid() {
		return 0, ErrInvalid("unknown entity kind %q", kind)
	}

	var targetCandidatureID int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		switch kind {
		case EntityTeam:
			targetCandidatureID = entityID
		case EntityStartup:
			targetCandidatureID, err = s.resolveStartupCandidature(tx, entityID, programID)
			if err != nil {
				return err
			}
		}
		return s.advanceTx(tx, targetCandidatureID, targetPhaseID)
	})
	if err != nil {
		return 0, err
	}
	return targetCandidatureID, nil
}

func (s *PhaseService) resolveStartupCandidature(tx *gorm.DB, submissionID, programID int) (int, error) {
	var submission models.Submission
	if err := tx.Preload("User").Preload("Form").Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound("submission %d not found", submissionID)
		}
		return 0, ErrInternal(err, "failed to load submission")
	}
	if submission.Form.ProgramID != programID {
		return 0, ErrNotFound("submission %d does not belong to program %d", submissionID, programID)
	}

	var memberships []models.CandidatureMember
	if err := tx.Joins("JOIN candidatures c ON c.candidature_id = candidature_members.candidature_id").
		Where("candidature_members.submission_id = ? AND c.program_id = ?", submissionID, programID).
		Order("candidature_members.candidature_id").
		Find(&memberships).Error; err != nil {
		return 0, ErrInternal(err, "failed to load memberships")
	}

	// No candidature yet: spin one up for the startup alone.
	if len(memberships) == 0 {
		return s.forkIndividualCandidature(tx, submission, programID)
	}

	// Prefer an existing single-member candidature; a multi-member team
	// forces a fork so the team's own progress is untouched.
	for _, membership := range memberships {
		var size int64
		if err := tx.Model(&models.CandidatureMember{}).
			Where("candidature_id = ?", membership.CandidatureID).
			Count(&size).Error; err != nil {
			return 0, ErrInternal(err, "failed to count members")
		}
		if size == 1 {
			return membership.CandidatureID, nil
		}
	}

	return s.forkIndividualCandidature(tx, submission, programID)
}

// forkIndividualCandidature creates a single-member candidature for the
// startup submission. The submission's existing team membership, if any,
// is deliberately left in place.
func (s *PhaseService) forkIndividualCandidature(tx *gorm.DB, submission models.Submission, programID int) (int, error) {
	name := startupDisplayName(submission.User)

	candidature := models.Candidature{
		Name:        name,
		Description: fmt.Sprintf("Individual track for submission %d", submission.SubmissionID),
		ProgramID:   programID,
		Kind:        models.CandidatureIndividual,
	}
	if err := tx.Create(&candidature).Error; err != nil {
		return 0, ErrInternal(err, "failed to create individual candidature")
	}

	member := models.CandidatureMember{
		CandidatureID: candidature.CandidatureID,
		SubmissionID:  submission.SubmissionID,
	}
	if err := tx.Create(&member).Error; err != nil {
		return 0, ErrInternal(err, "failed to link individual member")
	}

	// The fork enters the submission into the program's pool the same way
	// team creation does, so program-wide fan-outs reach the founder.
	var pooled int64
	if err := tx.Model(&models.ProgramSubmission{}).
		Where("program_id = ? AND submission_id = ?", programID, submission.SubmissionID).
		Count(&pooled).Error; err != nil {
		return 0, ErrInternal(err, "failed to check submission pool")
	}
	if pooled == 0 {
		pool := models.ProgramSubmission{ProgramID: programID, SubmissionID: submission.SubmissionID}
		if err := tx.Create(&pool).Error; err != nil {
			return 0, ErrInternal(err, "failed to pool submission")
		}
	}

	return candidature.CandidatureID, nil
}

// startupDisplayName derives the candidature name from the startup's
// registered company name, falling back to a synthesized placeholder.
func startupDisplayName(user models.User) string {
	if user.CompanyName != nil && strings.TrimSpace(*user.CompanyName) != "" {
		return strings.TrimSpace(*user.CompanyName)
	}
	return "startup-" + uuid.NewString()[:8]
}
