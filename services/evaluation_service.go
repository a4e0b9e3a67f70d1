package services

import (
	"errors"

	"gorm.io/gorm"

	"accelerator-program-api/models"
)

// ResponseFilter selects a read-side projection of a candidature's
// responses on a phase.
type ResponseFilter string

const (
	FilterAll           ResponseFilter = "toutes"
	FilterValidatedOnly ResponseFilter = "validees"
	FilterMentorFilled  ResponseFilter = "mentors"
)

func (f ResponseFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterValidatedOnly, FilterMentorFilled:
		return true
	}
	return false
}

// CriterionSpec carries the caller-supplied attributes of a new criterion.
type CriterionSpec struct {
	Name               string
	Type               models.CriterionType
	Weight             float64
	VisibleToMentors   bool
	VisibleToTeams     bool
	FillRole           models.FillRole
	RequiresValidation bool
}

// EvaluationService defines criteria per phase and enforces who may
// submit and validate a response to each.
type EvaluationService struct {
	db *gorm.DB
}

func NewEvaluationService(db *gorm.DB) *EvaluationService {
	return &EvaluationService{db: db}
}

// CreateCriterion adds an evaluation item to a phase. The value type is
// fixed at creation and must be one of the enumerated kinds.
func (s *EvaluationService) CreateCriterion(phaseID int, spec CriterionSpec) (*models.Criterion, error) {
	if spec.Name == "" {
		return nil, ErrInvalid("criterion name is required")
	}
	if !spec.Type.IsValid() {
		return nil, ErrInvalid("unknown criterion type %q", spec.Type)
	}
	if !spec.FillRole.IsValid() {
		return nil, ErrInvalid("unknown fill role %q", spec.FillRole)
	}

	var criterion models.Criterion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var phase models.Phase
		if err := tx.Where("phase_id = ?", phaseID).First(&phase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("phase %d not found", phaseID)
			}
			return ErrInternal(err, "failed to load phase")
		}

		criterion = models.Criterion{
			PhaseID:            phaseID,
			Name:               spec.Name,
			Type:               spec.Type,
			Weight:             spec.Weight,
			VisibleToMentors:   spec.VisibleToMentors,
			VisibleToTeams:     spec.VisibleToTeams,
			FillRole:           spec.FillRole,
			RequiresValidation: spec.RequiresValidation,
		}
		if err := tx.Create(&criterion).Error; err != nil {
			return ErrInternal(err, "failed to create criterion")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &criterion, nil
}

// SubmitTeamResponse records a team's answer to a team-fillable,
// team-visible criterion. A second answer for the same pair is rejected.
func (s *EvaluationService) SubmitTeamResponse(candidatureID, criterionID int, value string) (*models.Response, error) {
	var response models.Response
	err := s.db.Transaction(func(tx *gorm.DB) error {
		criterion, err := loadCriterion(tx, criterionID)
		if err != nil {
			return err
		}
		if criterion.FillRole != models.FillByTeam || !criterion.VisibleToTeams {
			return ErrForbidden("criterion %d is not open to team responses", criterionID)
		}
		if err := ensureCandidatureExists(tx, candidatureID); err != nil {
			return err
		}
		if err := ensureNoResponse(tx, candidatureID, criterionID); err != nil {
			return err
		}

		response = models.Response{
			CandidatureID: candidatureID,
			CriterionID:   criterionID,
			Value:         value,
		}
		if err := tx.Create(&response).Error; err != nil {
			return ErrInternal(err, "failed to create response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// SubmitMentorResponse records a mentor's answer to a mentor-fillable
// criterion. The mentor must be attached to the candidature's program.
func (s *EvaluationService) SubmitMentorResponse(candidatureID, mentorID, criterionID int, value string) (*models.Response, error) {
	var response models.Response
	err := s.db.Transaction(func(tx *gorm.DB) error {
		candidature, err := loadCandidature(tx, candidatureID)
		if err != nil {
			return err
		}
		if err := ensureMentorAttached(tx, candidature.ProgramID, mentorID); err != nil {
			return err
		}

		criterion, err := loadCriterion(tx, criterionID)
		if err != nil {
			return err
		}
		if criterion.FillRole != models.FillByMentor {
			return ErrForbidden("criterion %d is not open to mentor responses", criterionID)
		}
		if err := ensureNoResponse(tx, candidatureID, criterionID); err != nil {
			return err
		}

		mentor := mentorID
		response = models.Response{
			CandidatureID:    candidatureID,
			CriterionID:      criterionID,
			Value:            value,
			FilledByMentorID: &mentor,
		}
		if err := tx.Create(&response).Error; err != nil {
			return ErrInternal(err, "failed to create response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ValidateOrAmendTeamResponse lets an attached mentor validate a team's
// response, optionally amending its value. Validation is a one-shot,
// irreversible transition.
func (s *EvaluationService) ValidateOrAmendTeamResponse(candidatureID, mentorID, criterionID int, newValue *string) (*models.Response, error) {
	var response models.Response
	err := s.db.Transaction(func(tx *gorm.DB) error {
		candidature, err := loadCandidature(tx, candidatureID)
		if err != nil {
			return err
		}
		if err := ensureMentorAttached(tx, candidature.ProgramID, mentorID); err != nil {
			return err
		}

		criterion, err := loadCriterion(tx, criterionID)
		if err != nil {
			return err
		}
		if criterion.FillRole != models.FillByTeam {
			return ErrForbidden("criterion %d is not a team criterion", criterionID)
		}

		if err := tx.Where("candidature_id = ? AND criterion_id = ?", candidatureID, criterionID).
			First(&response).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("no response for candidature %d on criterion %d", candidatureID, criterionID)
			}
			return ErrInternal(err, "failed to load response")
		}
		if response.Validated {
			return ErrForbidden("response is already validated")
		}

		value := response.Value
		if newValue != nil {
			value = *newValue
		}
		mentor := mentorID
		updates := map[string]interface{}{
			"value":                  value,
			"validated":              true,
			"validated_by_mentor_id": mentor,
		}
		if err := tx.Model(&models.Response{}).
			Where("response_id = ?", response.ResponseID).
			Updates(updates).Error; err != nil {
			return ErrInternal(err, "failed to validate response")
		}

		response.Value = value
		response.Validated = true
		response.ValidatedByMentorID = &mentor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListResponses returns the candidature's responses on one phase through
// the requested projection. Pure read, no state change.
func (s *EvaluationService) ListResponses(candidatureID, phaseID int, filter ResponseFilter) ([]models.Response, error) {
	if !filter.IsValid() {
		return nil, ErrInvalid("unknown response filter %q", filter)
	}

	query := s.db.Preload("Criterion").
		Joins("JOIN criteria ON criteria.criterion_id = notes.criterion_id").
		Where("notes.candidature_id = ? AND criteria.phase_id = ?", candidatureID, phaseID)

	switch filter {
	case FilterValidatedOnly:
		query = query.Where("notes.validated = ?", true)
	case FilterMentorFilled:
		query = query.Where("notes.filled_by_mentor_id IS NOT NULL")
	}

	var responses []models.Response
	if err := query.Order("notes.criterion_id").Find(&responses).Error; err != nil {
		return nil, ErrInternal(err, "failed to list responses")
	}
	return responses, nil
}

// RecordFinalScore stores a mentor's overall score for a candidature on a
// phase, one per (phase, candidature).
func (s *EvaluationService) RecordFinalScore(phaseID, candidatureID, mentorID int, score float64) (*models.PhaseFinalScore, error) {
	var final models.PhaseFinalScore
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var phase models.Phase
		if err := tx.Where("phase_id = ?", phaseID).First(&phase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("phase %d not found", phaseID)
			}
			return ErrInternal(err, "failed to load phase")
		}
		if err := ensureMentorAttached(tx, phase.ProgramID, mentorID); err != nil {
			return err
		}
		if err := ensureCandidatureExists(tx, candidatureID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.PhaseFinalScore{}).
			Where("phase_id = ? AND candidature_id = ?", phaseID, candidatureID).
			Count(&existing).Error; err != nil {
			return ErrInternal(err, "failed to check final score")
		}
		if existing > 0 {
			return ErrConflict("final score already recorded for candidature %d on phase %d", candidatureID, phaseID)
		}

		final = models.PhaseFinalScore{
			PhaseID:       phaseID,
			CandidatureID: candidatureID,
			MentorID:      mentorID,
			Score:         score,
		}
		if err := tx.Create(&final).Error; err != nil {
			return ErrInternal(err, "failed to record final score")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &final, nil
}

/* ==========================
   Shared lookups
   ========================== */

func loadCriterion(tx *gorm.DB, criterionID int) (*models.Criterion, error) {
	var criterion models.Criterion
	if err := tx.Where("criterion_id = ?", criterionID).First(&criterion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("criterion %d not found", criterionID)
		}
		return nil, ErrInternal(err, "failed to load criterion")
	}
	return &criterion, nil
}

func loadCandidature(tx *gorm.DB, candidatureID int) (*models.Candidature, error) {
	var candidature models.Candidature
	if err := tx.Where("candidature_id = ?", candidatureID).First(&candidature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("candidature %d not found", candidatureID)
		}
		return nil, ErrInternal(err, "failed to load candidature")
	}
	return &candidature, nil
}

func ensureCandidatureExists(tx *gorm.DB, candidatureID int) error {
	_, err := loadCandidature(tx, candidatureID)
	return err
}

// ensureMentorAttached gates mentor actions on program attachment.
func ensureMentorAttached(tx *gorm.DB, programID, mentorID int) error {
	var attached int64
	if err := tx.Model(&models.ProgramMentor{}).
		Where("program_id = ? AND mentor_user_id = ?", programID, mentorID).
		Count(&attached).Error; err != nil {
		return ErrInternal(err, "failed to check mentor attachment")
	}
	if attached == 0 {
		return ErrForbidden("mentor %d is not attached to program %d", mentorID, programID)
	}
	return nil
}

func ensureNoResponse(tx *gorm.DB, candidatureID, criterionID int) error {
	var existing int64
	if err := tx.Model(&models.Response{}).
		Where("candidature_id = ? AND criterion_id = ?", candidatureID, criterionID).
		Count(&existing).Error; err != nil {
		return ErrInternal(err, "failed to check existing response")
	}
	if existing > 0 {
		return ErrConflict("a response already exists for candidature %d on criterion %d", candidatureID, criterionID)
	}
	return nil
}
