package models

import "time"

// CriterionType is the closed set of value kinds a criterion accepts.
type CriterionType string

const (
	CriterionNumeric CriterionType = "numeric"
	CriterionStars   CriterionType = "stars"
	CriterionBool    CriterionType = "bool"
	CriterionSelect  CriterionType = "select"
)

func (t CriterionType) IsValid() bool {
	switch t {
	case CriterionNumeric, CriterionStars, CriterionBool, CriterionSelect:
		return true
	}
	return false
}

// FillRole says who answers a criterion.
type FillRole string

const (
	FillByTeam   FillRole = "team"
	FillByMentor FillRole = "mentor"
)

func (r FillRole) IsValid() bool {
	switch r {
	case FillByTeam, FillByMentor:
		return true
	}
	return false
}

// Criterion is an evaluation item scoped to one phase. Its type is fixed
// at creation.
type Criterion struct {
	CriterionID        int           `gorm:"primaryKey;column:criterion_id" json:"criterion_id"`
	PhaseID            int           `gorm:"column:phase_id;index" json:"phase_id"`
	Name               string        `gorm:"column:name" json:"nom"`
	Type               CriterionType `gorm:"column:type" json:"type"`
	Weight             float64       `gorm:"column:weight" json:"poids"`
	VisibleToMentors   bool          `gorm:"column:visible_to_mentors" json:"visible_to_mentors"`
	VisibleToTeams     bool          `gorm:"column:visible_to_teams" json:"visible_to_teams"`
	FillRole           FillRole      `gorm:"column:fill_role" json:"fill_role"`
	RequiresValidation bool          `gorm:"column:requires_validation" json:"requires_validation"`
}

// Response is one candidature's answer to one criterion ("note" in the
// client-facing surface). At most one per (candidature, criterion); a
// team-filled response may be validated by a mentor exactly once.
type Response struct {
	ResponseID          int       `gorm:"primaryKey;column:response_id" json:"response_id"`
	CandidatureID       int       `gorm:"column:candidature_id;uniqueIndex:uq_candidature_criterion" json:"candidature_id"`
	CriterionID         int       `gorm:"column:criterion_id;uniqueIndex:uq_candidature_criterion" json:"criterion_id"`
	Value               string    `gorm:"column:value" json:"valeur"`
	FilledByMentorID    *int      `gorm:"column:filled_by_mentor_id" json:"filled_by_mentor_id,omitempty"`
	Validated           bool      `gorm:"column:validated" json:"validated"`
	ValidatedByMentorID *int      `gorm:"column:validated_by_mentor_id" json:"validated_by_mentor_id,omitempty"`
	CreateAt            time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`

	// Relations (belongs-to; references is required because the parent
	// key is not named ID)
	Criterion Criterion `gorm:"foreignKey:CriterionID;references:CriterionID" json:"critere,omitempty"`
}

// PhaseFinalScore is a mentor's overall score for a candidature on a
// phase, at most one per (phase, candidature).
type PhaseFinalScore struct {
	ScoreID       int       `gorm:"primaryKey;column:score_id" json:"score_id"`
	PhaseID       int       `gorm:"column:phase_id;uniqueIndex:uq_phase_candidature" json:"phase_id"`
	CandidatureID int       `gorm:"column:candidature_id;uniqueIndex:uq_phase_candidature" json:"candidature_id"`
	MentorID      int       `gorm:"column:mentor_id" json:"mentor_id"`
	Score         float64   `gorm:"column:score" json:"score"`
	CreateAt      time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`
}

// TableName overrides
func (Criterion) TableName() string {
	return "criteria"
}

func (Response) TableName() string {
	return "notes"
}

func (PhaseFinalScore) TableName() string {
	return "phase_final_scores"
}
