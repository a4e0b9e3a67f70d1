package models

import "time"

// CandidatureKind distinguishes team candidatures from the single-member
// candidatures spun off for individual startups.
type CandidatureKind string

const (
	CandidatureTeam       CandidatureKind = "team"
	CandidatureIndividual CandidatureKind = "individual"
)

type Candidature struct {
	CandidatureID int             `gorm:"primaryKey;column:candidature_id" json:"candidature_id"`
	Name          string          `gorm:"column:name" json:"nom"`
	Description   string          `gorm:"column:description" json:"description"`
	ProgramID     int             `gorm:"column:program_id;index" json:"program_id"`
	Kind          CandidatureKind `gorm:"column:kind" json:"kind"`
	CreateAt      time.Time       `gorm:"column:create_at;autoCreateTime" json:"create_at"`

	// Relations
	Members []CandidatureMember `gorm:"foreignKey:CandidatureID;constraint:OnDelete:CASCADE" json:"membres,omitempty"`
}

// CandidatureMember links a submission to a candidature. Uniqueness is on
// the pair, not on submission_id alone: a fork on phase advance
// legitimately links one submission to both its team candidature and its
// individual candidature.
type CandidatureMember struct {
	CandidatureID int `gorm:"primaryKey;column:candidature_id" json:"candidature_id"`
	SubmissionID  int `gorm:"primaryKey;column:submission_id" json:"submission_id"`
}

// CandidaturePhase is the append-only phase history. The current phase of
// a candidature is its most recent row by passage_timestamp; re-advancing
// to an already-visited phase refreshes the timestamp.
type CandidaturePhase struct {
	CandidatureID    int       `gorm:"primaryKey;column:candidature_id" json:"candidature_id"`
	PhaseID          int       `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	PassageTimestamp time.Time `gorm:"column:passage_timestamp" json:"passage_timestamp"`
}

// TableName overrides
func (Candidature) TableName() string {
	return "candidatures"
}

func (CandidatureMember) TableName() string {
	return "candidature_members"
}

func (CandidaturePhase) TableName() string {
	return "candidature_phases"
}
