package models

import "time"

// ProgramStatus is the lifecycle state of a program.
type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "draft"
	ProgramActive    ProgramStatus = "active"
	ProgramCompleted ProgramStatus = "completed"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s ProgramStatus) IsValid() bool {
	switch s {
	case ProgramDraft, ProgramActive, ProgramCompleted:
		return true
	}
	return false
}

type Program struct {
	ProgramID   int           `gorm:"primaryKey;column:program_id" json:"program_id"`
	Name        string        `gorm:"column:name" json:"nom"`
	Description string        `gorm:"column:description" json:"description"`
	Status      ProgramStatus `gorm:"column:status" json:"status"`
	IsTemplate  bool          `gorm:"column:is_template" json:"is_template"`
	CreateAt    time.Time     `gorm:"column:create_at;autoCreateTime" json:"create_at"`
	UpdateAt    *time.Time    `gorm:"column:update_at" json:"update_at,omitempty"`

	// Relations
	Phases []Phase `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`
}

type Phase struct {
	PhaseID             int       `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	ProgramID           int       `gorm:"column:program_id;index" json:"program_id"`
	Name                string    `gorm:"column:name" json:"nom"`
	DateDebut           time.Time `gorm:"column:date_debut" json:"date_debut"`
	DateFin             time.Time `gorm:"column:date_fin" json:"date_fin"`
	WinnerCandidatureID *int      `gorm:"column:winner_candidature_id" json:"winner_candidature_id,omitempty"`

	// Relations
	Criteria []Criterion `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE" json:"criteres,omitempty"`
}

// ProgramMentor attaches a mentor account to a program. Mentor-gated
// actions (responses, validation, final scores, winner fan-out) read
// this relation.
type ProgramMentor struct {
	ProgramID    int `gorm:"primaryKey;column:program_id" json:"program_id"`
	MentorUserID int `gorm:"primaryKey;column:mentor_user_id" json:"mentor_user_id"`
}

// TableName overrides
func (Program) TableName() string {
	return "programs"
}

func (Phase) TableName() string {
	return "phases"
}

func (ProgramMentor) TableName() string {
	return "program_mentors"
}
