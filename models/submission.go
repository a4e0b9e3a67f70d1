package models

import "time"

// SubmitterRole records whether a submission was filed by a registered
// startup or an individual participant.
type SubmitterRole string

const (
	SubmitterStartup    SubmitterRole = "startup"
	SubmitterIndividual SubmitterRole = "particulier"
)

func (r SubmitterRole) IsValid() bool {
	switch r {
	case SubmitterStartup, SubmitterIndividual:
		return true
	}
	return false
}

// Form is an application form published under a program.
type Form struct {
	FormID    int       `gorm:"primaryKey;column:form_id" json:"form_id"`
	ProgramID int       `gorm:"column:program_id;index" json:"program_id"`
	Title     string    `gorm:"column:title" json:"titre"`
	CreateAt  time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`
}

// Submission is one user's completed application form, the atomic
// participant unit. One submission per (form, user).
type Submission struct {
	SubmissionID int           `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	FormID       int           `gorm:"column:form_id;uniqueIndex:uq_form_user" json:"form_id"`
	UserID       int           `gorm:"column:user_id;uniqueIndex:uq_form_user" json:"user_id"`
	Role         SubmitterRole `gorm:"column:role" json:"role"`
	SubmittedAt  time.Time     `gorm:"column:submitted_at;autoCreateTime" json:"submitted_at"`

	// Relations (belongs-to; references is required because the parent
	// keys are not named ID)
	Form Form `gorm:"foreignKey:FormID;references:FormID" json:"form,omitempty"`
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// ProgramSubmission is the program's submission pool. Candidature creation
// links members into the pool when they are not already present.
type ProgramSubmission struct {
	ProgramID    int `gorm:"primaryKey;column:program_id" json:"program_id"`
	SubmissionID int `gorm:"primaryKey;column:submission_id" json:"submission_id"`
}

// TableName overrides
func (Form) TableName() string {
	return "forms"
}

func (Submission) TableName() string {
	return "submissions"
}

func (ProgramSubmission) TableName() string {
	return "program_submissions"
}
