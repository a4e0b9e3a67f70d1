package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"accelerator-program-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// The pool must stay on one connection or every new connection sees
	// an empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Program{},
		&models.Phase{},
		&models.ProgramMentor{},
		&models.Form{},
		&models.Submission{},
		&models.ProgramSubmission{},
		&models.Candidature{},
		&models.CandidatureMember{},
		&models.CandidaturePhase{},
		&models.Criterion{},
		&models.Response{},
		&models.PhaseFinalScore{},
		&models.Notification{},
	))

	return db
}

func seedProgram(t *testing.T, db *gorm.DB, status models.ProgramStatus) *models.Program {
	t.Helper()
	program := models.Program{Name: "Acceleration 2024", Status: status}
	require.NoError(t, db.Create(&program).Error)
	return &program
}

func seedPhase(t *testing.T, db *gorm.DB, programID int, name string, dateFin time.Time) *models.Phase {
	t.Helper()
	phase := models.Phase{
		ProgramID: programID,
		Name:      name,
		DateDebut: dateFin.AddDate(0, -3, 0),
		DateFin:   dateFin,
	}
	require.NoError(t, db.Create(&phase).Error)
	return &phase
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.ActorRole) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedStartupUser(t *testing.T, db *gorm.DB, email, company string) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Role: models.RoleUser, CompanyName: &company}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedForm(t *testing.T, db *gorm.DB, programID int) *models.Form {
	t.Helper()
	form := models.Form{ProgramID: programID, Title: "Application"}
	require.NoError(t, db.Create(&form).Error)
	return &form
}

func seedSubmission(t *testing.T, db *gorm.DB, formID int, user *models.User, role models.SubmitterRole) *models.Submission {
	t.Helper()
	submission := models.Submission{FormID: formID, UserID: user.UserID, Role: role}
	require.NoError(t, db.Create(&submission).Error)
	return &submission
}

func seedMentor(t *testing.T, db *gorm.DB, programID int, email string) *models.User {
	t.Helper()
	mentor := seedUser(t, db, email, models.RoleMentor)
	require.NoError(t, db.Create(&models.ProgramMentor{
		ProgramID:    programID,
		MentorUserID: mentor.UserID,
	}).Error)
	return mentor
}

func seedCandidature(t *testing.T, db *gorm.DB, programID int, name string, kind models.CandidatureKind, submissionIDs ...int) *models.Candidature {
	t.Helper()
	candidature := models.Candidature{Name: name, ProgramID: programID, Kind: kind}
	require.NoError(t, db.Create(&candidature).Error)
	for _, submissionID := range submissionIDs {
		require.NoError(t, db.Create(&models.CandidatureMember{
			CandidatureID: candidature.CandidatureID,
			SubmissionID:  submissionID,
		}).Error)
	}
	return &candidature
}

func seedCriterion(t *testing.T, db *gorm.DB, phaseID int, fill models.FillRole, visibleToTeams bool) *models.Criterion {
	t.Helper()
	criterion := models.Criterion{
		PhaseID:        phaseID,
		Name:           "Traction",
		Type:           models.CriterionNumeric,
		Weight:         1,
		FillRole:       fill,
		VisibleToTeams: visibleToTeams,
	}
	require.NoError(t, db.Create(&criterion).Error)
	return &criterion
}

func notificationsFor(t *testing.T, db *gorm.DB, title string) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, db.Where("title = ?", title).Order("notification_id").Find(&rows).Error)
	return rows
}

func notifiedUserIDs(rows []models.Notification) map[int]bool {
	ids := make(map[int]bool, len(rows))
	for _, row := range rows {
		ids[int(row.UserID)] = true
	}
	return ids
}
