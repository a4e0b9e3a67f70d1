package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"accelerator-program-api/models"
)

type winnerFixture struct {
	svc     *WinnerService
	program *models.Program
	seed    *models.Phase
	growth  *models.Phase
}

func newWinnerFixture(t *testing.T, db *gorm.DB) winnerFixture {
	t.Helper()
	program := seedProgram(t, db, models.ProgramActive)
	return winnerFixture{
		svc:     NewWinnerService(db, NewPhaseService(db), NewNotificationService(db)),
		program: program,
		seed:    seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		growth:  seedPhase(t, db, program.ProgramID, "Growth", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestDeclareWinnerRequiresLastPhase(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)
	candidature := seedCandidature(t, db, fx.program.ProgramID, "TeamA", models.CandidatureTeam)

	err := fx.svc.DeclareWinner(fx.seed.PhaseID, candidature.CandidatureID)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))

	var unchanged models.Phase
	require.NoError(t, db.Where("phase_id = ?", fx.seed.PhaseID).First(&unchanged).Error)
	assert.Nil(t, unchanged.WinnerCandidatureID)
}

func TestDeclareWinnerRejectsForeignCandidature(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)

	other := seedProgram(t, db, models.ProgramActive)
	foreign := seedCandidature(t, db, other.ProgramID, "Intrus", models.CandidatureTeam)

	err := fx.svc.DeclareWinner(fx.growth.PhaseID, foreign.CandidatureID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestDeclareWinnerUnknownRefs(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)
	candidature := seedCandidature(t, db, fx.program.ProgramID, "TeamA", models.CandidatureTeam)

	err := fx.svc.DeclareWinner(999, candidature.CandidatureID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = fx.svc.DeclareWinner(fx.growth.PhaseID, 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeclareWinnerSetsWinnerAndFansOut(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)
	form := seedForm(t, db, fx.program.ProgramID)

	mentor := seedMentor(t, db, fx.program.ProgramID, "mentor@program.io")

	alice := seedUser(t, db, "alice@winner.io", models.RoleUser)
	bob := seedUser(t, db, "bob@winner.io", models.RoleUser)
	aliceSub := seedSubmission(t, db, form.FormID, alice, models.SubmitterIndividual)
	bobSub := seedSubmission(t, db, form.FormID, bob, models.SubmitterIndividual)
	winner := seedCandidature(t, db, fx.program.ProgramID, "TeamA", models.CandidatureTeam,
		aliceSub.SubmissionID, bobSub.SubmissionID)

	carol := seedUser(t, db, "carol@loser.io", models.RoleUser)
	carolSub := seedSubmission(t, db, form.FormID, carol, models.SubmitterIndividual)
	seedCandidature(t, db, fx.program.ProgramID, "TeamB", models.CandidatureTeam, carolSub.SubmissionID)

	require.NoError(t, fx.svc.DeclareWinner(fx.growth.PhaseID, winner.CandidatureID))

	var phase models.Phase
	require.NoError(t, db.Where("phase_id = ?", fx.growth.PhaseID).First(&phase).Error)
	require.NotNil(t, phase.WinnerCandidatureID)
	assert.Equal(t, winner.CandidatureID, *phase.WinnerCandidatureID)

	rows := notificationsFor(t, db, "winner_announcement")
	require.Len(t, rows, 4)

	byUser := make(map[int]models.Notification, len(rows))
	for _, row := range rows {
		byUser[int(row.UserID)] = row
	}

	// Winning members get the positive message, everyone else the
	// informative one.
	assert.Equal(t, "success", byUser[alice.UserID].Type)
	assert.Equal(t, "success", byUser[bob.UserID].Type)
	assert.Equal(t, "info", byUser[carol.UserID].Type)
	assert.Equal(t, "info", byUser[mentor.UserID].Type)
	assert.NotEqual(t, byUser[alice.UserID].Message, byUser[carol.UserID].Message)
}

func TestDeclareWinnerIndividualWording(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)
	form := seedForm(t, db, fx.program.ProgramID)

	founder := seedStartupUser(t, db, "founder@acme.io", "Acme Robotics")
	founderSub := seedSubmission(t, db, form.FormID, founder, models.SubmitterStartup)
	solo := seedCandidature(t, db, fx.program.ProgramID, "Acme Robotics", models.CandidatureIndividual, founderSub.SubmissionID)

	require.NoError(t, fx.svc.DeclareWinner(fx.growth.PhaseID, solo.CandidatureID))

	rows := notificationsFor(t, db, "winner_announcement")
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Message, "startup")
}

func TestGetProgramWinner(t *testing.T) {
	db := newTestDB(t)
	fx := newWinnerFixture(t, db)
	candidature := seedCandidature(t, db, fx.program.ProgramID, "TeamA", models.CandidatureTeam)

	_, err := fx.svc.GetProgramWinner(fx.program.ProgramID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, fx.svc.DeclareWinner(fx.growth.PhaseID, candidature.CandidatureID))

	winner, err := fx.svc.GetProgramWinner(fx.program.ProgramID)
	require.NoError(t, err)
	assert.Equal(t, candidature.CandidatureID, winner.CandidatureID)

	_, err = fx.svc.GetProgramWinner(999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
