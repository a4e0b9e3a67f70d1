package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-program-api/models"
)

func TestIsLastPhase(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	seedPhaseAt := func(name string, dateFin time.Time) *models.Phase {
		return seedPhase(t, db, program.ProgramID, name, dateFin)
	}
	seedPhaseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	growthDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seed := seedPhaseAt("Seed", seedPhaseDate)
	growth := seedPhaseAt("Growth", growthDate)

	last, err := svc.IsLastPhase(seed.PhaseID)
	require.NoError(t, err)
	assert.False(t, last)

	last, err = svc.IsLastPhase(growth.PhaseID)
	require.NoError(t, err)
	assert.True(t, last)

	// A tie on the maximal date_fin makes both phases last.
	demo := seedPhaseAt("Demo Day", growthDate)
	for _, phase := range []*models.Phase{growth, demo} {
		last, err = svc.IsLastPhase(phase.PhaseID)
		require.NoError(t, err)
		assert.True(t, last)
	}

	_, err = svc.IsLastPhase(999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAdvanceRecordsAndRefreshesPassage(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	seed := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	growth := seedPhase(t, db, program.ProgramID, "Growth", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	candidature := seedCandidature(t, db, program.ProgramID, "TeamA", models.CandidatureTeam)

	current, err := svc.GetCurrentPhase(candidature.CandidatureID)
	require.NoError(t, err)
	assert.Nil(t, current)

	require.NoError(t, svc.Advance(candidature.CandidatureID, seed.PhaseID))
	require.NoError(t, svc.Advance(candidature.CandidatureID, growth.PhaseID))

	current, err = svc.GetCurrentPhase(candidature.CandidatureID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, growth.PhaseID, current.PhaseID)

	// Moving back to an earlier phase is allowed and refreshes the row
	// instead of duplicating it.
	require.NoError(t, svc.Advance(candidature.CandidatureID, seed.PhaseID))

	current, err = svc.GetCurrentPhase(candidature.CandidatureID)
	require.NoError(t, err)
	assert.Equal(t, seed.PhaseID, current.PhaseID)

	var passages int64
	require.NoError(t, db.Model(&models.CandidaturePhase{}).
		Where("candidature_id = ?", candidature.CandidatureID).Count(&passages).Error)
	assert.EqualValues(t, 2, passages)
}

func TestAdvanceRejectsForeignPhase(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	other := seedProgram(t, db, models.ProgramActive)
	foreign := seedPhase(t, db, other.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	candidature := seedCandidature(t, db, program.ProgramID, "TeamA", models.CandidatureTeam)

	err := svc.Advance(candidature.CandidatureID, foreign.PhaseID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAdvanceEntityTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	candidature := seedCandidature(t, db, program.ProgramID, "TeamA", models.CandidatureTeam)

	got, err := svc.AdvanceEntity(EntityTeam, candidature.CandidatureID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)
	assert.Equal(t, candidature.CandidatureID, got)
}

func TestAdvanceEntityRejectsUnknownKind(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	_, err := svc.AdvanceEntity(EntityKind("jury"), 1, 1, 1)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestAdvanceEntityStartupForksFromTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Growth", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	form := seedForm(t, db, program.ProgramID)
	founder := seedStartupUser(t, db, "founder@acme.io", "Acme Robotics")
	mate := seedUser(t, db, "mate@acme.io", models.RoleUser)
	founderSub := seedSubmission(t, db, form.FormID, founder, models.SubmitterStartup)
	mateSub := seedSubmission(t, db, form.FormID, mate, models.SubmitterIndividual)
	team := seedCandidature(t, db, program.ProgramID, "TeamA", models.CandidatureTeam,
		founderSub.SubmissionID, mateSub.SubmissionID)

	forkedID, err := svc.AdvanceEntity(EntityStartup, founderSub.SubmissionID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)
	require.NotEqual(t, team.CandidatureID, forkedID)

	var forked models.Candidature
	require.NoError(t, db.Where("candidature_id = ?", forkedID).First(&forked).Error)
	assert.Equal(t, "Acme Robotics", forked.Name)
	assert.Equal(t, models.CandidatureIndividual, forked.Kind)

	// The forked candidature holds only the startup's submission; the
	// team keeps its full membership, so the submission is now linked
	// twice.
	var forkedMembers []models.CandidatureMember
	require.NoError(t, db.Where("candidature_id = ?", forkedID).Find(&forkedMembers).Error)
	require.Len(t, forkedMembers, 1)
	assert.Equal(t, founderSub.SubmissionID, forkedMembers[0].SubmissionID)

	var teamMembers int64
	require.NoError(t, db.Model(&models.CandidatureMember{}).
		Where("candidature_id = ?", team.CandidatureID).Count(&teamMembers).Error)
	assert.EqualValues(t, 2, teamMembers)

	var links int64
	require.NoError(t, db.Model(&models.CandidatureMember{}).
		Where("submission_id = ?", founderSub.SubmissionID).Count(&links).Error)
	assert.EqualValues(t, 2, links)

	// Only the fork advanced.
	current, err := svc.GetCurrentPhase(forkedID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, phase.PhaseID, current.PhaseID)

	teamCurrent, err := svc.GetCurrentPhase(team.CandidatureID)
	require.NoError(t, err)
	assert.Nil(t, teamCurrent)
}

func TestAdvanceEntityStartupPlaceholderName(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	form := seedForm(t, db, program.ProgramID)
	founder := seedUser(t, db, "founder@nameless.io", models.RoleUser)
	sub := seedSubmission(t, db, form.FormID, founder, models.SubmitterStartup)

	forkedID, err := svc.AdvanceEntity(EntityStartup, sub.SubmissionID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)

	var forked models.Candidature
	require.NoError(t, db.Where("candidature_id = ?", forkedID).First(&forked).Error)
	assert.True(t, strings.HasPrefix(forked.Name, "startup-"), "got %q", forked.Name)
	assert.Len(t, forked.Name, len("startup-")+8)
}

func TestAdvanceEntityStartupReusesSingleMemberCandidature(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	form := seedForm(t, db, program.ProgramID)
	founder := seedStartupUser(t, db, "founder@solo.io", "Solo")
	sub := seedSubmission(t, db, form.FormID, founder, models.SubmitterStartup)
	solo := seedCandidature(t, db, program.ProgramID, "Solo", models.CandidatureIndividual, sub.SubmissionID)

	got, err := svc.AdvanceEntity(EntityStartup, sub.SubmissionID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)
	assert.Equal(t, solo.CandidatureID, got)

	var total int64
	require.NoError(t, db.Model(&models.Candidature{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestAdvanceEntityStartupRejectsForeignSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	home := seedProgram(t, db, models.ProgramActive)
	homeForm := seedForm(t, db, home.ProgramID)
	founder := seedStartupUser(t, db, "founder@acme.io", "Acme Robotics")
	sub := seedSubmission(t, db, homeForm.FormID, founder, models.SubmitterStartup)

	other := seedProgram(t, db, models.ProgramActive)
	otherPhase := seedPhase(t, db, other.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.AdvanceEntity(EntityStartup, sub.SubmissionID, otherPhase.PhaseID, other.ProgramID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	// No fork is created off a submission from another program.
	var total int64
	require.NoError(t, db.Model(&models.Candidature{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestAdvanceEntityStartupForkEntersPool(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	form := seedForm(t, db, program.ProgramID)
	founder := seedStartupUser(t, db, "founder@acme.io", "Acme Robotics")
	sub := seedSubmission(t, db, form.FormID, founder, models.SubmitterStartup)

	_, err := svc.AdvanceEntity(EntityStartup, sub.SubmissionID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)

	var pooled int64
	require.NoError(t, db.Model(&models.ProgramSubmission{}).
		Where("program_id = ? AND submission_id = ?", program.ProgramID, sub.SubmissionID).
		Count(&pooled).Error)
	assert.EqualValues(t, 1, pooled)

	// Advancing again reuses the fork and never duplicates the pool row.
	_, err = svc.AdvanceEntity(EntityStartup, sub.SubmissionID, phase.PhaseID, program.ProgramID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ProgramSubmission{}).
		Where("program_id = ? AND submission_id = ?", program.ProgramID, sub.SubmissionID).
		Count(&pooled).Error)
	assert.EqualValues(t, 1, pooled)
}

func TestAdvanceEntityStartupUnknownSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := NewPhaseService(db)

	program := seedProgram(t, db, models.ProgramActive)
	phase := seedPhase(t, db, program.ProgramID, "Seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.AdvanceEntity(EntityStartup, 123, phase.PhaseID, program.ProgramID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
