package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accelerator-program-api/services"
)

type TeamResponseRequest struct {
	CandidatureID int    `json:"candidatureId" binding:"required"`
	CriterionID   int    `json:"critereId" binding:"required"`
	Value         string `json:"valeur" binding:"required"`
}

// SubmitTeamResponse records a team's answer to a criterion
func SubmitTeamResponse(c *gin.Context) {
	var req TeamResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := evaluationService().SubmitTeamResponse(req.CandidatureID, req.CriterionID, req.Value)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": response})
}

type MentorResponseRequest struct {
	CandidatureID int    `json:"candidatureId" binding:"required"`
	CriterionID   int    `json:"critereId" binding:"required"`
	Value         string `json:"valeur" binding:"required"`
}

// SubmitMentorResponse records an attached mentor's answer to a criterion
func SubmitMentorResponse(c *gin.Context) {
	mentorID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req MentorResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := evaluationService().SubmitMentorResponse(req.CandidatureID, mentorID, req.CriterionID, req.Value)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": response})
}

type ValidateResponseRequest struct {
	CandidatureID int     `json:"candidatureId" binding:"required"`
	CriterionID   int     `json:"critereId" binding:"required"`
	NewValue      *string `json:"valeur"`
}

// ValidateOrAmendResponse lets a mentor validate a team response, optionally amending it
func ValidateOrAmendResponse(c *gin.Context) {
	mentorID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req ValidateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := evaluationService().ValidateOrAmendTeamResponse(req.CandidatureID, mentorID, req.CriterionID, req.NewValue)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": response})
}

type FinalScoreRequest struct {
	PhaseID       int     `json:"phaseId" binding:"required"`
	CandidatureID int     `json:"candidatureId" binding:"required"`
	Score         float64 `json:"score" binding:"required"`
}

// RecordFinalScore stores a mentor's overall phase score for a candidature
func RecordFinalScore(c *gin.Context) {
	mentorID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req FinalScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := evaluationService().RecordFinalScore(req.PhaseID, req.CandidatureID, mentorID, req.Score)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"score": score})
}

// GetResponses returns a candidature's responses on a phase, filtered by
// ?filtre=toutes|validees|mentors (default toutes)
func GetResponses(c *gin.Context) {
	candidatureID, err := strconv.Atoi(c.Param("candidatureId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidature id"})
		return
	}
	phaseID, err := strconv.Atoi(c.Param("phaseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phase id"})
		return
	}

	filter := services.ResponseFilter(c.DefaultQuery("filtre", string(services.FilterAll)))

	responses, err := evaluationService().ListResponses(candidatureID, phaseID, filter)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": responses})
}
