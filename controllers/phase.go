package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accelerator-program-api/services"
)

type AdvanceRequest struct {
	EntityKind  services.EntityKind `json:"entiteType" binding:"required"`
	EntityID    int                 `json:"entiteId" binding:"required"`
	PhaseNextID int                 `json:"phaseNextId" binding:"required"`
	ProgramID   int                 `json:"programmeId" binding:"required"`
}

// AdvancePhase moves a team or individual startup into a phase
func AdvancePhase(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidatureID, err := phaseService().AdvanceEntity(req.EntityKind, req.EntityID, req.PhaseNextID, req.ProgramID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Phase advanced",
		"candidature_id": candidatureID,
		"phase_id":       req.PhaseNextID,
	})
}

// GetCurrentPhase returns the candidature's most recent phase
func GetCurrentPhase(c *gin.Context) {
	candidatureID, err := strconv.Atoi(c.Param("candidatureId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidature id"})
		return
	}

	phase, err := phaseService().GetCurrentPhase(candidatureID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	if phase == nil {
		c.JSON(http.StatusOK, gin.H{"phase": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phase": phase})
}

type DeclareWinnerRequest struct {
	PhaseID       int `json:"phaseId" binding:"required"`
	CandidatureID int `json:"candidatureId" binding:"required"`
}

// DeclareWinner binds a candidature as winner of the program's last phase
func DeclareWinner(c *gin.Context) {
	var req DeclareWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := winnerService().DeclareWinner(req.PhaseID, req.CandidatureID); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Winner declared"})
}

// GetProgramWinner resolves the declared winner of a program
func GetProgramWinner(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	winner, err := winnerService().GetProgramWinner(programID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gagnant": winner})
}
