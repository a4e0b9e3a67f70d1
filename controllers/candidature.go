package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"accelerator-program-api/utils"
)

type CreateCandidatureRequest struct {
	Name          string `json:"nom" binding:"required"`
	Description   string `json:"description"`
	ProgramID     int    `json:"programmeId" binding:"required"`
	SubmissionIDs []int  `json:"soumissionId" binding:"required"`
}

// CreateCandidature forms a team candidature from submissions
func CreateCandidature(c *gin.Context) {
	var req CreateCandidatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := utils.SanitizeInput(req.Name)
	description := utils.SanitizeInput(req.Description)

	candidature, err := candidatureService().CreateCandidature(name, description, req.ProgramID, req.SubmissionIDs)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"candidature": candidature})
}

// GetCandidatureMembers lists the submission ids of a candidature
func GetCandidatureMembers(c *gin.Context) {
	candidatureID, err := strconv.Atoi(c.Param("candidatureId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidature id"})
		return
	}

	members, err := candidatureService().GetMembers(candidatureID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"membres": members})
}

// DeleteCandidature removes a candidature and its dependent rows
func DeleteCandidature(c *gin.Context) {
	candidatureID, err := strconv.Atoi(c.Param("candidatureId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidature id"})
		return
	}

	if err := candidatureService().DeleteCandidature(candidatureID); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Candidature deleted"})
}
