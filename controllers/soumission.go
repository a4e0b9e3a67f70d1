package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accelerator-program-api/models"
	"accelerator-program-api/services"
)

type CreateSubmissionRequest struct {
	FormID int                  `json:"formulaireId" binding:"required"`
	Role   models.SubmitterRole `json:"role" binding:"required"`
}

// CreateSubmission files the current user's application form. One
// submission per (form, user).
func CreateSubmission(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown submitter role"})
		return
	}

	var form models.Form
	if err := getDB().Where("form_id = ?", req.FormID).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
			return
		}
		respondWorkflowError(c, services.ErrInternal(err, "failed to load form"))
		return
	}

	var existing int64
	if err := getDB().Model(&models.Submission{}).
		Where("form_id = ? AND user_id = ?", req.FormID, userID).
		Count(&existing).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to check submission"))
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Form already submitted"})
		return
	}

	submission := models.Submission{
		FormID: req.FormID,
		UserID: userID,
		Role:   req.Role,
	}
	if err := getDB().Create(&submission).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to create submission"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"soumission": submission})
}

// GetProgramSubmissions lists the submissions filed on a program's forms
func GetProgramSubmissions(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	var submissions []models.Submission
	if err := getDB().Preload("Form").
		Joins("JOIN forms ON forms.form_id = submissions.form_id").
		Where("forms.program_id = ?", programID).
		Order("submissions.submission_id").
		Find(&submissions).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to list submissions"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"soumissions": submissions})
}
