package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accelerator-program-api/models"
	"accelerator-program-api/services"
	"accelerator-program-api/utils"
)

type CreateProgramRequest struct {
	Name        string `json:"nom" binding:"required"`
	Description string `json:"description"`
	IsTemplate  bool   `json:"is_template"`
}

// CreateProgram creates a new program in draft status
func CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	program := models.Program{
		Name:        utils.SanitizeInput(req.Name),
		Description: utils.SanitizeInput(req.Description),
		Status:      models.ProgramDraft,
		IsTemplate:  req.IsTemplate,
	}
	if err := getDB().Create(&program).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to create program"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"programme": program})
}

// GetPrograms lists all programs
func GetPrograms(c *gin.Context) {
	var programs []models.Program
	if err := getDB().Order("program_id").Find(&programs).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to list programs"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"programmes": programs})
}

// GetProgram returns one program with its phases and criteria
func GetProgram(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	var program models.Program
	if err := getDB().Preload("Phases.Criteria").
		Where("program_id = ?", programID).
		First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
			return
		}
		respondWorkflowError(c, services.ErrInternal(err, "failed to load program"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"programme": program})
}

type UpdateProgramStatusRequest struct {
	Status     models.ProgramStatus `json:"status" binding:"required"`
	IsTemplate *bool                `json:"is_template"`
}

// UpdateProgramStatus applies the program lifecycle state machine
func UpdateProgramStatus(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	var req UpdateProgramStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	program, err := programStatusService().UpdateStatus(programID, req.Status, req.IsTemplate)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"programme": program})
}

type AttachMentorRequest struct {
	MentorUserID int `json:"mentor_user_id" binding:"required"`
}

// AttachMentor links a mentor account to a program
func AttachMentor(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	var req AttachMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var program models.Program
	if err := getDB().Where("program_id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
			return
		}
		respondWorkflowError(c, services.ErrInternal(err, "failed to load program"))
		return
	}

	var mentor models.User
	if err := getDB().Where("user_id = ? AND role = ? AND delete_at IS NULL", req.MentorUserID, models.RoleMentor).
		First(&mentor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Mentor not found"})
			return
		}
		respondWorkflowError(c, services.ErrInternal(err, "failed to load mentor"))
		return
	}

	var existing int64
	if err := getDB().Model(&models.ProgramMentor{}).
		Where("program_id = ? AND mentor_user_id = ?", programID, req.MentorUserID).
		Count(&existing).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to check attachment"))
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Mentor already attached to program"})
		return
	}

	attachment := models.ProgramMentor{ProgramID: programID, MentorUserID: req.MentorUserID}
	if err := getDB().Create(&attachment).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to attach mentor"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mentor": attachment})
}

type CreatePhaseRequest struct {
	Name      string    `json:"nom" binding:"required"`
	DateDebut time.Time `json:"date_debut" binding:"required"`
	DateFin   time.Time `json:"date_fin" binding:"required"`
}

// CreatePhase adds a phase to a program
func CreatePhase(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programmeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program id"})
		return
	}

	var req CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.DateFin.After(req.DateDebut) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_fin must be after date_debut"})
		return
	}

	var program models.Program
	if err := getDB().Where("program_id = ?", programID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
			return
		}
		respondWorkflowError(c, services.ErrInternal(err, "failed to load program"))
		return
	}

	phase := models.Phase{
		ProgramID: programID,
		Name:      req.Name,
		DateDebut: req.DateDebut,
		DateFin:   req.DateFin,
	}
	if err := getDB().Create(&phase).Error; err != nil {
		respondWorkflowError(c, services.ErrInternal(err, "failed to create phase"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"phase": phase})
}

type CreateCriterionRequest struct {
	Name               string               `json:"nom" binding:"required"`
	Type               models.CriterionType `json:"type" binding:"required"`
	Weight             float64              `json:"poids"`
	VisibleToMentors   bool                 `json:"visible_to_mentors"`
	VisibleToTeams     bool                 `json:"visible_to_teams"`
	FillRole           models.FillRole      `json:"fill_role" binding:"required"`
	RequiresValidation bool                 `json:"requires_validation"`
}

// CreateCriterion adds an evaluation criterion to a phase
func CreateCriterion(c *gin.Context) {
	phaseID, err := strconv.Atoi(c.Param("phaseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phase id"})
		return
	}

	var req CreateCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	criterion, err := evaluationService().CreateCriterion(phaseID, services.CriterionSpec{
		Name:               req.Name,
		Type:               req.Type,
		Weight:             req.Weight,
		VisibleToMentors:   req.VisibleToMentors,
		VisibleToTeams:     req.VisibleToTeams,
		FillRole:           req.FillRole,
		RequiresValidation: req.RequiresValidation,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"critere": criterion})
}
