package controllers

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"accelerator-program-api/config"
	"accelerator-program-api/services"
)

/* ==========================
   Service wiring
   ========================== */

func getDB() *gorm.DB { return config.DB }

func notifier() *services.NotificationService {
	return services.NewNotificationService(getDB())
}

func candidatureService() *services.CandidatureService {
	return services.NewCandidatureService(getDB(), notifier())
}

func phaseService() *services.PhaseService {
	return services.NewPhaseService(getDB())
}

func evaluationService() *services.EvaluationService {
	return services.NewEvaluationService(getDB())
}

func programStatusService() *services.ProgramStatusService {
	return services.NewProgramStatusService(getDB(), notifier())
}

func winnerService() *services.WinnerService {
	return services.NewWinnerService(getDB(), phaseService(), notifier())
}

/* ==========================
   Helpers
   ========================== */

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		case uint:
			return int(t), true
		}
	}
	return 0, false
}

// respondWorkflowError maps the service error taxonomy to HTTP statuses.
// Internal errors keep their details out of production responses.
func respondWorkflowError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.KindConflict, services.KindInvalidTransition:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if strings.ToLower(os.Getenv("ENVIRONMENT")) == "production" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
