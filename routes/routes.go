package routes

import (
	"accelerator-program-api/controllers"
	"accelerator-program-api/middleware"
	"accelerator-program-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Accelerator Program API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Programs
			programmes := protected.Group("/programmes")
			{
				programmes.GET("", controllers.GetPrograms)
				programmes.GET("/:programmeId", controllers.GetProgram)
				programmes.GET("/:programmeId/soumissions", controllers.GetProgramSubmissions)

				// Only admins manage programs
				programmes.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateProgram)
				programmes.PUT("/:programmeId/status", middleware.RequireRole(models.RoleAdmin), controllers.UpdateProgramStatus)
				programmes.POST("/:programmeId/mentors", middleware.RequireRole(models.RoleAdmin), controllers.AttachMentor)
				programmes.POST("/:programmeId/phases", middleware.RequireRole(models.RoleAdmin), controllers.CreatePhase)
			}

			// Winner lookup keeps the historical singular path
			protected.GET("/programme/:programmeId/gagnant", controllers.GetProgramWinner)

			// Form submissions
			protected.POST("/soumissions", controllers.CreateSubmission)

			// Candidatures
			candidatures := protected.Group("/candidatures")
			{
				candidatures.POST("", controllers.CreateCandidature)
				candidatures.GET("/:candidatureId/membres", controllers.GetCandidatureMembers)
				candidatures.GET("/:candidatureId/phase", controllers.GetCurrentPhase)
				candidatures.DELETE("/:candidatureId", middleware.RequireRole(models.RoleAdmin), controllers.DeleteCandidature)
			}

			// Phase progression
			phases := protected.Group("/phases")
			{
				phases.POST("/avancer", controllers.AdvancePhase)
				phases.POST("/declarer-gagnant", middleware.RequireRole(models.RoleAdmin, models.RoleMentor), controllers.DeclareWinner)
				phases.POST("/:phaseId/criteres", middleware.RequireRole(models.RoleAdmin), controllers.CreateCriterion)
			}

			// Criterion responses ("notes")
			note := protected.Group("/note")
			{
				note.POST("/reponsesEquipe", controllers.SubmitTeamResponse)
				note.POST("/submit/mentor", middleware.RequireRole(models.RoleMentor), controllers.SubmitMentorResponse)
				note.POST("/valider-ou-modifier", middleware.RequireRole(models.RoleMentor), controllers.ValidateOrAmendResponse)
				note.POST("/final", middleware.RequireRole(models.RoleMentor), controllers.RecordFinalScore)
				note.GET("/:candidatureId/:phaseId", controllers.GetResponses)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}

	// Catch-all for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
