package services

import (
	"log"

	"gorm.io/gorm"

	"accelerator-program-api/config"
	"accelerator-program-api/models"
)

// NotificationRequest is one structured notification to deliver to one
// user. Delivery transport is out of scope; the dispatcher persists the
// record and optionally mails the recipient.
type NotificationRequest struct {
	UserID               int
	Title                string
	Message              string
	Type                 string // info|success|warning|error
	RelatedProgramID     *int
	RelatedCandidatureID *int
}

// NotificationService writes notification rows best-effort: a failed
// write or mail is logged and never propagated to the caller, so a
// dispatcher outage cannot roll back or fail the triggering workflow.
type NotificationService struct {
	db   *gorm.DB
	mail bool
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, mail: config.MailConfigured()}
}

// Dispatch persists one notification. Errors are logged and swallowed.
func (s *NotificationService) Dispatch(req NotificationRequest) {
	n := models.Notification{
		UserID:               uint(req.UserID),
		Title:                req.Title,
		Message:              req.Message,
		Type:                 req.Type,
		RelatedProgramID:     req.RelatedProgramID,
		RelatedCandidatureID: req.RelatedCandidatureID,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("notification dispatch failed for user %d (%s): %v", req.UserID, req.Title, err)
		return
	}

	if s.mail {
		s.mailRecipient(req)
	}
}

// DispatchAll fans out a batch sequentially. Recipients are independent,
// so one failure never stops the rest.
func (s *NotificationService) DispatchAll(reqs []NotificationRequest) {
	for _, req := range reqs {
		s.Dispatch(req)
	}
}

func (s *NotificationService) mailRecipient(req NotificationRequest) {
	var user models.User
	if err := s.db.Select("email").Where("user_id = ? AND delete_at IS NULL", req.UserID).
		First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}
	if err := config.SendMail([]string{user.Email}, req.Title, config.BuildNotificationHTML(req.Title, req.Message)); err != nil {
		log.Printf("notification mail failed for user %d: %v", req.UserID, err)
	}
}
