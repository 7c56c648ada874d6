package services

import (
	"log"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
)

type AuditService struct{}

func NewAuditService() *AuditService {
	return &AuditService{}
}

// Record writes one audit entry. Failures are logged and swallowed; an audit
// write must never fail the action it describes.
func (s *AuditService) Record(actorID uint, action, targetType string, targetID uint, detail string) {
	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] Failed to record %s by user %d: %v", action, actorID, err)
	}
}
