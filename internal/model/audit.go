package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateSolicitation  = "CREATE_SOLICITATION"
	ActionUpdateSolicitation  = "UPDATE_SOLICITATION"
	ActionApproveSolicitation = "APPROVE_SOLICITATION"
	ActionRejectSolicitation  = "REJECT_SOLICITATION"
	ActionResetSolicitation   = "RESET_SOLICITATION"
	ActionDeleteSolicitation  = "DELETE_SOLICITATION"
	ActionRequestEvidence     = "REQUEST_EVIDENCE"
	ActionAttachEvidence      = "ATTACH_EVIDENCE"
	ActionEvidenceStatus      = "EVIDENCE_STATUS"

	ActionCreateWebhook = "CREATE_WEBHOOK"
	ActionUpdateWebhook = "UPDATE_WEBHOOK"
	ActionDeleteWebhook = "DELETE_WEBHOOK"
)

// AuditLog records who changed what, and when.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(64);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
