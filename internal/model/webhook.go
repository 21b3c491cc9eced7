package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Webhook endpoint categories (tipo).
const (
	WebhookTypeApproval = "aprovacao"
	WebhookTypeGeneral  = "geral"
)

// Dispatch defaults applied when a config leaves them unset.
const (
	DefaultWebhookTimeoutMs = 30000
	DefaultWebhookRetries   = 3
)

// WebhookConfig describes where and how one category of notification is delivered.
type WebhookConfig struct {
	ID            uuid.UUID                            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome          string                               `gorm:"type:varchar(255);not null" json:"nome"`
	Tipo          string                               `gorm:"type:varchar(30);not null;index" json:"tipo"`
	URL           string                               `gorm:"type:text;not null" json:"url"`
	Ativo         bool                                 `gorm:"not null;default:true;index" json:"ativo"`
	Descricao     *string                              `gorm:"type:text" json:"descricao"`
	Headers       datatypes.JSONType[map[string]string] `gorm:"type:jsonb" json:"headers"`
	Timeout       int                                  `gorm:"not null;default:30000" json:"timeout"` // milliseconds
	RetryAttempts int                                  `gorm:"not null;default:3" json:"retry_attempts"`
	CreatedAt     time.Time                            `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                            `json:"updated_at"`
}

func (WebhookConfig) TableName() string {
	return "webhook_configs_motoboy"
}

// WebhookLog is one delivery attempt. Rows are append-only.
type WebhookLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WebhookConfigID *uuid.UUID     `gorm:"type:uuid;index" json:"webhook_config_id"` // nil for the startup fallback endpoint
	SolicitacaoID   string         `gorm:"type:varchar(64);index" json:"solicitacao_id"`
	Tipo            string         `gorm:"type:varchar(30);not null;index" json:"tipo"`
	URL             string         `gorm:"type:text;not null" json:"url"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ResponseStatus  *int           `json:"response_status"`
	ResponseBody    *string        `gorm:"type:text" json:"response_body"`
	ErrorMessage    *string        `gorm:"type:text" json:"error_message"`
	Tentativa       int            `gorm:"not null" json:"tentativa"`
	Sucesso         bool           `gorm:"not null;default:false" json:"sucesso"`
	TempoResposta   int            `json:"tempo_resposta"` // milliseconds
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs_motoboy"
}
