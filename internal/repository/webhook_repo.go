package repository

import (
	"context"
	"errors"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookConfigRepository interface {
	Create(ctx context.Context, cfg *model.WebhookConfig) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WebhookConfig, error)
	// FindActiveByType returns the newest active config of the given tipo,
	// or nil when there is none.
	FindActiveByType(ctx context.Context, tipo string) (*model.WebhookConfig, error)
	List(ctx context.Context) ([]model.WebhookConfig, error)
	Update(ctx context.Context, cfg *model.WebhookConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebhookLogFilter narrows log listings. Empty fields are ignored.
type WebhookLogFilter struct {
	SolicitacaoID string
	Tipo          string
	Page          int
	Limit         int
}

type WebhookLogRepository interface {
	Create(ctx context.Context, entry *model.WebhookLog) error
	List(ctx context.Context, f WebhookLogFilter) ([]model.WebhookLog, int64, error)
}

type webhookConfigRepository struct {
	db *gorm.DB
}

func NewWebhookConfigRepository(db *gorm.DB) WebhookConfigRepository {
	return &webhookConfigRepository{db: db}
}

func (r *webhookConfigRepository) Create(ctx context.Context, cfg *model.WebhookConfig) error {
	return GetDB(ctx, r.db).Create(cfg).Error
}

func (r *webhookConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WebhookConfig, error) {
	var cfg model.WebhookConfig
	if err := GetDB(ctx, r.db).First(&cfg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *webhookConfigRepository) FindActiveByType(ctx context.Context, tipo string) (*model.WebhookConfig, error) {
	var cfg model.WebhookConfig
	err := GetDB(ctx, r.db).
		Where("tipo = ? AND ativo = ?", tipo, true).
		Order("created_at DESC").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *webhookConfigRepository) List(ctx context.Context) ([]model.WebhookConfig, error) {
	var list []model.WebhookConfig
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *webhookConfigRepository) Update(ctx context.Context, cfg *model.WebhookConfig) error {
	return GetDB(ctx, r.db).Save(cfg).Error
}

func (r *webhookConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.WebhookConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type webhookLogRepository struct {
	db *gorm.DB
}

func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

func (r *webhookLogRepository) Create(ctx context.Context, entry *model.WebhookLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *webhookLogRepository) List(ctx context.Context, f WebhookLogFilter) ([]model.WebhookLog, int64, error) {
	var logs []model.WebhookLog
	var total int64

	db := GetDB(ctx, r.db)
	scoped := func(q *gorm.DB) *gorm.DB {
		if f.SolicitacaoID != "" {
			q = q.Where("solicitacao_id = ?", f.SolicitacaoID)
		}
		if f.Tipo != "" {
			q = q.Where("tipo = ?", f.Tipo)
		}
		return q
	}

	if err := scoped(db.Model(&model.WebhookLog{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := scoped(db).Order("created_at DESC").Offset(offset).Limit(f.Limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
