package repository

import (
	"context"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolicitationFilter narrows List. Empty fields are ignored.
type SolicitationFilter struct {
	AprovacaoSup     string
	Aprovacao        string
	Categoria        model.Category
	SupervisorCodigo string
	Search           string // matches nome or placa
	Page             int
	Limit            int
}

type SolicitationRepository interface {
	Create(ctx context.Context, s *model.Solicitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Solicitation, error)
	List(ctx context.Context, f SolicitationFilter) ([]model.Solicitation, int64, error)
	// Updates writes only the given columns. A nil value stores NULL.
	Updates(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type solicitationRepository struct {
	db *gorm.DB
}

func NewSolicitationRepository(db *gorm.DB) SolicitationRepository {
	return &solicitationRepository{db: db}
}

func (r *solicitationRepository) Create(ctx context.Context, s *model.Solicitation) error {
	return GetDB(ctx, r.db).Omit("Supervisor").Create(s).Error
}

func (r *solicitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Solicitation, error) {
	var s model.Solicitation
	if err := GetDB(ctx, r.db).Preload("Supervisor").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *solicitationRepository) List(ctx context.Context, f SolicitationFilter) ([]model.Solicitation, int64, error) {
	var rows []model.Solicitation
	var total int64

	db := GetDB(ctx, r.db)
	query := applySolicitationFilter(db.Model(&model.Solicitation{}), f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	fetch := applySolicitationFilter(db.Preload("Supervisor"), f)
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func applySolicitationFilter(q *gorm.DB, f SolicitationFilter) *gorm.DB {
	if f.AprovacaoSup != "" {
		q = q.Where("aprovacao_sup = ?", f.AprovacaoSup)
	}
	if f.Aprovacao != "" {
		q = q.Where("aprovacao = ?", f.Aprovacao)
	}
	if f.Categoria != "" {
		q = q.Where("categoria = ?", f.Categoria)
	}
	if f.SupervisorCodigo != "" {
		q = q.Where("supervisor_codigo = ?", f.SupervisorCodigo)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("nome ILIKE ? OR placa ILIKE ?", like, like)
	}
	return q
}

func (r *solicitationRepository) Updates(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	res := GetDB(ctx, r.db).Model(&model.Solicitation{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *solicitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Solicitation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
