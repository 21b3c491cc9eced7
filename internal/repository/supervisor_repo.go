package repository

import (
	"context"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupervisorRepository interface {
	Create(ctx context.Context, s *model.Supervisor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supervisor, error)
	FindByCode(ctx context.Context, codigo string) (*model.Supervisor, error)
	List(ctx context.Context, activeOnly bool) ([]model.Supervisor, error)
	Update(ctx context.Context, s *model.Supervisor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type supervisorRepository struct {
	db *gorm.DB
}

func NewSupervisorRepository(db *gorm.DB) SupervisorRepository {
	return &supervisorRepository{db: db}
}

func (r *supervisorRepository) Create(ctx context.Context, s *model.Supervisor) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *supervisorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supervisor, error) {
	var s model.Supervisor
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supervisorRepository) FindByCode(ctx context.Context, codigo string) (*model.Supervisor, error) {
	var s model.Supervisor
	if err := GetDB(ctx, r.db).First(&s, "codigo = ?", codigo).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supervisorRepository) List(ctx context.Context, activeOnly bool) ([]model.Supervisor, error) {
	var list []model.Supervisor
	q := GetDB(ctx, r.db).Order("nome ASC")
	if activeOnly {
		q = q.Where("ativo = ?", true)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *supervisorRepository) Update(ctx context.Context, s *model.Supervisor) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *supervisorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Supervisor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
