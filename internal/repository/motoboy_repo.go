package repository

import (
	"context"

	"motoboy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MotoboyRepository interface {
	Create(ctx context.Context, m *model.Motoboy) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Motoboy, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Motoboy, int64, error)
	Update(ctx context.Context, m *model.Motoboy) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type motoboyRepository struct {
	db *gorm.DB
}

func NewMotoboyRepository(db *gorm.DB) MotoboyRepository {
	return &motoboyRepository{db: db}
}

func (r *motoboyRepository) Create(ctx context.Context, m *model.Motoboy) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *motoboyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Motoboy, error) {
	var m model.Motoboy
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *motoboyRepository) List(ctx context.Context, search string, page, limit int) ([]model.Motoboy, int64, error) {
	var list []model.Motoboy
	var total int64

	db := GetDB(ctx, r.db)
	scoped := func(q *gorm.DB) *gorm.DB {
		if search == "" {
			return q
		}
		like := "%" + search + "%"
		return q.Where("nome ILIKE ? OR matricula ILIKE ? OR placa ILIKE ?", like, like, like)
	}
	if err := scoped(db.Model(&model.Motoboy{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := scoped(db).Order("nome ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *motoboyRepository) Update(ctx context.Context, m *model.Motoboy) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *motoboyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Motoboy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
