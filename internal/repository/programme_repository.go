package repository

import (
	"context"
	"faaqs_backend/internal/model"

	"gorm.io/gorm"
)

type ProgrammeRepository struct {
	DB *gorm.DB
}

func NewProgrammeRepository(db *gorm.DB) *ProgrammeRepository {
	return &ProgrammeRepository{DB: db}
}

func (r *ProgrammeRepository) Create(ctx context.Context, p *model.Programme) error {
	return translate("create programme", r.DB.WithContext(ctx).Create(p).Error)
}

func (r *ProgrammeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Programme{}).Count(&count).Error
	return count, translate("count programmes", err)
}

func (r *ProgrammeRepository) ListPublished(ctx context.Context) ([]model.Programme, error) {
	var list []model.Programme
	err := r.DB.WithContext(ctx).Where("is_published = ?", true).Order("title").Find(&list).Error
	return list, translate("list programmes", err)
}

func (r *ProgrammeRepository) FindBySlug(ctx context.Context, slug string) (*model.Programme, error) {
	var p model.Programme
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).Limit(1).First(&p).Error; err != nil {
		return nil, translate("find programme", err)
	}
	return &p, nil
}
