package repository

import (
	"context"
	"faaqs_backend/internal/model"

	"gorm.io/gorm"
)

type FileRepository struct {
	DB *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{DB: db}
}

func (r *FileRepository) Create(ctx context.Context, f *model.UploadedFile) error {
	if f.ID == "" {
		f.ID = model.GenerateUUID()
	}
	return translate("create file", r.DB.WithContext(ctx).Create(f).Error)
}

func (r *FileRepository) List(ctx context.Context, programmeID string) ([]model.UploadedFile, error) {
	var files []model.UploadedFile
	query := r.DB.WithContext(ctx)
	if programmeID != "" {
		query = query.Where("programme_id = ?", programmeID)
	}
	err := query.Order("uploaded_at DESC").Find(&files).Error
	return files, translate("list files", err)
}
