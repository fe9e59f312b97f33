package repository

import (
	"context"
	"faaqs_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// progressOrder 最新在前；同一时刻的提交按写入顺序，与内存存储一致
const progressOrder = "completed_at DESC, seq DESC"

// ProgressRepository 用户答题历史，只提供追加与查询
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Append(ctx context.Context, progress *model.UserProgress) error {
	if progress.ID == "" {
		progress.ID = model.GenerateUUID()
	}
	// completedAt 由存储端落时间
	progress.CompletedAt = time.Now()
	return translate("append progress", r.DB.WithContext(ctx).Create(progress).Error)
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID, programmeID string) ([]model.UserProgress, error) {
	var list []model.UserProgress
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if programmeID != "" {
		query = query.Where("programme_id = ?", programmeID)
	}
	err := query.Order(progressOrder).Find(&list).Error
	return list, translate("list progress", err)
}
