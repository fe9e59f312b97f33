package repository

import (
	"context"
	"faaqs_backend/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.CommunityPost) error {
	return translate("create post", r.DB.WithContext(ctx).Create(post).Error)
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.CommunityPost, error) {
	var post model.CommunityPost
	if err := r.DB.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate("find post", err)
	}
	return &post, nil
}

// UpdateFields 整字段覆盖写，不加锁，并发修改以后写为准
func (r *PostRepository) UpdateFields(ctx context.Context, post *model.CommunityPost, fields ...string) error {
	fields = append(fields, "updated_at")
	err := r.DB.WithContext(ctx).Model(post).Select(fields).Updates(post).Error
	return translate("update post", err)
}

// Delete 物理删除，不可恢复
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&model.CommunityPost{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete post", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.CommunityPost, error) {
	var posts []model.CommunityPost

	query := r.DB.WithContext(ctx).Model(&model.CommunityPost{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProgrammeID != "" {
		query = query.Where("programme_id = ?", filter.ProgrammeID)
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Find(&posts).Error
	return posts, translate("list posts", err)
}
