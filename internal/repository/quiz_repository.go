package repository

import (
	"context"
	"faaqs_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return translate("create quiz", r.DB.WithContext(ctx).Create(quiz).Error)
}

func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	res := r.DB.WithContext(ctx).Save(quiz)
	return translate("update quiz", res.Error)
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&model.Quiz{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete quiz", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete quiz", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, translate("find quiz", err)
	}
	return &quiz, nil
}

// ListPublished programmeId == X AND isPublished == true
func (r *QuizRepository) ListPublished(ctx context.Context, programmeID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.DB.WithContext(ctx).Where("is_published = ?", true)
	if programmeID != "" {
		query = query.Where("programme_id = ?", programmeID)
	}
	err := query.Order("created_at DESC").Find(&quizzes).Error
	return quizzes, translate("list quizzes", err)
}

func (r *QuizRepository) ListAll(ctx context.Context) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&quizzes).Error
	return quizzes, translate("list all quizzes", err)
}
