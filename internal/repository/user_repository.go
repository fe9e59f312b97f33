package repository

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.UserProfile) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrEmailRegistered
	}
	return translate("create user", err)
}

func (r *UserRepository) FindByID(ctx context.Context, uid string) (*model.UserProfile, error) {
	var user model.UserProfile
	err := r.DB.WithContext(ctx).First(&user, "uid = ?", uid).Error
	if err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var user model.UserProfile
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.UserProfile) error {
	user.UpdatedAt = time.Now()
	return translate("update user", r.DB.WithContext(ctx).Save(user).Error)
}

func (r *UserRepository) List(ctx context.Context) ([]model.UserProfile, error) {
	var users []model.UserProfile
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, translate("list users", err)
}
