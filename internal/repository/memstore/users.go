package memstore

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"sort"
)

// 密码哈希带 json:"-"，单独保存
type storedUser struct {
	Profile  model.UserProfile `json:"profile"`
	Password string            `json:"password"`
}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) load(row *userRow) *model.UserProfile {
	var s storedUser
	decode(row.data, &s)
	s.Profile.Password = s.Password
	return &s.Profile
}

func (r *UserRepository) store(u *model.UserProfile) {
	r.db.users[u.UID] = &userRow{data: encode(storedUser{Profile: *u, Password: u.Password})}
}

func (r *UserRepository) Create(ctx context.Context, user *model.UserProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("create user", err)
	}
	for _, row := range r.db.users {
		if r.load(row).Email == user.Email {
			return util.ErrEmailRegistered
		}
	}
	if user.UID == "" {
		user.UID = model.GenerateUUID()
	}
	now := r.db.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.store(user)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, uid string) (*model.UserProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("find user", err)
	}
	row, ok := r.db.users[uid]
	if !ok {
		return nil, util.ErrNotFound
	}
	return r.load(row), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("find user by email", err)
	}
	for _, row := range r.db.users {
		if u := r.load(row); u.Email == email {
			return u, nil
		}
	}
	return nil, util.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *model.UserProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("update user", err)
	}
	if _, ok := r.db.users[user.UID]; !ok {
		return util.ErrNotFound
	}
	user.UpdatedAt = r.db.Now()
	r.store(user)
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.UserProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	users := make([]model.UserProfile, 0, len(r.db.users))
	for _, row := range r.db.users {
		users = append(users, *r.load(row))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}
