package memstore

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"sort"
)

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.CommunityPost) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("create post", err)
	}
	if post.ID == "" {
		post.ID = model.GenerateUUID()
	}
	now := r.db.Now()
	post.CreatedAt, post.UpdatedAt = now, now
	r.db.posts[post.ID] = encode(post)
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.CommunityPost, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("find post", err)
	}
	data, ok := r.db.posts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	var post model.CommunityPost
	decode(data, &post)
	return &post, nil
}

// UpdateFields 只覆盖列出的字段，其余字段保留存储中的值
func (r *PostRepository) UpdateFields(ctx context.Context, post *model.CommunityPost, fields ...string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("update post", err)
	}
	data, ok := r.db.posts[post.ID]
	if !ok {
		return util.ErrNotFound
	}
	var stored model.CommunityPost
	decode(data, &stored)
	for _, f := range fields {
		switch f {
		case "status":
			stored.Status = post.Status
		case "likes":
			stored.Likes = post.Likes
		case "replies":
			stored.Replies = post.Replies
		case "reports":
			stored.Reports = post.Reports
		case "title":
			stored.Title = post.Title
		case "content":
			stored.Content = post.Content
		case "tags":
			stored.Tags = post.Tags
		}
	}
	stored.UpdatedAt = r.db.Now()
	post.UpdatedAt = stored.UpdatedAt
	r.db.posts[post.ID] = encode(stored)
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("delete post", err)
	}
	if _, ok := r.db.posts[id]; !ok {
		return util.ErrNotFound
	}
	delete(r.db.posts, id)
	return nil
}

func (r *PostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.CommunityPost, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("list posts", err)
	}
	out := make([]model.CommunityPost, 0, len(r.db.posts))
	for _, data := range r.db.posts {
		var p model.CommunityPost
		decode(data, &p)
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ProgrammeID != "" && (p.ProgrammeID == nil || *p.ProgrammeID != filter.ProgrammeID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
