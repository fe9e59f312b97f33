package memstore

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"sort"
)

type ProgrammeRepository struct {
	db *DB
}

func NewProgrammeRepository(db *DB) *ProgrammeRepository {
	return &ProgrammeRepository{db: db}
}

func (r *ProgrammeRepository) Create(ctx context.Context, p *model.Programme) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, data := range r.db.programmes {
		var existing model.Programme
		decode(data, &existing)
		if existing.Slug == p.Slug {
			return util.NewValidationError("slug", "already exists")
		}
	}
	if p.ID == "" {
		p.ID = model.GenerateUUID()
	}
	now := r.db.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.db.programmes[p.ID] = encode(p)
	return nil
}

func (r *ProgrammeRepository) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.programmes)), nil
}

func (r *ProgrammeRepository) ListPublished(ctx context.Context) ([]model.Programme, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Programme, 0, len(r.db.programmes))
	for _, data := range r.db.programmes {
		var p model.Programme
		decode(data, &p)
		if p.IsPublished {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *ProgrammeRepository) FindBySlug(ctx context.Context, slug string) (*model.Programme, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, data := range r.db.programmes {
		var p model.Programme
		decode(data, &p)
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, util.ErrNotFound
}

type FileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, f *model.UploadedFile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("create file", err)
	}
	if f.ID == "" {
		f.ID = model.GenerateUUID()
	}
	r.db.files = append(r.db.files, encode(f))
	return nil
}

func (r *FileRepository) List(ctx context.Context, programmeID string) ([]model.UploadedFile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.UploadedFile, 0, len(r.db.files))
	for i := len(r.db.files) - 1; i >= 0; i-- {
		var f model.UploadedFile
		decode(r.db.files[i], &f)
		if programmeID != "" && f.ProgrammeID != programmeID {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}
