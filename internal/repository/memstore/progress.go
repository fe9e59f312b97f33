package memstore

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"sort"
)

type ProgressRepository struct {
	db *DB
}

func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Append(ctx context.Context, progress *model.UserProgress) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("append progress", err)
	}
	if progress.ID == "" {
		progress.ID = model.GenerateUUID()
	}
	progress.CompletedAt = r.db.Now()
	r.db.progress[progress.UserID] = append(r.db.progress[progress.UserID], encode(progress))
	return nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID, programmeID string) ([]model.UserProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("list progress", err)
	}
	rows := r.db.progress[userID]
	out := make([]model.UserProgress, 0, len(rows))
	// 倒序遍历，completedAt 相同时后写入的排在前面
	for i := len(rows) - 1; i >= 0; i-- {
		var p model.UserProgress
		decode(rows[i], &p)
		if programmeID != "" && p.ProgrammeID != programmeID {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}
