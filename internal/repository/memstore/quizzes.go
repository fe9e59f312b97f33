package memstore

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"sort"
)

type QuizRepository struct {
	db *DB
}

func NewQuizRepository(db *DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("create quiz", err)
	}
	if quiz.ID == "" {
		quiz.ID = model.GenerateUUID()
	}
	now := r.db.Now()
	quiz.CreatedAt, quiz.UpdatedAt = now, now
	r.db.quizzes[quiz.ID] = encode(quiz)
	return nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure(); err != nil {
		return util.Unavailable("update quiz", err)
	}
	if _, ok := r.db.quizzes[quiz.ID]; !ok {
		return util.ErrNotFound
	}
	quiz.UpdatedAt = r.db.Now()
	r.db.quizzes[quiz.ID] = encode(quiz)
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.quizzes[id]; !ok {
		return util.ErrNotFound
	}
	delete(r.db.quizzes, id)
	return nil
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.failure(); err != nil {
		return nil, util.Unavailable("find quiz", err)
	}
	data, ok := r.db.quizzes[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	var quiz model.Quiz
	decode(data, &quiz)
	return &quiz, nil
}

func (r *QuizRepository) ListPublished(ctx context.Context, programmeID string) ([]model.Quiz, error) {
	all, _ := r.ListAll(ctx)
	out := make([]model.Quiz, 0, len(all))
	for _, q := range all {
		if !q.IsPublished {
			continue
		}
		if programmeID != "" && q.ProgrammeID != programmeID {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuizRepository) ListAll(ctx context.Context) ([]model.Quiz, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Quiz, 0, len(r.db.quizzes))
	for _, data := range r.db.quizzes {
		var q model.Quiz
		decode(data, &q)
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
