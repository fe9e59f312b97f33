package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/pkg/logger"
	"faaqs_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type ProgressService struct {
	ProgressRepo ProgressStore
}

func NewProgressService(progressRepo ProgressStore) *ProgressService {
	return &ProgressService{ProgressRepo: progressRepo}
}

// PersistAttempt 追加一条提交记录，completedAt 由存储层写入。
// 失败直接返回，不做重试。
func (s *ProgressService) PersistAttempt(ctx context.Context, userID string, attempt *model.UserProgress) error {
	attempt.UserID = userID
	if err := s.ProgressRepo.Append(ctx, attempt); err != nil {
		logger.Log.Error("persist attempt failed",
			zap.String("userID", userID),
			zap.String("quizID", attempt.QuizID),
			zap.Error(err))
		return err
	}
	monitoring.QuizScores.Observe(float64(attempt.Score))
	return nil
}

// ListAttempts 按完成时间倒序，programmeID 为空时不过滤
func (s *ProgressService) ListAttempts(ctx context.Context, userID, programmeID string) ([]model.UserProgress, error) {
	attempts, err := s.ProgressRepo.ListByUser(ctx, userID, programmeID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.UserProgress{}
	}
	return attempts, nil
}

type Dashboard struct {
	Stats    model.ProgressStats  `json:"stats"`
	Attempts []model.UserProgress `json:"attempts"`
}

func (s *ProgressService) GetDashboard(ctx context.Context, userID, programmeID string) (*Dashboard, error) {
	attempts, err := s.ListAttempts(ctx, userID, programmeID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats:    AggregateStats(attempts),
		Attempts: attempts,
	}, nil
}
