package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/pkg/logger"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type ProgrammeService struct {
	ProgrammeRepo ProgrammeStore
	QuizService   *QuizService
}

func NewProgrammeService(programmeRepo ProgrammeStore, quizService *QuizService) *ProgrammeService {
	return &ProgrammeService{ProgrammeRepo: programmeRepo, QuizService: quizService}
}

type programmeCatalog struct {
	Programmes []model.Programme `yaml:"programmes"`
}

// LoadCatalog 解析 programmes.yaml
func LoadCatalog(path string) ([]model.Programme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var catalog programmeCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return catalog.Programmes, nil
}

// Seed 表为空时写入目录，已有数据则跳过
func (s *ProgrammeService) Seed(ctx context.Context, programmes []model.Programme) (int, error) {
	count, err := s.ProgrammeRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	for i := range programmes {
		p := programmes[i]
		if err := s.ProgrammeRepo.Create(ctx, &p); err != nil {
			return i, err
		}
	}
	logger.Log.Info("programme catalog seeded", zap.Int("count", len(programmes)))
	return len(programmes), nil
}

func (s *ProgrammeService) List(ctx context.Context) ([]model.Programme, error) {
	list, err := s.ProgrammeRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Programme{}
	}
	return list, nil
}

func (s *ProgrammeService) GetBySlug(ctx context.Context, slug string) (*model.Programme, error) {
	return s.ProgrammeRepo.FindBySlug(ctx, slug)
}

// ListQuizzes 某个项目下已发布的测验
func (s *ProgrammeService) ListQuizzes(ctx context.Context, slug string) ([]QuizSummary, error) {
	p, err := s.ProgrammeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.QuizService.ListPublished(ctx, p.ID)
}
