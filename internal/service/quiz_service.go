package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"fmt"
	"strings"
)

type QuizService struct {
	QuizRepo QuizStore
}

func NewQuizService(quizRepo QuizStore) *QuizService {
	return &QuizService{QuizRepo: quizRepo}
}

type QuestionRequest struct {
	ID            string   `json:"id"`
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

type QuizRequest struct {
	ProgrammeID  string            `json:"programmeId" binding:"required"`
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	Subject      string            `json:"subject"`
	Difficulty   model.Difficulty  `json:"difficulty"`
	Questions    []QuestionRequest `json:"questions"`
	TimeLimit    int               `json:"timeLimit"`
	PassingScore int               `json:"passingScore"`
	IsPublished  bool              `json:"isPublished"`
}

// QuizSummary 学生可见的测验信息，不含题目答案
type QuizSummary struct {
	ID            string           `json:"id"`
	ProgrammeID   string           `json:"programmeId"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Subject       string           `json:"subject"`
	Difficulty    model.Difficulty `json:"difficulty"`
	QuestionCount int              `json:"questionCount"`
	TimeLimit     int              `json:"timeLimit"`
	PassingScore  int              `json:"passingScore"`
	Questions     []QuestionView   `json:"questions,omitempty"`
}

func summarize(q *model.Quiz, withQuestions bool) QuizSummary {
	sum := QuizSummary{
		ID:            q.ID,
		ProgrammeID:   q.ProgrammeID,
		Title:         q.Title,
		Description:   q.Description,
		Subject:       q.Subject,
		Difficulty:    q.Difficulty,
		QuestionCount: len(q.Questions),
		TimeLimit:     q.TimeLimit,
		PassingScore:  q.PassingScore,
	}
	if withQuestions {
		sum.Questions = make([]QuestionView, 0, len(q.Questions))
		for _, question := range q.Questions {
			sum.Questions = append(sum.Questions, QuestionView{
				ID:       question.ID,
				Question: question.Question,
				Options:  question.Options,
				Points:   question.Points,
			})
		}
	}
	return sum
}

func (r *QuizRequest) toModel() (*model.Quiz, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, util.NewValidationError("title", "required")
	}
	if strings.TrimSpace(r.ProgrammeID) == "" {
		return nil, util.NewValidationError("programmeId", "required")
	}
	if r.TimeLimit <= 0 {
		return nil, util.NewValidationError("timeLimit", "must be a positive number of minutes")
	}
	if r.PassingScore < 0 || r.PassingScore > 100 {
		return nil, util.NewValidationError("passingScore", "must be between 0 and 100")
	}
	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !difficulty.Valid() {
		return nil, util.NewValidationError("difficulty", "must be easy, medium or hard")
	}

	questions := make([]model.QuizQuestion, 0, len(r.Questions))
	seen := make(map[string]bool)
	for i, q := range r.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(q.Question) == "" {
			return nil, util.NewValidationError(field, "question text is required")
		}
		if len(q.Options) < 2 {
			return nil, util.NewValidationError(field, "at least two options are required")
		}
		question := model.QuizQuestion{
			ID:            q.ID,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Points:        q.Points,
		}
		if !question.ValidAnswer(q.CorrectAnswer) {
			return nil, util.NewValidationError(field, "correctAnswer is out of range")
		}
		if question.ID == "" {
			question.ID = model.GenerateUUID()
		}
		if seen[question.ID] {
			return nil, util.NewValidationError(field, "duplicate question id")
		}
		seen[question.ID] = true
		if question.Points <= 0 {
			question.Points = 1
		}
		questions = append(questions, question)
	}

	return &model.Quiz{
		ProgrammeID:  r.ProgrammeID,
		Title:        title,
		Description:  r.Description,
		Subject:      r.Subject,
		Difficulty:   difficulty,
		Questions:    questions,
		TimeLimit:    r.TimeLimit,
		PassingScore: r.PassingScore,
		IsPublished:  r.IsPublished,
	}, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, req QuizRequest) (*model.Quiz, error) {
	quiz, err := req.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id string, req QuizRequest) (*model.Quiz, error) {
	existing, err := s.QuizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz, err := req.toModel()
	if err != nil {
		return nil, err
	}
	quiz.Document = existing.Document
	if err := s.QuizRepo.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	return s.QuizRepo.Delete(ctx, id)
}

// AdminGetQuiz 含答案
func (s *QuizService) AdminGetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	return s.QuizRepo.FindByID(ctx, id)
}

func (s *QuizService) AdminListQuizzes(ctx context.Context) ([]model.Quiz, error) {
	quizzes, err := s.QuizRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// GetQuiz 学生视角，未发布的测验视为不存在
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*QuizSummary, error) {
	quiz, err := s.QuizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrNotFound
	}
	sum := summarize(quiz, true)
	return &sum, nil
}

func (s *QuizService) ListPublished(ctx context.Context, programmeID string) ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListPublished(ctx, programmeID)
	if err != nil {
		return nil, err
	}
	out := make([]QuizSummary, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, summarize(&quizzes[i], false))
	}
	return out, nil
}
