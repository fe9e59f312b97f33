package service

import (
	"context"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/repository/memstore"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sampleQuiz 四道题，正确答案依次为 1,0,2,3
func sampleQuiz() *model.Quiz {
	return &model.Quiz{
		ProgrammeID:  "prog-ena",
		Title:        "Culture générale",
		Difficulty:   model.DifficultyMedium,
		TimeLimit:    10,
		PassingScore: 70,
		IsPublished:  true,
		Questions: []model.QuizQuestion{
			{ID: "q1", Question: "Capitale du Sénégal ?", Options: []string{"Thiès", "Dakar", "Saint-Louis"}, CorrectAnswer: 1, Points: 1},
			{ID: "q2", Question: "2 + 2 ?", Options: []string{"4", "5"}, CorrectAnswer: 0, Points: 1},
			{ID: "q3", Question: "Couleur du ciel ?", Options: []string{"Vert", "Rouge", "Bleu"}, CorrectAnswer: 2, Points: 1},
			{ID: "q4", Question: "Nombre de continents ?", Options: []string{"4", "5", "6", "7"}, CorrectAnswer: 3, Points: 1},
		},
	}
}

type testEnv struct {
	db       *memstore.DB
	users    *memstore.UserRepository
	quizzes  *memstore.QuizRepository
	progress *ProgressService
	sessions *QuizSessionService
}

func newTestEnv(t *testing.T, tick time.Duration) *testEnv {
	t.Helper()
	db := memstore.Open()
	env := &testEnv{
		db:       db,
		users:    memstore.NewUserRepository(db),
		quizzes:  memstore.NewQuizRepository(db),
		progress: NewProgressService(memstore.NewProgressRepository(db)),
	}
	env.sessions = NewQuizSessionService(env.quizzes, env.progress, config.QuizConfig{
		TickInterval:     tick,
		SessionRetention: time.Minute,
		SweepInterval:    time.Minute,
	})
	t.Cleanup(env.sessions.Shutdown)
	return env
}

func (e *testEnv) createQuiz(t *testing.T, quiz *model.Quiz) *model.Quiz {
	t.Helper()
	require.NoError(t, e.quizzes.Create(context.Background(), quiz))
	return quiz
}

func (e *testEnv) createUser(t *testing.T, email string, role model.UserRole) *model.UserProfile {
	t.Helper()
	user := &model.UserProfile{Email: email, Role: role}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}
