package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/monitoring"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartUnknownQuiz(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	_, err := env.sessions.Start(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestStartUnpublishedQuiz(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := sampleQuiz()
	quiz.IsPublished = false
	env.createQuiz(t, quiz)

	_, err := env.sessions.Start(context.Background(), "u1", quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSessionNavigationClampsAtBounds(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())

	view, err := env.sessions.Start(context.Background(), "u1", quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, view.State)
	assert.Equal(t, 600, view.RemainingSeconds)
	assert.Equal(t, "q1", view.CurrentQuestion.ID)

	view, err = env.sessions.Previous("u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)

	for i := 0; i < 5; i++ {
		view, err = env.sessions.Next("u1", view.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, view.CurrentIndex)
	assert.Equal(t, "q4", view.CurrentQuestion.ID)
}

func TestSelectAnswerOverwritesAndValidates(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	view, err := env.sessions.Start(context.Background(), "u1", quiz.ID)
	require.NoError(t, err)

	_, err = env.sessions.SelectAnswer("u1", view.ID, "q1", 0)
	require.NoError(t, err)
	view, err = env.sessions.SelectAnswer("u1", view.ID, "q1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"q1": 1}, view.Answers)

	_, err = env.sessions.SelectAnswer("u1", view.ID, "q1", 3)
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = env.sessions.SelectAnswer("u1", view.ID, "nope", 0)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestManualSubmitPersistsOneAttempt(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	ctx := context.Background()

	view, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)
	for q, a := range map[string]int{"q1": 1, "q2": 0, "q3": 2} {
		_, err = env.sessions.SelectAnswer("u1", view.ID, q, a)
		require.NoError(t, err)
	}

	view, err = env.sessions.Submit(ctx, "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateResults, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, 75, view.Result.Score)
	assert.True(t, view.Result.Passed)
	assert.Len(t, view.Result.Breakdown, 4)

	// 再次提交返回同一结果，不重复保存
	again, err := env.sessions.Submit(ctx, "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Result.AttemptID, again.Result.AttemptID)

	_, err = env.sessions.SelectAnswer("u1", view.ID, "q4", 3)
	assert.ErrorIs(t, err, util.ErrSessionFinished)

	attempts, err := env.progress.ListAttempts(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "u1", attempts[0].UserID)
	assert.Equal(t, 75, attempts[0].Score)
	assert.False(t, attempts[0].CompletedAt.IsZero())
}

// submissionCount 两种触发方式的成功提交总数
func submissionCount(t *testing.T) float64 {
	t.Helper()
	total := 0.0
	for _, trigger := range []SubmitTrigger{TriggerManual, TriggerTimer} {
		var m dto.Metric
		require.NoError(t, monitoring.QuizSubmissions.WithLabelValues(string(trigger), "ok").Write(&m))
		total += m.GetCounter().GetValue()
	}
	return total
}

// loadedSession 不启动倒计时的会话，persist 由测试控制
func loadedSession(t *testing.T, env *testEnv, persist PersistFunc) *QuizSession {
	t.Helper()
	quiz := env.createQuiz(t, sampleQuiz())
	session := newQuizSession("u1", persist, time.Now, time.Hour)
	require.NoError(t, session.load(context.Background(), env.quizzes, quiz.ID))
	return session
}

func TestTimerAndManualSubmitSaveOnce(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	var saved atomic.Int32
	session := loadedSession(t, env, func(ctx context.Context, userID string, attempt *model.UserProgress) error {
		saved.Add(1)
		return env.progress.PersistAttempt(ctx, userID, attempt)
	})
	before := submissionCount(t)

	release := make(chan struct{})
	var wg sync.WaitGroup
	for _, trigger := range []SubmitTrigger{TriggerTimer, TriggerManual} {
		wg.Add(1)
		go func(trigger SubmitTrigger) {
			defer wg.Done()
			<-release
			_, _ = session.Submit(context.Background(), trigger)
		}(trigger)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), saved.Load())
	assert.Equal(t, StateResults, session.State())
	assert.Equal(t, before+1, submissionCount(t))

	attempts, err := env.progress.ListAttempts(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestAbandonDuringSubmitIsRejected(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	session := loadedSession(t, env, func(ctx context.Context, userID string, attempt *model.UserProgress) error {
		close(entered)
		<-unblock
		return env.progress.PersistAttempt(ctx, userID, attempt)
	})

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background(), TriggerManual)
		done <- err
	}()
	<-entered

	assert.ErrorIs(t, session.abandon(), util.ErrSessionFinished)
	close(unblock)
	require.NoError(t, <-done)

	// 结果仍可读取
	v := session.View()
	assert.Equal(t, StateResults, v.State)
	require.NotNil(t, v.Result)
}

func TestAbandonAfterResultsKeepsSession(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	ctx := context.Background()

	view, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)
	_, err = env.sessions.Submit(ctx, "u1", view.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.sessions.Abandon("u1", view.ID), util.ErrSessionFinished)
	v, err := env.sessions.View("u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateResults, v.State)
}

func TestSubmitAfterAbandonSavesNothing(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	var saved atomic.Int32
	session := loadedSession(t, env, func(ctx context.Context, userID string, attempt *model.UserProgress) error {
		saved.Add(1)
		return nil
	})

	require.NoError(t, session.abandon())
	_, err := session.Submit(context.Background(), TriggerTimer)
	assert.ErrorIs(t, err, util.ErrSessionFinished)
	assert.Zero(t, saved.Load())
}

func TestTimerForcesSubmit(t *testing.T) {
	env := newTestEnv(t, time.Millisecond)
	quiz := sampleQuiz()
	quiz.TimeLimit = 1
	env.createQuiz(t, quiz)

	view, err := env.sessions.Start(context.Background(), "u1", quiz.ID)
	require.NoError(t, err)
	events, unsubscribe, err := env.sessions.Subscribe("u1", view.ID)
	require.NoError(t, err)
	defer unsubscribe()

	// 会话结束时通道关闭
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)

	v, err := env.sessions.View("u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateResults, v.State)
	assert.Equal(t, 0, v.RemainingSeconds)
	require.NotNil(t, v.Result)
	assert.Equal(t, 0, v.Result.Score)
	assert.False(t, v.Result.Passed)
}

func TestSubmitFailureStaysSubmitting(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	ctx := context.Background()

	view, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)

	env.db.SetFailure(errors.New("store offline"))
	view, err = env.sessions.Submit(ctx, "u1", view.ID)
	assert.ErrorIs(t, err, util.ErrSubmitFailed)
	assert.Equal(t, StateSubmitting, view.State)

	// 不自动重试，后续提交仍报失败
	env.db.SetFailure(nil)
	_, err = env.sessions.Submit(ctx, "u1", view.ID)
	assert.ErrorIs(t, err, util.ErrSubmitFailed)

	attempts, err := env.progress.ListAttempts(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())

	view, err := env.sessions.Start(context.Background(), "u1", quiz.ID)
	require.NoError(t, err)

	_, err = env.sessions.View("u2", view.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = env.sessions.View("u1", "unknown")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestAbandonDiscardsSession(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	ctx := context.Background()

	view, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)
	require.NoError(t, env.sessions.Abandon("u1", view.ID))

	_, err = env.sessions.View("u1", view.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	attempts, err := env.progress.ListAttempts(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestSweepRemovesFinishedSessions(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	quiz := env.createQuiz(t, sampleQuiz())
	ctx := context.Background()

	done, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)
	_, err = env.sessions.Submit(ctx, "u1", done.ID)
	require.NoError(t, err)
	active, err := env.sessions.Start(ctx, "u1", quiz.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, env.sessions.Sweep())

	env.sessions.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, env.sessions.Sweep())

	_, err = env.sessions.View("u1", done.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = env.sessions.View("u1", active.ID)
	assert.NoError(t, err)
}
