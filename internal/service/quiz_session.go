package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"faaqs_backend/pkg/monitoring"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type SessionState string

const (
	StateLoading    SessionState = "loading"
	StateInProgress SessionState = "in_progress"
	StateSubmitting SessionState = "submitting"
	StateResults    SessionState = "results"
	StateNotFound   SessionState = "not_found"
)

type SubmitTrigger string

const (
	TriggerManual SubmitTrigger = "manual"
	TriggerTimer  SubmitTrigger = "timer"
)

const (
	EventTick    = "tick"
	EventResults = "results"
	EventFailed  = "submit_failed"
)

// SessionEvent 推送给倒计时订阅者的事件
type SessionEvent struct {
	Type             string         `json:"type"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Result           *SessionResult `json:"result,omitempty"`
}

// QuestionView 作答中展示的题目，不含答案
type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

type QuestionReview struct {
	QuestionID     string   `json:"questionId"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedAnswer int      `json:"selectedAnswer"`
	CorrectAnswer  int      `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
	Explanation    string   `json:"explanation,omitempty"`
}

type SessionResult struct {
	AttemptID      string           `json:"attemptId"`
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	PassingScore   int              `json:"passingScore"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	TimeSpent      int              `json:"timeSpent"`
	Breakdown      []QuestionReview `json:"breakdown"`
}

// SessionView 会话快照
type SessionView struct {
	ID               string         `json:"id"`
	QuizID           string         `json:"quizId"`
	Title            string         `json:"title"`
	State            SessionState   `json:"state"`
	CurrentIndex     int            `json:"currentIndex"`
	TotalQuestions   int            `json:"totalQuestions"`
	CurrentQuestion  *QuestionView  `json:"currentQuestion,omitempty"`
	Answers          map[string]int `json:"answers"`
	RemainingSeconds int            `json:"remainingSeconds"`
	StartedAt        time.Time      `json:"startedAt"`
	Result           *SessionResult `json:"result,omitempty"`
}

// PersistFunc 保存一次提交，由会话所属服务注入
type PersistFunc func(ctx context.Context, userID string, attempt *model.UserProgress) error

// QuizSession 一次作答过程。重新开始即新建会话，不会恢复旧会话。
type QuizSession struct {
	ID     string
	UserID string

	quiz    *model.Quiz
	persist PersistFunc
	now     func() time.Time
	tick    time.Duration

	mu         sync.Mutex
	state      SessionState
	current    int
	answers    map[string]int
	remaining  int
	startedAt  time.Time
	finishedAt time.Time
	result     *SessionResult
	submitErr  error
	abandoned  bool
	subs       map[int]chan SessionEvent
	nextSubID  int

	// 手动提交与倒计时到期共用，只有 CAS 成功的一方执行保存
	submitted atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
}

func newQuizSession(userID string, persist PersistFunc, now func() time.Time, tick time.Duration) *QuizSession {
	return &QuizSession{
		ID:      model.GenerateUUID(),
		UserID:  userID,
		persist: persist,
		now:     now,
		tick:    tick,
		state:   StateLoading,
		answers: make(map[string]int),
		subs:    make(map[int]chan SessionEvent),
		stop:    make(chan struct{}),
	}
}

// load 取测验并进入作答状态；测验不存在或未发布时停在 NotFound
func (s *QuizSession) load(ctx context.Context, quizzes QuizStore, quizID string) error {
	quiz, err := quizzes.FindByID(ctx, quizID)
	if err == nil && !quiz.IsPublished {
		err = util.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			s.state = StateNotFound
		}
		return err
	}
	s.quiz = quiz
	s.remaining = quiz.TimeLimit * 60
	s.startedAt = s.now()
	s.state = StateInProgress
	return nil
}

func (s *QuizSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *QuizSession) finished() (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateResults || s.submitErr != nil || s.abandoned, s.finishedAt
}

// runCountdown 每个 tick 减一秒，归零时强制提交
func (s *QuizSession) runCountdown(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != StateInProgress {
				s.mu.Unlock()
				return
			}
			if s.remaining > 0 {
				s.remaining--
			}
			remaining := s.remaining
			s.publishLocked(SessionEvent{Type: EventTick, RemainingSeconds: remaining})
			s.mu.Unlock()

			if remaining <= 0 {
				if _, err := s.Submit(ctx, TriggerTimer); err != nil {
					logger.Log.Warn("timed submit failed", zap.String("sessionID", s.ID), zap.Error(err))
				}
				return
			}
		}
	}
}

func (s *QuizSession) stopCountdown() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// SelectAnswer 覆盖写入该题的选项
func (s *QuizSession) SelectAnswer(questionID string, optionIndex int) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return nil, util.ErrSessionFinished
	}
	q, ok := s.quiz.QuestionByID(questionID)
	if !ok {
		return nil, util.NewValidationError("questionId", "question does not belong to this quiz")
	}
	if !q.ValidAnswer(optionIndex) {
		return nil, util.NewValidationError("optionIndex", fmt.Sprintf("must be between 0 and %d", len(q.Options)-1))
	}
	s.answers[questionID] = optionIndex
	return s.viewLocked(), nil
}

// Next 已在最后一题时不变
func (s *QuizSession) Next() (*SessionView, error) {
	return s.move(1)
}

// Previous 已在第一题时不变
func (s *QuizSession) Previous() (*SessionView, error) {
	return s.move(-1)
}

func (s *QuizSession) move(delta int) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return nil, util.ErrSessionFinished
	}
	next := s.current + delta
	if next >= 0 && next < len(s.quiz.Questions) {
		s.current = next
	}
	return s.viewLocked(), nil
}

// Submit 计分并保存。并发调用时只有一个调用方真正保存，
// 其余调用方拿到当前快照；保存失败后会话停在 Submitting，不自动重试。
func (s *QuizSession) Submit(ctx context.Context, trigger SubmitTrigger) (*SessionView, error) {
	if !s.submitted.CompareAndSwap(false, true) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.abandoned || s.state == StateLoading || s.state == StateNotFound {
			return nil, util.ErrSessionFinished
		}
		if s.submitErr != nil {
			return s.viewLocked(), fmt.Errorf("%w: %v", util.ErrSubmitFailed, s.submitErr)
		}
		return s.viewLocked(), nil
	}

	s.mu.Lock()
	if s.state != StateInProgress || s.abandoned {
		s.mu.Unlock()
		return nil, util.ErrSessionFinished
	}
	s.state = StateSubmitting
	s.stopCountdown()
	elapsed := int(s.now().Sub(s.startedAt) / time.Second)
	answers := make(map[string]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	quiz := s.quiz
	s.mu.Unlock()

	attempt := ComputeResult(quiz, answers, elapsed)
	err := s.persist(context.WithoutCancel(ctx), s.UserID, &attempt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedAt = s.now()
	if err != nil {
		s.submitErr = err
		monitoring.QuizSubmissions.WithLabelValues(string(trigger), "failed").Inc()
		s.publishLocked(SessionEvent{Type: EventFailed})
		s.closeSubsLocked()
		return s.viewLocked(), fmt.Errorf("%w: %v", util.ErrSubmitFailed, err)
	}

	s.result = buildResult(quiz, &attempt)
	s.state = StateResults
	monitoring.QuizSubmissions.WithLabelValues(string(trigger), "ok").Inc()
	s.publishLocked(SessionEvent{Type: EventResults, Result: s.result})
	s.closeSubsLocked()

	logger.Log.Info("quiz submitted",
		zap.String("sessionID", s.ID),
		zap.String("userID", s.UserID),
		zap.String("quizID", quiz.ID),
		zap.String("trigger", string(trigger)),
		zap.Int("score", attempt.Score))
	return s.viewLocked(), nil
}

// abandon 放弃作答，不保存任何记录。已进入提交流程的会话返回 ErrSessionFinished。
func (s *QuizSession) abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.abandoned {
		return util.ErrSessionFinished
	}
	s.abandoned = true
	s.submitted.Store(true)
	s.stopCountdown()
	s.finishedAt = s.now()
	s.closeSubsLocked()
	return nil
}

func buildResult(quiz *model.Quiz, attempt *model.UserProgress) *SessionResult {
	breakdown := make([]QuestionReview, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		a := attempt.Answers[i]
		breakdown = append(breakdown, QuestionReview{
			QuestionID:     q.ID,
			Question:       q.Question,
			Options:        q.Options,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      a.IsCorrect,
			Explanation:    q.Explanation,
		})
	}
	return &SessionResult{
		AttemptID:      attempt.ID,
		Score:          attempt.Score,
		Passed:         attempt.Score >= quiz.PassingScore,
		PassingScore:   quiz.PassingScore,
		CorrectAnswers: attempt.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		TimeSpent:      attempt.TimeSpent,
		Breakdown:      breakdown,
	}
}

func (s *QuizSession) View() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *QuizSession) viewLocked() *SessionView {
	v := &SessionView{
		ID:               s.ID,
		State:            s.state,
		CurrentIndex:     s.current,
		RemainingSeconds: s.remaining,
		StartedAt:        s.startedAt,
		Answers:          make(map[string]int, len(s.answers)),
		Result:           s.result,
	}
	for k, a := range s.answers {
		v.Answers[k] = a
	}
	if s.quiz != nil {
		v.QuizID = s.quiz.ID
		v.Title = s.quiz.Title
		v.TotalQuestions = len(s.quiz.Questions)
		if s.current < len(s.quiz.Questions) {
			q := s.quiz.Questions[s.current]
			v.CurrentQuestion = &QuestionView{ID: q.ID, Question: q.Question, Options: q.Options, Points: q.Points}
		}
	}
	return v
}

// Subscribe 订阅倒计时事件。会话已结束时立即收到最终事件并关闭。
func (s *QuizSession) Subscribe() (<-chan SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan SessionEvent, 8)
	if s.state == StateResults || s.submitErr != nil || s.abandoned {
		if s.result != nil {
			ch <- SessionEvent{Type: EventResults, Result: s.result}
		} else if s.submitErr != nil {
			ch <- SessionEvent{Type: EventFailed}
		}
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publishLocked 订阅者处理不过来时丢弃事件，不阻塞倒计时
func (s *QuizSession) publishLocked(ev SessionEvent) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *QuizSession) closeSubsLocked() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
