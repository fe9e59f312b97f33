package service

import (
	"context"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"faaqs_backend/pkg/monitoring"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// QuizSessionService 进程内的作答会话注册表，重启即丢弃，与一次页面访问等价
type QuizSessionService struct {
	QuizRepo QuizStore
	Progress *ProgressService

	mu       sync.RWMutex
	sessions map[string]*QuizSession

	tick      atomic.Int64
	retention time.Duration
	sweep     time.Duration
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func NewQuizSessionService(quizRepo QuizStore, progress *ProgressService, cfg config.QuizConfig) *QuizSessionService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &QuizSessionService{
		QuizRepo:  quizRepo,
		Progress:  progress,
		sessions:  make(map[string]*QuizSession),
		retention: cfg.SessionRetention,
		sweep:     cfg.SweepInterval,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
	if s.retention <= 0 {
		s.retention = 30 * time.Minute
	}
	if s.sweep <= 0 {
		s.sweep = 5 * time.Minute
	}
	s.SetTickInterval(cfg.TickInterval)
	return s
}

// SetTickInterval 热更新倒计时间隔，只影响之后创建的会话
func (s *QuizSessionService) SetTickInterval(d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	s.tick.Store(int64(d))
}

// Start 新建会话。测验不存在时返回 util.ErrNotFound，会话不会登记。
func (s *QuizSessionService) Start(ctx context.Context, userID, quizID string) (*SessionView, error) {
	session := newQuizSession(userID, s.Progress.PersistAttempt, s.now, time.Duration(s.tick.Load()))
	if err := session.load(ctx, s.QuizRepo, quizID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	active := len(s.sessions)
	s.mu.Unlock()

	monitoring.QuizSessionsStarted.Inc()
	monitoring.ActiveQuizSessions.Set(float64(active))
	go session.runCountdown(s.ctx)

	logger.Log.Debug("quiz session started",
		zap.String("sessionID", session.ID),
		zap.String("userID", userID),
		zap.String("quizID", quizID))
	return session.View(), nil
}

// Get 只有会话所有者可以访问
func (s *QuizSessionService) Get(userID, sessionID string) (*QuizSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, util.ErrNotFound
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *QuizSessionService) View(userID, sessionID string) (*SessionView, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

func (s *QuizSessionService) SelectAnswer(userID, sessionID, questionID string, optionIndex int) (*SessionView, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.SelectAnswer(questionID, optionIndex)
}

func (s *QuizSessionService) Next(userID, sessionID string) (*SessionView, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Next()
}

func (s *QuizSessionService) Previous(userID, sessionID string) (*SessionView, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Previous()
}

func (s *QuizSessionService) Submit(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Submit(ctx, TriggerManual)
}

// Abandon 放弃并移除会话，不产生提交记录；提交中或已出结果的会话保留并返回 util.ErrSessionFinished
func (s *QuizSessionService) Abandon(userID, sessionID string) error {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return err
	}
	if err := session.abandon(); err != nil {
		return err
	}
	s.remove(sessionID)
	return nil
}

func (s *QuizSessionService) Subscribe(userID, sessionID string) (<-chan SessionEvent, func(), error) {
	session, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := session.Subscribe()
	return ch, unsubscribe, nil
}

func (s *QuizSessionService) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	active := len(s.sessions)
	s.mu.Unlock()
	monitoring.ActiveQuizSessions.Set(float64(active))
}

// StartSweeper 定期清理已结束且超过保留时间的会话
func (s *QuizSessionService) StartSweeper() {
	go func() {
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep 返回本次清理的会话数
func (s *QuizSessionService) Sweep() int {
	cutoff := s.now().Add(-s.retention)

	s.mu.RLock()
	var expired []string
	for id, session := range s.sessions {
		if done, at := session.finished(); done && at.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.remove(id)
	}
	if len(expired) > 0 {
		logger.Log.Info("swept finished quiz sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Shutdown 停止所有倒计时，未提交的会话随进程丢弃
func (s *QuizSessionService) Shutdown() {
	s.cancel()
}
