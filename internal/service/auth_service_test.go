package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/repository/memstore"
	"faaqs_backend/internal/util"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResetPrefix = "http://localhost:3000/reset-password?token="

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Auth: config.AuthConfig{
			ProfileRetry:   config.RetryPolicy{MaxRetries: 1, Delay: time.Second},
			ResetTokenTTL:  time.Hour,
			ResetURLPrefix: testResetPrefix,
		},
	}
}

// flakyUsers 前 failures 次 FindByID 返回存储不可用
type flakyUsers struct {
	UserStore
	failures atomic.Int32
	calls    atomic.Int32
}

func (f *flakyUsers) FindByID(ctx context.Context, uid string) (*model.UserProfile, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, util.Unavailable("find user", errors.New("unreachable"))
	}
	return f.UserStore.FindByID(ctx, uid)
}

func newAuth(t *testing.T) (*AuthService, *memstore.DB, *ConsoleMailer) {
	t.Helper()
	db := memstore.Open()
	mailer := &ConsoleMailer{}
	svc := NewAuthService(memstore.NewUserRepository(db), NewMemoryTokenStore(), mailer, testConfig())
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc, db, mailer
}

func signup(t *testing.T, svc *AuthService, email, password string) *util.AuthSession {
	t.Helper()
	session, err := svc.Signup(context.Background(), SignupRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return session
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Email: "a@example.com", Password: "123", ConfirmPassword: "123"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.Signup(ctx, SignupRequest{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"})
	assert.ErrorIs(t, err, util.ErrValidation)

	session := signup(t, svc, " A@Example.com ", "secret1")
	require.NotNil(t, session.Profile)
	assert.Equal(t, "a@example.com", session.Profile.Email)
	assert.Equal(t, model.Student, session.Profile.Role)
	assert.Nil(t, session.Profile.Subscription)

	_, err = svc.Signup(ctx, SignupRequest{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	signup(t, svc, "awa@example.com", "secret1")

	_, err := svc.Login(ctx, LoginRequest{Email: "awa@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	session, err := svc.Login(ctx, LoginRequest{Email: "AWA@example.com", Password: "secret1"})
	require.NoError(t, err)

	authed, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID(), authed.UserID())
	assert.Equal(t, "awa@example.com", authed.Profile.Email)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()
	session := signup(t, svc, "awa@example.com", "secret1")

	require.NoError(t, svc.Logout(ctx, session))

	_, err := svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestAuthenticateRejectsResetToken(t *testing.T) {
	svc, _, _ := newAuth(t)
	session := signup(t, svc, "awa@example.com", "secret1")

	token, err := util.GenerateResetToken(session.Profile, "test-secret", time.Hour)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newAuth(t)
	ctx := context.Background()
	signup(t, svc, "awa@example.com", "secret1")

	// 未注册的邮箱同样成功，且不发信
	require.NoError(t, svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "nobody@example.com"}))
	_, sent := mailer.Last()
	assert.False(t, sent)

	require.NoError(t, svc.RequestPasswordReset(ctx, PasswordResetRequest{Email: "awa@example.com"}))
	mail, sent := mailer.Last()
	require.True(t, sent)
	assert.Equal(t, "awa@example.com", mail.To)

	idx := strings.Index(mail.PlainText, testResetPrefix)
	require.GreaterOrEqual(t, idx, 0)
	token := mail.PlainText[idx+len(testResetPrefix):]

	confirm := PasswordResetConfirmRequest{Token: token, Password: "newpass", ConfirmPassword: "newpass"}
	require.NoError(t, svc.ConfirmPasswordReset(ctx, confirm))

	_, err := svc.Login(ctx, LoginRequest{Email: "awa@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "awa@example.com", Password: "newpass"})
	assert.NoError(t, err)

	// 同一令牌不能再次使用
	assert.ErrorIs(t, svc.ConfirmPasswordReset(ctx, confirm), util.ErrInvalidToken)
}

func TestFetchProfileRetriesOnUnavailable(t *testing.T) {
	svc, _, _ := newAuth(t)
	session := signup(t, svc, "awa@example.com", "secret1")

	flaky := &flakyUsers{UserStore: svc.UserRepo}
	svc.UserRepo = flaky
	var slept atomic.Int32
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		slept.Add(1)
		assert.Equal(t, time.Second, d)
		return nil
	}

	flaky.failures.Store(1)
	profile, err := svc.FetchProfile(context.Background(), session.UserID())
	require.NoError(t, err)
	assert.Equal(t, "awa@example.com", profile.Email)
	assert.Equal(t, int32(2), flaky.calls.Load())
	assert.Equal(t, int32(1), slept.Load())

	// 超过重试上限后返回错误
	flaky.calls.Store(0)
	flaky.failures.Store(2)
	_, err = svc.FetchProfile(context.Background(), session.UserID())
	assert.ErrorIs(t, err, util.ErrBackendUnavailable)
	assert.Equal(t, int32(2), flaky.calls.Load())

	// 热更新后立即生效
	svc.SetRetryPolicy(config.RetryPolicy{MaxRetries: 3, Delay: time.Second})
	flaky.calls.Store(0)
	flaky.failures.Store(2)
	_, err = svc.FetchProfile(context.Background(), session.UserID())
	assert.NoError(t, err)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestSignInSucceedsWithoutProfile(t *testing.T) {
	svc, _, _ := newAuth(t)
	signup(t, svc, "awa@example.com", "secret1")

	flaky := &flakyUsers{UserStore: svc.UserRepo}
	flaky.failures.Store(10)
	svc.UserRepo = flaky

	session, err := svc.Login(context.Background(), LoginRequest{Email: "awa@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Nil(t, session.Profile)
}

func TestRetryStopsOnOtherErrors(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), config.RetryPolicy{MaxRetries: 3}, func(context.Context, time.Duration) error { return nil },
		func(context.Context) (int, error) {
			calls++
			return 0, util.ErrNotFound
		})
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.Equal(t, 1, calls)
}
