package util

import (
	"faaqs_backend/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenPurposeSession = "session"
	TokenPurposeReset   = "password_reset"
)

type Claims struct {
	UserID  string         `json:"user_id"`
	Role    model.UserRole `json:"role"`
	Email   string         `json:"email"`
	Purpose string         `json:"purpose"`
	jwt.RegisteredClaims
}

func GenerateJWT(user *model.UserProfile, secret string, expiration time.Duration) (string, error) {
	return generateToken(user, TokenPurposeSession, secret, expiration)
}

// GenerateResetToken 生成仅可用于重置密码的短期令牌
func GenerateResetToken(user *model.UserProfile, secret string, expiration time.Duration) (string, error) {
	return generateToken(user, TokenPurposeReset, secret, expiration)
}

func generateToken(user *model.UserProfile, purpose, secret string, expiration time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:  user.UID,
		Role:    user.Role,
		Email:   user.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// SSOClaims 外部身份提供方签发的令牌
type SSOClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

func ParseSSOToken(tokenString, secret, issuer string) (*SSOClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &SSOClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SSOClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
