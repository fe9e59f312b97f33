package util

import (
	"errors"
	"faaqs_backend/internal/model"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMimeTypeKeepsContent(t *testing.T) {
	body := "%PDF-1.4\n" + strings.Repeat("x", 1024)
	mimeType, r, err := DetectMimeType(strings.NewReader(body), AllowedUploadTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mimeType)

	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, string(all))

	mimeType, _, err = DetectMimeType(strings.NewReader("\x89PNG\r\n\x1a\n0000"), AllowedUploadTypes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	_, _, err = DetectMimeType(strings.NewReader("hello"), AllowedUploadTypes)
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a.pdf", SanitizeFileName("../../a.pdf"))
	assert.Equal(t, "b.png", SanitizeFileName(`C:\tmp\b.png`))
	assert.Equal(t, "file", SanitizeFileName(""))
}

func TestJWTPurpose(t *testing.T) {
	user := &model.UserProfile{UID: "u1", Email: "a@example.com", Role: model.Student}

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, TokenPurposeSession, claims.Purpose)
	assert.NotEmpty(t, claims.ID)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseSSOTokenRequiresSubjectAndIssuer(t *testing.T) {
	sign := func(c SSOClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("sso"))
		require.NoError(t, err)
		return s
	}

	good := sign(SSOClaims{Email: "a@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "ext-1", Issuer: "idp"}})
	claims, err := ParseSSOToken(good, "sso", "idp")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", claims.Subject)

	_, err = ParseSSOToken(good, "sso", "someone-else")
	assert.Error(t, err)

	noSubject := sign(SSOClaims{Email: "a@example.com"})
	_, err = ParseSSOToken(noSubject, "sso", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidationErrorWraps(t *testing.T) {
	err := NewValidationError("email", "invalid")
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)

	assert.ErrorIs(t, Unavailable("find", errors.New("down")), ErrBackendUnavailable)
}
