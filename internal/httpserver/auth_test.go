package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mkovalev/accounts-api/internal/config"
	"github.com/mkovalev/accounts-api/internal/middleware"
	"github.com/mkovalev/accounts-api/internal/models"
	"github.com/mkovalev/accounts-api/internal/repo"
	"github.com/mkovalev/accounts-api/internal/service"
	"github.com/mkovalev/accounts-api/internal/tokens"
)

type testEnv struct {
	e   *echo.Echo
	db  *gorm.DB
	svc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	codec := tokens.NewCodec(&config.Config{
		JWTSecret:       []byte("test-jwt-secret"),
		RefreshSecret:   []byte("test-refresh-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})

	svc := &service.AuthService{
		Repo:       &repo.GormRepo{DB: db},
		Codec:      codec,
		BcryptCost: bcrypt.MinCost,
	}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: svc, Dev: true},
		UserHandler: &UserHTTP{Svc: svc, Dev: true},
		Gate:        middleware.NewAuthGate(codec),
	})

	return &testEnv{e: e, db: db, svc: svc}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, payload any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func registerPayload(email string) map[string]string {
	return map[string]string{
		"name":     "John",
		"email":    email,
		"password": "Abc123xx",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("JOHN@X.com"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])

	user := data["user"].(map[string]any)
	assert.Equal(t, "john@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password_hash")

	// Same email in any case is a duplicate.
	rec, body = env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("john@x.com"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "duplicate_email", body["error"])
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("john@x.com"), nil)

	rec, body := env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "john@x.com",
		"password": "Abc123xx",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])

	// Wrong password and unknown email produce identical responses.
	recWrong, bodyWrong := env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "john@x.com",
		"password": "wrong",
	}, nil)
	recMissing, bodyMissing := env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "Abc123xx",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, recWrong.Code)
	require.Equal(t, http.StatusUnauthorized, recMissing.Code)
	assert.Equal(t, bodyWrong["error"], bodyMissing["error"])
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, regBody := env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("john@x.com"), nil)
	refreshToken := regBody["data"].(map[string]any)["refreshToken"].(string)

	rec, body := env.doJSON(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["accessToken"])
	require.NotEmpty(t, data["refreshToken"])
	assert.NotEqual(t, refreshToken, data["refreshToken"])

	// The consumed token is rejected on reuse.
	rec, body = env.doJSON(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestRefreshEndpoint_Garbage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.doJSON(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": "not-a-valid-jwt",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestProfileEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, regBody := env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("john@x.com"), nil)
	accessToken := regBody["data"].(map[string]any)["accessToken"].(string)

	rec, _ := env.doJSON(t, http.MethodGet, "/auth/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.doJSON(t, http.MethodGet, "/auth/profile", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer not-a-valid-jwt",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := env.doJSON(t, http.MethodGet, "/auth/profile", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "john@x.com", user["email"])
}

func TestLogoutEndpoint_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, regBody := env.doJSON(t, http.MethodPost, "/auth/register", registerPayload("john@x.com"), nil)
	refreshToken := regBody["data"].(map[string]any)["refreshToken"].(string)

	for i := 0; i < 2; i++ {
		rec, body := env.doJSON(t, http.MethodPost, "/auth/logout", map[string]string{
			"refreshToken": refreshToken,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
	}
}
