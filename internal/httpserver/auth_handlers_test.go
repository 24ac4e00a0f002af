package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velsland/portfolio-api/internal/middleware"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/ratelimit"
	"github.com/velsland/portfolio-api/internal/repo"
	"github.com/velsland/portfolio-api/internal/service"
)

type testEnv struct {
	T   *testing.T
	E   *echo.Echo
	Svc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	gormRepo := repo.New(db)
	authSvc := &service.AuthService{
		Repo:       gormRepo,
		Limiter:    ratelimit.NewMemoryCounter(),
		Secret:     []byte("test-jwt-secret-test-jwt-secret!"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		RateWindow: time.Minute,
		RateMax:    5,
	}
	contentSvc := &service.ContentService{Repo: gormRepo}

	e := echo.New()
	Register(e, &Deps{
		Auth:    &AuthHTTP{Svc: authSvc},
		Content: &ContentHTTP{Svc: contentSvc},
		AuthMW:  middleware.NewAuth(authSvc),
	})

	return &testEnv{T: t, E: e, Svc: authSvc}
}

func (env *testEnv) doJSON(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func TestAuthFlow_RegisterLoginCheckAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "password")

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Abc12345!"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeBody(t, rec)
	accessToken, _ := body["accessToken"].(string)
	refreshToken, _ := body["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	rec = env.doJSON(http.MethodGet, "/api/v1/users/checkAuth", nil, bearer(accessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeBody(t, rec)
	user, ok = body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "USER", user["role"])
}

func TestRegister_ValidationAndConflict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "not-an-email", "password": "Abc12345!", "name": "Ada"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation_error", body["errorKey"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["message"])

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "weak", "name": "Ada"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}
	rec = env.doJSON(http.MethodPost, "/api/v1/auth/register", payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/register", payload, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "conflict", body["errorKey"])
}

func TestLogin_InvalidCredentialsShapeIsUniform(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Nope1234!"}, nil)
	unknownEmail := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "ghost@x.com", "password": "Abc12345!"}, nil)

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogin_RateLimitedAfterFiveAttempts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	for i := 0; i < 5; i++ {
		rec = env.doJSON(http.MethodPost, "/api/v1/auth/login",
			map[string]string{"email": "a@x.com", "password": "Nope1234!"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Abc12345!"}, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "rate_limited", body["errorKey"])
}

func TestRefresh_RotationOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)
	login := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Abc12345!"}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	original, _ := decodeBody(t, login)["refreshToken"].(string)
	require.NotEmpty(t, original)

	first := env.doJSON(http.MethodPost, "/api/v1/auth/refresh",
		map[string]string{"refreshToken": original}, nil)
	require.Equal(t, http.StatusOK, first.Code)
	body := decodeBody(t, first)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEqual(t, original, body["refreshToken"])

	replay := env.doJSON(http.MethodPost, "/api/v1/auth/refresh",
		map[string]string{"refreshToken": original}, nil)
	require.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestLogout_IdempotentOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)
	login := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Abc12345!"}, nil)
	refreshToken, _ := decodeBody(t, login)["refreshToken"].(string)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/logout",
		map[string]string{"refreshToken": refreshToken}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/refresh",
		map[string]string{"refreshToken": refreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/logout",
		map[string]string{"refreshToken": refreshToken}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminRoutes_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.Svc.SeedAdmin(ctx, "admin@x.com", "Admin123!", "Boss"))
	env.doJSON(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "a@x.com", "password": "Abc12345!", "name": "Ada"}, nil)

	project := map[string]any{"title": "Brand Refresh"}

	// No token at all.
	rec := env.doJSON(http.MethodPost, "/api/v1/admin/projects", project, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but not an admin: forbidden, not unauthorized.
	userLogin := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "a@x.com", "password": "Abc12345!"}, nil)
	userToken, _ := decodeBody(t, userLogin)["accessToken"].(string)

	rec = env.doJSON(http.MethodPost, "/api/v1/admin/projects", project, bearer(userToken))
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "forbidden", body["errorKey"])

	adminLogin := env.doJSON(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "admin@x.com", "password": "Admin123!"}, nil)
	adminToken, _ := decodeBody(t, adminLogin)["accessToken"].(string)

	rec = env.doJSON(http.MethodPost, "/api/v1/admin/projects", project, bearer(adminToken))
	require.Equal(t, http.StatusCreated, rec.Code)

	// The project is now publicly visible.
	rec = env.doJSON(http.MethodGet, "/api/v1/projects", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	data, ok := list["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestCheckAuth_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/api/v1/users/checkAuth", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/v1/users/checkAuth", nil, bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "authentication_failed", body["errorKey"])
}

func TestContactEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/contact",
		map[string]string{"name": "Ada", "email": "ada@x.com", "subject": "Quote", "body": "I need a site."}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/contact",
		map[string]string{"name": "Ada", "email": "nope", "body": "hi"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
