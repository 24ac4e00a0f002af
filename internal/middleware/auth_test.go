package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/service"
	"github.com/velsland/portfolio-api/internal/tokens"
)

var testSecret = []byte("test-jwt-secret-test-jwt-secret!")

func newContext(t *testing.T, authHeader string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireAuth_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	mw := NewAuth(&service.AuthService{Secret: testSecret})

	for _, header := range []string{"", "Token abc", "Bearer ", "bearer-without-space"} {
		err := mw.RequireAuth(okHandler)(newContext(t, header))
		require.Error(t, err, "header %q", header)
		assert.ErrorIs(t, err, apperr.ErrAuthentication)
	}
}

func TestRequireAuth_ValidTokenSetsIdentity(t *testing.T) {
	t.Parallel()

	mw := NewAuth(&service.AuthService{Secret: testSecret})

	token, err := tokens.SignAccess(testSecret, "user-1", models.RoleUser, time.Now().Add(time.Minute))
	require.NoError(t, err)

	c := newContext(t, "Bearer "+token)
	require.NoError(t, mw.RequireAuth(okHandler)(c))

	assert.Equal(t, "user-1", c.Get(CtxUserID))
	assert.Equal(t, models.RoleUser, c.Get(CtxRole))
}

func TestRequireAdmin_RoleSplit(t *testing.T) {
	t.Parallel()

	mw := NewAuth(&service.AuthService{Secret: testSecret})

	userToken, err := tokens.SignAccess(testSecret, "user-1", models.RoleUser, time.Now().Add(time.Minute))
	require.NoError(t, err)
	adminToken, err := tokens.SignAccess(testSecret, "admin-1", models.RoleAdmin, time.Now().Add(time.Minute))
	require.NoError(t, err)

	err = mw.RequireAdmin(okHandler)(newContext(t, "Bearer "+userToken))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	require.NoError(t, mw.RequireAdmin(okHandler)(newContext(t, "Bearer "+adminToken)))
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	t.Parallel()

	mw := NewAuth(&service.AuthService{Secret: testSecret})

	expired, err := tokens.SignAccess(testSecret, "user-1", models.RoleUser, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	err = mw.RequireAuth(okHandler)(newContext(t, "Bearer "+expired))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}
