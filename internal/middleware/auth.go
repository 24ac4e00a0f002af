package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/service"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type Auth struct {
	Svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth {
	return &Auth{Svc: svc}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", fmt.Errorf("missing access token: %w", apperr.ErrAuthentication)
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("malformed authorization header: %w", apperr.ErrAuthentication)
	}
	return token, nil
}

func (m *Auth) require(requiredRole string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		id, err := m.Svc.Authorize(token, requiredRole)
		if err != nil {
			return err
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxRole, id.Role)
		return next(c)
	}
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require("", next)
}

func (m *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(models.RoleAdmin, next)
}
