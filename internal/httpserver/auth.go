package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/middleware"
	"github.com/velsland/portfolio-api/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Svc.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}

	if err := h.Svc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAuth returns the authenticated user; the middleware has already
// verified the bearer token.
func (h *AuthHTTP) CheckAuth(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return fmt.Errorf("missing identity: %w", apperr.ErrAuthentication)
	}

	user, err := h.Svc.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
