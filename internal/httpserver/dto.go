package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/models"
)

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required,min=2,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=128"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

type projectRequest struct {
	Title       string `json:"title"       validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CategoryID  *uint  `json:"category_id"`
	Featured    bool   `json:"featured"`
	SortOrder   int    `json:"sort_order"`
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

type testimonialRequest struct {
	Author    string `json:"author" validate:"required"`
	Company   string `json:"company"`
	Quote     string `json:"quote"  validate:"required"`
	Published bool   `json:"published"`
}

type contactRequest struct {
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body"    validate:"required,max=5000"`
}

type pageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPageMeta(page, size int, total int64) pageMeta {
	if size <= 0 {
		return pageMeta{Page: page, Total: total, TotalPages: 0}
	}
	return pageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
	}
}

// Validator binds go-playground/validator as Echo's request validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(fields, "; "), apperr.ErrValidation)
	}
	return fmt.Errorf("invalid request body: %w", apperr.ErrValidation)
}
