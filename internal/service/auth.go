package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/events"
	"github.com/velsland/portfolio-api/internal/hash"
	"github.com/velsland/portfolio-api/internal/logging"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/ratelimit"
	"github.com/velsland/portfolio-api/internal/repo"
	"github.com/velsland/portfolio-api/internal/tokens"
)

// maxRefreshValueLen bounds presented refresh values; our own are 64 hex
// chars, anything past this is rejected before touching the store.
const maxRefreshValueLen = 128

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService struct {
	Repo    *repo.GormRepo
	Limiter ratelimit.Counter
	Events  *events.Producer

	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RateWindow time.Duration
	RateMax    int
}

type Identity struct {
	UserID string
	Role   string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password: must be at least 8 characters: %w", apperr.ErrValidation)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return fmt.Errorf("password: must contain an uppercase letter: %w", apperr.ErrValidation)
	case !lower:
		return fmt.Errorf("password: must contain a lowercase letter: %w", apperr.ErrValidation)
	case !digit:
		return fmt.Errorf("password: must contain a digit: %w", apperr.ErrValidation)
	case !special:
		return fmt.Errorf("password: must contain a special character: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("email: malformed address: %w", apperr.ErrValidation)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if n := len([]rune(name)); n < 2 || n > 100 {
		return nil, fmt.Errorf("name: must be 2-100 characters: %w", apperr.ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "hash", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("register_failed", "reason", "email_taken")
		} else {
			l.Error("register_failed", "error", err)
		}
		return nil, err
	}

	if err := s.Events.PublishEvent(ctx, "user_events", user.ID, map[string]any{
		"type":  "user_registered",
		"id":    user.ID,
		"email": user.Email,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)

	// Rate limit before touching credentials so attempts past the bound
	// fail the same way whether or not the password is right.
	if s.Limiter != nil {
		key := "login:" + email + ":" + clientIP
		count, err := s.Limiter.Increment(ctx, key, s.RateWindow)
		if err != nil {
			l.Warn("rate_limit_unavailable", "error", err)
		} else if count > int64(s.RateMax) {
			l.Warn("login_rate_limited", "email", email, "ip", clientIP)
			return nil, fmt.Errorf("login attempts exceeded: %w", apperr.ErrRateLimited)
		}
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthentication) {
			l.Warn("login_failed", "reason", "invalid_credentials")
			return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuthentication)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid_credentials")
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuthentication)
	}

	res, err := s.issueSession(ctx, user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}
	l.Info("login_success", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessExp := time.Now().Add(s.AccessTTL)
	accessToken, err := tokens.SignAccess(s.Secret, user.ID, user.Role, accessExp)
	if err != nil {
		return nil, err
	}

	refreshValue, err := tokens.NewRefreshValue()
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(s.RefreshTTL)

	if err := s.Repo.CreateRefresh(ctx, &models.RefreshToken{
		TokenHash: tokens.Sha256Hex(refreshValue),
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshValue string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshValue == "" || len(refreshValue) > maxRefreshValueLen {
		return nil, fmt.Errorf("refreshToken: value out of bounds: %w", apperr.ErrValidation)
	}

	newValue, err := tokens.NewRefreshValue()
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(s.RefreshTTL)
	replacement := &models.RefreshToken{
		TokenHash: tokens.Sha256Hex(newValue),
		ExpiresAt: refreshExp.Unix(),
	}

	userID, err := s.Repo.RotateRefresh(ctx, tokens.Sha256Hex(refreshValue), replacement)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthentication) {
			l.Warn("refresh_rejected")
		} else {
			l.Error("refresh_failed", "error", err)
		}
		return nil, err
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessExp := time.Now().Add(s.AccessTTL)
	accessToken, err := tokens.SignAccess(s.Secret, user.ID, user.Role, accessExp)
	if err != nil {
		return nil, err
	}

	l.Info("refresh_success", "user_id", user.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: newValue,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Logout revokes the presented token. Unknown, expired or already-revoked
// values are a no-op success: the end state, no valid session, holds.
func (s *AuthService) Logout(ctx context.Context, refreshValue string) error {
	if refreshValue == "" || len(refreshValue) > maxRefreshValueLen {
		return nil
	}
	return s.Repo.RevokeRefresh(ctx, tokens.Sha256Hex(refreshValue))
}

// Authorize verifies the access token and, when requiredRole is non-empty,
// the role claim. A bad token is an authentication failure; a known
// identity with the wrong role is an authorization failure.
func (s *AuthService) Authorize(tokenStr, requiredRole string) (*Identity, error) {
	claims, err := tokens.AccessClaimsFromToken(tokenStr, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired access token: %w", apperr.ErrAuthentication)
	}
	if requiredRole != "" && claims.Role != requiredRole {
		return nil, fmt.Errorf("role %q required: %w", requiredRole, apperr.ErrAuthorization)
	}
	return &Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.Repo.FindUserByID(ctx, userID)
}

// SeedAdmin creates the ADMIN account when it does not exist yet. Role
// assignment never happens through registration.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = normalizeEmail(email)
	if _, err := s.Repo.FindUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperr.ErrAuthentication) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	return s.Repo.CreateUser(ctx, &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		Role:         models.RoleAdmin,
	})
}
