package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"canteenhub/internal/middleware"
	"canteenhub/internal/models"
	"canteenhub/internal/observability"
	"canteenhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenCookie   = "token"
	tokenIssuer   = "canteenhub-api"
	tokenAudience = "canteenhub-client"
	sessionTTL    = 24 * time.Hour
	resetTokenTTL = 30 * time.Minute

	// purposeReset marks tokens minted for password resets; they are not
	// accepted as session tokens.
	purposeReset = "password_reset"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Year            string `json:"year"`
	Hall            string `json:"hall"`
	Department      string `json:"department"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new student account.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := validation.RegistrationInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Year:            req.Year,
		Hall:            req.Hall,
		Department:      req.Department,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
	if errs := validation.ValidateRegistration(in); len(errs) > 0 {
		return models.RespondWithFieldErrors(c, errs)
	}

	user, err := s.users.Register(c.Context(), in)
	if err != nil {
		return mapServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.Context(), "account registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"success": true,
		"user":    user,
	})
}

// Login verifies credentials and sets the session cookie.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Email, "", sessionTTL)
	if err != nil {
		return mapServiceError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, token, sessionTTL)

	middleware.Logger.InfoContext(c.Context(), "user logged in", "user_id", user.ID)
	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"success": true,
		"user":    user,
	})
}

// Logout clears the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.setSessionCookie(c, "", -time.Hour)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
		"success": true,
	})
}

// Me returns the authenticated user's account.
func (s *Server) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not authenticated"))
	}

	user, err := s.users.GetByID(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// ForgotPassword mints a single-use reset token and emails the link.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", req.Email))
	}
	if s.mailer == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fmt.Errorf("mail delivery is not configured")))
	}

	jti := uuid.NewString()
	expiry := time.Now().Add(resetTokenTTL)
	token, err := s.generateTokenWithID(user.ID, user.Email, purposeReset, jti, resetTokenTTL)
	if err != nil {
		return mapServiceError(c, models.NewInternalError(err))
	}
	if err := s.users.StoreResetToken(c.Context(), user.ID, jti, expiry); err != nil {
		return mapServiceError(c, err)
	}

	resetURL := strings.TrimSuffix(s.config.ResetURLBase, "/") + "?token=" + token
	if err := s.mailer.SendPasswordReset(c.Context(), user.Email, resetURL); err != nil {
		observability.ResetMailsSent.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(c.Context(), "reset mail delivery failed",
			"user_id", user.ID, "error", err)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	observability.ResetMailsSent.WithLabelValues("sent").Inc()

	return c.JSON(fiber.Map{
		"message": "Password reset email sent",
		"success": true,
	})
}

// ResetPassword verifies a reset token and sets the new password.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	claims, err := s.parseToken(req.Token)
	if err != nil || claims.Purpose != purposeReset {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Reset token is invalid or has expired"))
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Reset token is invalid or has expired"))
	}

	if err := s.users.CompleteReset(c.Context(), uint(userID), claims.ID, req.Password); err != nil {
		return mapServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.Context(), "password reset completed", "user_id", userID)
	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
		"success": true,
	})
}

// AuthRequired authenticates the request from the session cookie, with a
// bearer header fallback, and stores the user id for handlers.
func (s *Server) AuthRequired(c *fiber.Ctx) error {
	raw := c.Cookies(tokenCookie)
	if raw == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if after, found := strings.CutPrefix(header, "Bearer "); found {
			raw = after
		}
	}
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
	}

	claims, err := s.parseToken(raw)
	if err != nil || claims.Purpose != "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	c.Locals("user_id", uint(userID))
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
	c.SetUserContext(ctx)
	return c.Next()
}

// tokenClaims are the JWT claims minted by this API.
type tokenClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func (s *Server) generateToken(userID uint, email, purpose string, ttl time.Duration) (string, error) {
	return s.generateTokenWithID(userID, email, purpose, uuid.NewString(), ttl)
}

func (s *Server) generateTokenWithID(userID uint, email, purpose, jti string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) parseToken(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}
