package service

import (
	"context"
	"strings"
	"time"

	"canteenhub/internal/cache"
	"canteenhub/internal/models"
	"canteenhub/internal/repository"
	"canteenhub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserPage is one page of the public user directory.
type UserPage struct {
	Success    bool              `json:"success"`
	Data       []models.User     `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// ProfileUpdateInput carries the profile fields a user may change.
type ProfileUpdateInput struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Year       *string `json:"year,omitempty"`
	Hall       *string `json:"hall,omitempty"`
	Department *string `json:"department,omitempty"`
}

// UserService handles account registration, authentication and profiles.
type UserService struct {
	users repository.UserRepository
	store *cache.Store
}

// NewUserService wires a UserService from its collaborators.
func NewUserService(users repository.UserRepository, store *cache.Store) *UserService {
	return &UserService{users: users, store: store}
}

// Register creates a new account after checking for an existing email
// and hashing the password.
func (s *UserService) Register(ctx context.Context, in validation.RegistrationInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Year:       strings.TrimSpace(in.Year),
		Hall:       strings.TrimSpace(in.Hall),
		Department: strings.TrimSpace(in.Department),
		Password:   string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials. An unknown email yields a not-found
// error, a wrong password an unauthorized one.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetByID loads a user, served from cache when a fresh copy exists.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.store.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail loads a user by email, returning (nil, nil) when absent.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListDirectory returns one page of the user directory with each
// student's reviews attached.
func (s *UserService) ListDirectory(ctx context.Context, page, limit int) (*UserPage, error) {
	users, total, err := s.users.ListWithReviews(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{
		Success:    true,
		Data:       users,
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

// UpdateProfile applies a partial profile edit and validates the merged
// result with the registration field rules.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdateInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Year != nil {
		user.Year = strings.TrimSpace(*in.Year)
	}
	if in.Hall != nil {
		user.Hall = strings.TrimSpace(*in.Hall)
	}
	if in.Department != nil {
		user.Department = strings.TrimSpace(*in.Department)
	}

	// The merged result must still satisfy the registration field rules.
	var errs []string
	if len(strings.TrimSpace(user.Name)) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if err := validation.ValidatePhone(user.Phone); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.TrimSpace(user.Year) == "" {
		errs = append(errs, "Year is required")
	}
	if len(strings.TrimSpace(user.Hall)) < 2 {
		errs = append(errs, "Hall name is required")
	}
	if len(strings.TrimSpace(user.Department)) < 2 {
		errs = append(errs, "Department is required")
	}
	if len(errs) > 0 {
		return nil, models.NewValidationError(strings.Join(errs, "; "))
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.store.Invalidate(ctx, cache.UserKey(id))
	return user, nil
}

// StoreResetToken records the reset token id and expiry on the account.
func (s *UserService) StoreResetToken(ctx context.Context, id uint, tokenID string, expiry time.Time) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.ResetTokenID = tokenID
	user.ResetTokenExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.store.Invalidate(ctx, cache.UserKey(id))
	return nil
}

// CompleteReset verifies the stored token id is still valid, sets the
// new password and clears the token so it cannot be replayed.
func (s *UserService) CompleteReset(ctx context.Context, id uint, tokenID, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.ResetTokenID == "" || user.ResetTokenID != tokenID {
		return models.NewValidationError("Reset link is invalid or has already been used")
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return models.NewValidationError("Reset link has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	user.ResetTokenID = ""
	user.ResetTokenExpiry = nil

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.store.Invalidate(ctx, cache.UserKey(id))
	return nil
}
