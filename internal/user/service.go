package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	maleAvatarURL    = "https://avatar.iran.liara.run/public/41"
	femaleAvatarURL  = "https://avatar.iran.liara.run/public/54"
	defaultAvatarURL = "https://avatar.iran.liara.run/public/46"

	DefaultBcryptCost = 12
)

var (
	ErrMissingFields         = errors.New("all fields are required")
	ErrMissingPasswords      = errors.New("old and new password are required")
	ErrNothingToUpdate       = errors.New("name or gender is required")
	ErrInvalidEmail          = errors.New("email address is not valid")
	ErrInvalidGender         = errors.New("gender must be one of male, female, other")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidOldPassword    = errors.New("invalid old password")
	ErrPasswordTooLong       = errors.New("password must be at most 72 bytes long")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInternalError         = errors.New("internal Server Error")
)

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Gender           string    `json:"gender"`
	ProfilePicture   string    `json:"profilePicture"`
	PasswordHash     string    `json:"-"`
	RefreshTokenHash string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Sanitized returns a copy without the password hash and refresh token hash.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	clean.RefreshTokenHash = ""
	return &clean
}

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
	Gender   string
}

// UpdateProfileInput holds the mutable profile fields; nil means unchanged.
type UpdateProfileInput struct {
	Name   *string
	Gender *string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error)
}

type service struct {
	repo       Repository
	bcryptCost int
	// compared against for unknown emails so both login failures cost one bcrypt comparison
	dummyHash []byte
}

func NewUserService(repo Repository, bcryptCost int) (Service, error) {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not prepare password hasher: %w", err)
	}
	return &service{
		repo:       repo,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
	}, nil
}

func (s *service) hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hashedPasswordBytes), err
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func IsValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// profilePictureFor picks the default avatar for a gender.
func profilePictureFor(gender string) string {
	switch gender {
	case GenderMale:
		return maleAvatarURL
	case GenderFemale:
		return femaleAvatarURL
	default:
		return defaultAvatarURL
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" || input.Name == "" || input.Email == "" || input.Password == "" || input.Gender == "" {
		return nil, ErrMissingFields
	}
	if err := validateEmailAddress(input.Email); err != nil {
		return nil, err
	}
	if !IsValidGender(input.Gender) {
		return nil, ErrInvalidGender
	}

	existingUser, err := s.repo.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		logger.Get().Error("Failed to check existing user", zap.Error(err))
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Username == input.Username {
			return nil, ErrUsernameAlreadyExists
		}
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := s.hashPassword(input.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		logger.Get().Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternalError
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &User{
		ID:             uuid.NewString(),
		Username:       input.Username,
		Name:           input.Name,
		Email:          input.Email,
		Gender:         input.Gender,
		ProfilePicture: profilePictureFor(input.Gender),
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			// lost a race with a concurrent registration; report which field clashed
			return nil, s.conflictFor(ctx, input.Username)
		}
		logger.Get().Error("Failed to create user", zap.Error(err))
		return nil, ErrInternalError
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID))
	return user.Sanitized(), nil
}

func (s *service) conflictFor(ctx context.Context, username string) error {
	existingUser, err := s.repo.FindByUsernameOrEmail(ctx, username, "")
	if err == nil && existingUser.Username == username {
		return ErrUsernameAlreadyExists
	}
	return ErrEmailAlreadyExists
}

// VerifyCredentials returns ErrInvalidCredentials for an unknown email and for a wrong password alike.
func (s *service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	existingUser, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		logger.Get().Error("Failed to get user by email", zap.Error(err))
		return nil, ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return existingUser, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	existingUser, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Get().Error("Failed to get user by id", zap.String("userID", userID), zap.Error(err))
		return nil, ErrInternalError
	}
	return existingUser, nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	existingUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Get().Error("Failed to get user by email", zap.Error(err))
		return nil, ErrInternalError
	}
	return existingUser, nil
}

func (s *service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingPasswords
	}

	existingUser, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !doPasswordsMatch(existingUser.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}

	newPasswordHash, err := s.hashPassword(newPassword)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		logger.Get().Error("Failed to hash password", zap.Error(err))
		return ErrInternalError
	}

	if err := s.repo.UpdatePassword(ctx, userID, newPasswordHash, time.Now().UTC().Truncate(time.Microsecond)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		logger.Get().Error("Failed to update password", zap.String("userID", userID), zap.Error(err))
		return ErrInternalError
	}
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			input.Name = nil
		} else {
			input.Name = &trimmed
		}
	}
	if input.Gender != nil && *input.Gender == "" {
		input.Gender = nil
	}
	if input.Name == nil && input.Gender == nil {
		return nil, ErrNothingToUpdate
	}
	if input.Gender != nil && !IsValidGender(*input.Gender) {
		return nil, ErrInvalidGender
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, input.Name, input.Gender, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Get().Error("Failed to update profile", zap.String("userID", userID), zap.Error(err))
		return nil, ErrInternalError
	}
	return updated.Sanitized(), nil
}
