package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")
	// ErrStaleRefreshToken means the presented refresh token is no longer the active one.
	ErrStaleRefreshToken = errors.New("refresh token has been superseded")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// FindByUsernameOrEmail matches either field; a username match is preferred.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
	UpdateProfile(ctx context.Context, userID string, name, gender *string, updatedAt time.Time) (*User, error)
	// SetRefreshTokenHash stores the hash of the active refresh token; an empty hash clears it.
	SetRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	// ReplaceRefreshTokenHash swaps oldHash for newHash only while oldHash is still the stored one.
	ReplaceRefreshTokenHash(ctx context.Context, userID, oldHash, newHash string) error
	// ClearRefreshTokensIssuedBefore drops every refresh token hash stored before cutoff.
	ClearRefreshTokensIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	db *database.DBService
}

func NewUserRepository(db *database.DBService) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, username, name, email, gender, profile_picture, password_hash, refresh_token_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var refreshTokenHash sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.Email, &user.Gender, &user.ProfilePicture,
		&user.PasswordHash, &refreshTokenHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.RefreshTokenHash = refreshTokenHash.String
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, name, email, gender, profile_picture, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.DB.ExecContext(ctx, r.db.Rebind(query), user.ID, user.Username, user.Name, user.Email,
		user.Gender, user.ProfilePicture, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*User, error) {
	user, err := scanUser(r.db.DB.QueryRowContext(ctx, r.db.Rebind(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $2
		ORDER BY CASE WHEN username = $1 THEN 0 ELSE 1 END
		LIMIT 1
	`
	return r.getOne(ctx, query, username, email)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    updated_at = $2
		WHERE id = $3
	`
	return r.execAffectingUser(ctx, query, passwordHash, updatedAt, userID)
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, name, gender *string, updatedAt time.Time) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($1, name),
		    gender = COALESCE($2, gender),
		    updated_at = $3
		WHERE id = $4
	`
	if err := r.execAffectingUser(ctx, query, name, gender, updatedAt, userID); err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, userID)
}

func (r *userRepository) SetRefreshTokenHash(ctx context.Context, userID, tokenHash string) error {
	var value sql.NullString
	var issuedAt sql.NullTime
	if tokenHash != "" {
		value = sql.NullString{String: tokenHash, Valid: true}
		issuedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_issued_at = $2 WHERE id = $3`
	return r.execAffectingUser(ctx, query, value, issuedAt, userID)
}

func (r *userRepository) ReplaceRefreshTokenHash(ctx context.Context, userID, oldHash, newHash string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $1,
		    refresh_token_issued_at = $2
		WHERE id = $3 AND refresh_token_hash = $4
	`
	err := r.execAffectingUser(ctx, query, newHash, time.Now().UTC(), userID, oldHash)
	if errors.Is(err, ErrUserNotFound) {
		return ErrStaleRefreshToken
	}
	return err
}

func (r *userRepository) ClearRefreshTokensIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE users
		SET refresh_token_hash = NULL,
		    refresh_token_issued_at = NULL
		WHERE refresh_token_issued_at < $1
	`
	result, err := r.db.DB.ExecContext(ctx, r.db.Rebind(query), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("could not clear refresh tokens: %w", err)
	}
	return result.RowsAffected()
}

func (r *userRepository) execAffectingUser(ctx context.Context, query string, args ...any) error {
	result, err := r.db.DB.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
