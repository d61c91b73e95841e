package auth

import (
	"context"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

// TokenStore persists the hash of each user's single active refresh token.
// The users repository implements it over the refresh_token_hash column.
type TokenStore interface {
	SetRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	ReplaceRefreshTokenHash(ctx context.Context, userID, oldHash, newHash string) error
	ClearRefreshTokensIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	_ TokenStore = (user.Repository)(nil)
	_ TokenStore = (*user.MockRepository)(nil)
)
