package user

import (
	"context"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository for tests in this and dependent packages.
type MockRepository struct {
	mu       sync.Mutex
	users    map[string]*User
	issuedAt map[string]time.Time
	// Err, when set, is returned by every call.
	Err error
	// Clock stamps refresh token writes; nil means time.Now.
	Clock func() time.Time
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:    make(map[string]*User),
		issuedAt: make(map[string]time.Time),
	}
}

func (m *MockRepository) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

func (m *MockRepository) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockRepository) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *MockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var emailMatch *User
	for _, user := range m.users {
		if user.Username == username {
			found := *user
			return &found, nil
		}
		if user.Email == email {
			emailMatch = user
		}
	}
	if emailMatch != nil {
		found := *emailMatch
		return &found, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) UpdatePassword(_ context.Context, userID, passwordHash string, updatedAt time.Time) error {
	return m.update(userID, func(u *User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = updatedAt
	})
}

func (m *MockRepository) UpdateProfile(ctx context.Context, userID string, name, gender *string, updatedAt time.Time) (*User, error) {
	err := m.update(userID, func(u *User) {
		if name != nil {
			u.Name = *name
		}
		if gender != nil {
			u.Gender = *gender
		}
		u.UpdatedAt = updatedAt
	})
	if err != nil {
		return nil, err
	}
	return m.GetUserByID(ctx, userID)
}

func (m *MockRepository) SetRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	return m.update(userID, func(u *User) {
		u.RefreshTokenHash = tokenHash
		if tokenHash == "" {
			delete(m.issuedAt, userID)
		} else {
			m.issuedAt[userID] = m.now()
		}
	})
}

func (m *MockRepository) ReplaceRefreshTokenHash(_ context.Context, userID, oldHash, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.users[userID]
	if !ok || oldHash == "" || user.RefreshTokenHash != oldHash {
		return ErrStaleRefreshToken
	}
	user.RefreshTokenHash = newHash
	m.issuedAt[userID] = m.now()
	return nil
}

func (m *MockRepository) ClearRefreshTokensIssuedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var cleared int64
	for userID, issuedAt := range m.issuedAt {
		if issuedAt.Before(cutoff) {
			m.users[userID].RefreshTokenHash = ""
			delete(m.issuedAt, userID)
			cleared++
		}
	}
	return cleared, nil
}

func (m *MockRepository) update(userID string, apply func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	apply(user)
	return nil
}
