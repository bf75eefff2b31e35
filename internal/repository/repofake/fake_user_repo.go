package repofake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// FakeUserRepo is an in-memory UserRepository for tests.
type FakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User

	// FailSetRefreshToken makes SetRefreshToken return an error, to exercise
	// issuance failure paths.
	FailSetRefreshToken bool
}

// NewFakeUserRepo creates an empty fake.
func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: make(map[string]*domain.User)}
}

// Seed inserts a user directly, assigning an ID when absent.
func (f *FakeUserRepo) Seed(user *domain.User) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	f.users[user.ID] = &clone
	return user
}

func (f *FakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *FakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	refreshToken := stored.RefreshToken
	clone := *user
	clone.RefreshToken = refreshToken
	clone.UpdatedAt = time.Now()
	f.users[user.ID] = &clone
	return nil
}

func (f *FakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *FakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *FakeUserRepo) ListByRoles(_ context.Context, roles ...domain.Role) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, user := range f.users {
		for _, role := range roles {
			if user.Role == role {
				clone := *user
				out = append(out, &clone)
				break
			}
		}
	}
	return out, nil
}

func (f *FakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	return nil
}

func (f *FakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSetRefreshToken {
		return errors.New("storage unavailable")
	}
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = token
	user.UpdatedAt = time.Now()
	return nil
}

func (f *FakeUserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	return f.SetRefreshToken(ctx, id, "")
}
