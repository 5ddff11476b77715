package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type userRepositoryImpl struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUserRepository() user.UserRepository {
	return &userRepositoryImpl{users: make(map[string]user.User)}
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	for _, u := range r.users {
		if u.Email == newUser.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id.String()
	}
	now := time.Now().UTC()
	newUser.CreatedAt, newUser.UpdatedAt = now, now
	r.users[newUser.ID] = newUser
	return newUser, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for id, u := range r.users {
		if u.Email != email {
			continue
		}
		provider := "google"
		u.OAuthProvider = &provider
		u.OAuthProviderID = &googleID
		u.UpdatedAt = time.Now().UTC()
		r.users[id] = u
		return u, nil
	}
	return user.User{}, user.ErrUserNotFound
}
