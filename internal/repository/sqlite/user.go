package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, oauth_provider, oauth_provider_id, created_at, updated_at`

type userRepositoryImpl struct {
	store *Store
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepositoryImpl{store: store}
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u                                  user.User
		passwordHash, provider, providerID sql.NullString
		createdAt, updatedAt               string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &passwordHash, &provider, &providerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	u.PasswordHash = stringPtr(passwordHash)
	u.OAuthProvider = stringPtr(provider)
	u.OAuthProviderID = stringPtr(providerID)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return user.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, worklog.NormalizeEmail(email)))
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.store.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id.String()
	}
	now := formatTime(time.Now())

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, oauth_provider, oauth_provider_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		newUser.ID, newUser.Name, worklog.NormalizeEmail(newUser.Email),
		newUser.PasswordHash, newUser.OAuthProvider, newUser.OAuthProviderID, now, now,
	)
	if err != nil {
		if uniqueViolation(err, "users.email") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return r.GetByID(ctx, newUser.ID)
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	email = worklog.NormalizeEmail(email)
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE users SET oauth_provider = ?, oauth_provider_id = ?, updated_at = ?
		WHERE email = ?`,
		"google", googleID, formatTime(time.Now()), email,
	)
	if err != nil {
		return user.User{}, fmt.Errorf("link google account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrUserNotFound
	}
	return r.GetByEmail(ctx, email)
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
