package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// ErrEmailTaken is returned when a second account uses the same email.
var ErrEmailTaken = errors.New("email already registered")

type userRow struct {
	user domain.User
}

type userRepository struct {
	db *DB
}

// NewUserRepository returns a memory-backed user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, row := range r.db.users {
		if row.user.Email == email {
			return ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = email
	user.CreatedAt = r.db.stamp()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = &userRow{user: *user}
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := row.user
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	email = strings.ToLower(email)
	for _, row := range r.db.users {
		if row.user.Email == email {
			user := row.user
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) Summaries(_ context.Context, ids []string) (map[string]domain.UserSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	result := make(map[string]domain.UserSummary, len(ids))
	for _, id := range ids {
		if row, ok := r.db.users[id]; ok {
			result[id] = row.user.Summary()
		}
	}
	return result, nil
}
