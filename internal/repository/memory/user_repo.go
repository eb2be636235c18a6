// Package memory holds repositories for running without a database.
// Nothing stored here survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int
	byName map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, byName: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	u := *user
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.nextID++
	r.byName[u.Username] = u
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byName {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
