package memory

import (
	"context"
	"sync"

	"github.com/storefront-go/storefront/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*user.User
	byEmail map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[int64]*user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return 0, user.ErrEmailTaken
	}

	r.nextID++
	clone := *u
	clone.ID = r.nextID
	r.users[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	return clone.ID, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}
