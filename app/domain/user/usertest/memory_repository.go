// Package usertest provides an in-memory user.UserRepository for tests.
package usertest

import (
	"context"
	"sync"

	"buildplate.dev/plate-api-gateway/app/domain/user"
)

type MemoryRepository struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]user.User
	profiles map[uint]user.Profile

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		users:    make(map[uint]user.User),
		profiles: make(map[uint]user.Profile),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.PublicID == publicID })
}

func (r *MemoryRepository) find(match func(user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindProfile(ctx context.Context, userID uint) (*user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepository) SaveProfile(ctx context.Context, p *user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.profiles[p.UserID] = *p
	return nil
}

// Len reports the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
