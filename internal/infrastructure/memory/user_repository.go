// Package memory provides an in-process UserRepository. A single mutex makes
// every check-and-write atomic, the same guarantee the postgres unique indexes give.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/authmify/internal/domain/entity"
	"github.com/oksasatya/authmify/internal/domain/repository"
)

type UserRepository struct {
	mu          sync.RWMutex
	byID        map[string]*entity.User
	byEmail     map[string]string
	byBiometric map[string]string
	now         func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:        make(map[string]*entity.User),
		byEmail:     make(map[string]string),
		byBiometric: make(map[string]string),
		now:         time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, email, passwordHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, repository.ErrDuplicate
	}
	now := r.now()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return clone(u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.lookup(id)
}

func (r *UserRepository) FindByBiometricKey(_ context.Context, key string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBiometric[key]
	if !ok || key == "" {
		return nil, repository.ErrNotFound
	}
	return r.lookup(id)
}

func (r *UserRepository) UpdateBiometricKey(_ context.Context, userID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if key != "" {
		if holder, taken := r.byBiometric[key]; taken && holder != userID {
			return repository.ErrDuplicate
		}
	}
	if u.BiometricKey != "" {
		delete(r.byBiometric, u.BiometricKey)
	}
	u.BiometricKey = key
	u.UpdatedAt = r.now()
	if key != "" {
		r.byBiometric[key] = userID
	}
	return nil
}

// lookup expects r.mu to be held.
func (r *UserRepository) lookup(id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
