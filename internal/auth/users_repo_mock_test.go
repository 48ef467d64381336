package auth

import (
	"context"
	"sync"
	"time"
)

type usersRepoMock struct {
	mu     sync.Mutex
	users  map[int64]*User
	nextID int64
}

func newUsersRepoMock() *usersRepoMock {
	return &usersRepoMock{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

func (r *usersRepoMock) Create(_ context.Context, email, fullName, passwordHash string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = normalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}
	u := &User{
		Identity: Identity{
			ID:       r.nextID,
			Email:    email,
			FullName: fullName,
		},
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	r.nextID++
	copied := *u
	return &copied, nil
}

func (r *usersRepoMock) Get(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *usersRepoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = normalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *usersRepoMock) UpsertOAuthUser(ctx context.Context, email, fullName string) (*User, error) {
	if u, err := r.GetByEmail(ctx, email); err == nil {
		return u, nil
	}
	return r.Create(ctx, email, fullName, "")
}

func (r *usersRepoMock) TouchLastLogon(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogonTime = &at
	return nil
}

func (r *usersRepoMock) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}
