package users

import "context"

type Store interface {
	// Insert persists a new user. Returns ErrEmailTaken on a duplicate email.
	Insert(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
