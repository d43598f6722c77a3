package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("user: not found")
	ErrEmailTaken     = errors.New("user: email already registered")
	ErrInvalidEmail   = errors.New("user: email is required")
	ErrEmptyPassword  = errors.New("user: password is required")
	ErrInactive       = errors.New("user: account is inactive")
	ErrBadCredentials = errors.New("user: incorrect email or password")
)

type User struct {
	ID             int64
	Email          string
	HashedPassword string
	FullName       string
	Active         bool
	Admin          bool
	CreatedAt      time.Time
}

func New(email, hashedPassword, fullName string) (*User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if hashedPassword == "" {
		return nil, ErrEmptyPassword
	}
	return &User{
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
