package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/storefront-go/storefront/internal/domain/user"
)

const pqUniqueViolation = "23505"

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	FullName       string    `db:"full_name"`
	Active         bool      `db:"is_active"`
	Admin          bool      `db:"is_admin"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r userRow) toDomain() *user.User {
	return &user.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		FullName:       r.FullName,
		Active:         r.Active,
		Admin:          r.Admin,
		CreatedAt:      r.CreatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	const q = `INSERT INTO users (email, hashed_password, full_name, is_active, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &id, q,
		u.Email, u.HashedPassword, u.FullName, u.Active, u.Admin, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return 0, user.ErrEmailTaken
		}
		return 0, fmt.Errorf("users: insert: %w", err)
	}
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	const q = `SELECT id, email, hashed_password, full_name, is_active, is_admin, created_at
		FROM users WHERE id = $1`

	var row userRow
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("users: get %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	const q = `SELECT id, email, hashed_password, full_name, is_active, is_admin, created_at
		FROM users WHERE email = $1`

	var row userRow
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("users: get by email: %w", err)
	}
	return row.toDomain(), nil
}
