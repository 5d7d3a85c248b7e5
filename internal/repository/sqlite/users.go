package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, string(user.Role), formatTime(now),
	)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?`, email)
}

func (r *usersRepo) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *usersRepo) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user      domain.User
		role      string
		createdAt string
	)
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&createdAt,
	); err != nil {
		return nil, mapError(err)
	}
	user.Role = domain.Role(role)
	user.CreatedAt = parseTime(createdAt)
	return &user, nil
}
