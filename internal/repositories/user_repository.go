package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, email, password_hash, role, active, created_at`

func (r UserRepository) get(ctx context.Context, where string, arg any) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundError{Resource: "user", Err: err}
	}
	return u, err
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.get(ctx, `email = ?`, email)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.get(ctx, `id = ?`, id)
}

// Upsert creates the user or resets name, password and role.
func (r UserRepository) Upsert(ctx context.Context, u models.User) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, active) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), name = VALUES(name), password_hash = VALUES(password_hash),
			role = VALUES(role), active = VALUES(active)`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Active)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "user", Err: err}
		}
		return 0, fmt.Errorf("upsert user: %w", err)
	}
	return res.LastInsertId()
}
