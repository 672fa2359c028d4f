package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "umrahtransfer/internal/config"
	intdb "umrahtransfer/internal/db"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

type DraftRepository struct {
	DB *sql.DB
}

func (r DraftRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const draftColumns = `id, step, data, COALESCE(email,''), COALESCE(phone,''), created_at, updated_at, expires_at`

func scanDraft(row interface{ Scan(...any) error }) (models.Draft, error) {
	var (
		d    models.Draft
		data string
	)
	err := row.Scan(&d.ID, &d.Step, &data, &d.Email, &d.Phone, &d.CreatedAt, &d.UpdatedAt, &d.ExpiresAt)
	d.Data = []byte(data)
	return d, err
}

// Save inserts or replaces the snapshot. CreatedAt is kept on update unless
// the stored draft had already expired, which then starts afresh.
// created_at must be assigned before expires_at: MySQL applies the
// assignments in order.
func (r DraftRepository) Save(ctx context.Context, d models.Draft) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO drafts (id, step, data, email, phone, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE created_at = IF(expires_at <= VALUES(updated_at), VALUES(created_at), created_at),
			step = VALUES(step), data = VALUES(data), email = VALUES(email),
			phone = VALUES(phone), updated_at = VALUES(updated_at), expires_at = VALUES(expires_at)`,
		d.ID, d.Step, string(d.Data), intdb.NullIfEmpty(d.Email), intdb.NullIfEmpty(d.Phone),
		d.CreatedAt.UTC(), d.UpdatedAt.UTC(), d.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Get returns expired drafts too; callers decide via Draft.Expired.
func (r DraftRepository) Get(ctx context.Context, id string) (models.Draft, error) {
	d, err := scanDraft(r.db().QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return d, domain.NotFoundError{Resource: "draft", Err: err}
	}
	return d, err
}

func (r DraftRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return requireAffected(res, "draft")
}

// ListActive lists unexpired drafts, most recently touched first.
func (r DraftRepository) ListActive(ctx context.Context, now time.Time, limit, offset int) ([]models.Draft, int, error) {
	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts WHERE expires_at > ?`, now.UTC()).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drafts: %w", err)
	}
	rows, err := r.db().QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE expires_at > ?
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, now.UTC(), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	out := []models.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r DraftRepository) CountActive(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts WHERE expires_at > ?`, now.UTC()).Scan(&n)
	return n, err
}

func (r DraftRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM drafts WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return res.RowsAffected()
}
