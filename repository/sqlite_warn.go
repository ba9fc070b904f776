package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cameronthecoder/django-ban/database"
	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/pkg"
)

type sqliteWarnRepo struct {
	db database.TxQuerier
}

// NewSQLiteWarnRepo, WarnRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteWarnRepo(db database.TxQuerier) WarnRepository {
	return &sqliteWarnRepo{db: db}
}

const warnSelect = `
	SELECT w.id, w.creator_id, c.username, w.receiver_id, r.username, w.created_at
	FROM warns w
	JOIN users r ON r.id = w.receiver_id
	LEFT JOIN users c ON c.id = w.creator_id`

func scanWarn(row interface{ Scan(...any) error }) (*models.Warn, error) {
	var w models.Warn
	if err := row.Scan(
		&w.ID, &w.CreatorID, &w.CreatorUsername,
		&w.ReceiverID, &w.ReceiverUsername, &w.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *sqliteWarnRepo) Create(ctx context.Context, warn *models.Warn) error {
	if warn.ID == "" {
		warn.ID = uuid.NewString()
	}
	if warn.CreatedAt.IsZero() {
		warn.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO warns (id, creator_id, receiver_id, created_at) VALUES (?, ?, ?, ?)`,
		warn.ID, warn.CreatorID, warn.ReceiverID, database.FormatTime(warn.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create warn: %w", err)
	}

	return nil
}

func (r *sqliteWarnRepo) CountByReceiver(ctx context.Context, receiverID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM warns WHERE receiver_id = ?`, receiverID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count warns: %w", err)
	}
	return count, nil
}

func (r *sqliteWarnRepo) DeleteByReceiver(ctx context.Context, receiverID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM warns WHERE receiver_id = ?`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete warns: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n, nil
}

func (r *sqliteWarnRepo) GetByID(ctx context.Context, id string) (*models.Warn, error) {
	warn, err := scanWarn(r.db.QueryRowContext(ctx, warnSelect+` WHERE w.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warn by id: %w", err)
	}
	return warn, nil
}

func (r *sqliteWarnRepo) List(ctx context.Context) ([]models.Warn, error) {
	rows, err := r.db.QueryContext(ctx, warnSelect+` ORDER BY w.created_at DESC, w.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list warns: %w", err)
	}
	defer rows.Close()

	warns := []models.Warn{}
	for rows.Next() {
		w, err := scanWarn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warn row: %w", err)
		}
		warns = append(warns, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warn rows: %w", err)
	}

	return warns, nil
}

func (r *sqliteWarnRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM warns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete warn: %w", err)
	}
	return requireAffected(result)
}
