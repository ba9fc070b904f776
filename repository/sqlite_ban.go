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

type sqliteBanRepo struct {
	db database.TxQuerier
}

// NewSQLiteBanRepo, BanRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteBanRepo(db database.TxQuerier) BanRepository {
	return &sqliteBanRepo{db: db}
}

// banSelect, ban satırını alıcı ve oluşturan kullanıcı adlarıyla okur.
// creator_id NULL (sistem ban'ı) veya silinmiş kullanıcı için LEFT JOIN.
const banSelect = `
	SELECT b.id, b.creator_id, c.username, b.receiver_id, r.username, b.end_date, b.created_at
	FROM bans b
	JOIN users r ON r.id = b.receiver_id
	LEFT JOIN users c ON c.id = b.creator_id`

func scanBan(row interface{ Scan(...any) error }) (*models.Ban, error) {
	var (
		ban     models.Ban
		endDate sql.NullTime
	)
	if err := row.Scan(
		&ban.ID, &ban.CreatorID, &ban.CreatorUsername,
		&ban.ReceiverID, &ban.ReceiverUsername, &endDate, &ban.CreatedAt,
	); err != nil {
		return nil, err
	}
	ban.EndDate = nullTimePtr(endDate)
	return &ban, nil
}

func (r *sqliteBanRepo) Create(ctx context.Context, ban *models.Ban) error {
	if ban.ID == "" {
		ban.ID = uuid.NewString()
	}
	if ban.CreatedAt.IsZero() {
		ban.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	ban.EndDate = models.NormalizeEndDate(ban.EndDate)

	query := `
		INSERT INTO bans (id, creator_id, receiver_id, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		ban.ID, ban.CreatorID, ban.ReceiverID,
		nullableTime(ban.EndDate), database.FormatTime(ban.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to create ban: %w", err)
	}

	return nil
}

// strongestOrder, kalıcı ban'ı önce, sonra en geç biteni sıralar.
const strongestOrder = ` ORDER BY b.end_date IS NULL DESC, b.end_date DESC, b.created_at DESC LIMIT 1`

func (r *sqliteBanRepo) GetActiveByReceiver(ctx context.Context, receiverID string, now time.Time) (*models.Ban, error) {
	// Normalde en fazla bir satır eşleşir; birden fazla kaldıysa en güçlüsü seçilir.
	query := banSelect + ` WHERE b.receiver_id = ? AND (b.end_date IS NULL OR b.end_date > ?)` + strongestOrder

	ban, err := scanBan(r.db.QueryRowContext(ctx, query, receiverID, database.FormatTime(now)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active ban: %w", err)
	}

	return ban, nil
}

func (r *sqliteBanRepo) GetStrongestByReceiver(ctx context.Context, receiverID string) (*models.Ban, error) {
	ban, err := scanBan(r.db.QueryRowContext(ctx, banSelect+` WHERE b.receiver_id = ?`+strongestOrder, receiverID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ban for receiver: %w", err)
	}

	return ban, nil
}

func (r *sqliteBanRepo) UpdateEndDate(ctx context.Context, id string, creatorID *string, endDate *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bans SET creator_id = ?, end_date = ? WHERE id = ?`,
		creatorID, nullableTime(models.NormalizeEndDate(endDate)), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update ban: %w", err)
	}

	return requireAffected(result)
}

func (r *sqliteBanRepo) GetByID(ctx context.Context, id string) (*models.Ban, error) {
	ban, err := scanBan(r.db.QueryRowContext(ctx, banSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ban by id: %w", err)
	}

	return ban, nil
}

func (r *sqliteBanRepo) List(ctx context.Context) ([]models.Ban, error) {
	rows, err := r.db.QueryContext(ctx, banSelect+` ORDER BY b.created_at DESC, b.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}
	defer rows.Close()

	bans := []models.Ban{}
	for rows.Next() {
		ban, err := scanBan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ban row: %w", err)
		}
		bans = append(bans, *ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban rows: %w", err)
	}

	return bans, nil
}

func (r *sqliteBanRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}

	return requireAffected(result)
}

func (r *sqliteBanRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bans WHERE end_date IS NOT NULL AND end_date <= ?`,
		database.FormatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired bans: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n, nil
}

// nullableTime, nil → SQL NULL, aksi halde DATETIME string'i.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return database.FormatTime(*t)
}

// requireAffected, hiçbir satır etkilenmediyse pkg.ErrNotFound döner.
func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
