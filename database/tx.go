package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından karşılanır.
// Repository'ler bunu aldığı için aynı repo normalde pool ile,
// WithTx içinde transaction ile çalışabilir.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx, fn'i tek bir transaction içinde çalıştırır.
//
// fn nil dönerse COMMIT, error dönerse ROLLBACK yapılır.
// fn panic atarsa ROLLBACK yapılıp panic tekrar fırlatılır; açık kalan
// transaction SQLite'ta tüm yazıcıları kilitler.
//
// DSN'deki _txlock=immediate sayesinde BEGIN IMMEDIATE kullanılır:
// yazma kilidi baştan alınır, eşzamanlı iki WithTx sıraya girer.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}

// TimeLayout, DATETIME kolonlarında saklanan format (UTC, saniye hassasiyeti).
// CURRENT_TIMESTAMP ile aynı formattır; string karşılaştırması zaman sırasıyla örtüşür.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime, t'yi DATETIME kolonlarıyla karşılaştırılabilir string'e çevirir.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
