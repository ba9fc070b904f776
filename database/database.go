// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// Driver olarak modernc.org/sqlite kullanılır (pure-Go, CGO gerekmez).
// Blank import driver'ı database/sql'e "sqlite" adıyla kaydeder.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// dsnPragmas, her bağlantıda uygulanan ayarlar.
//
//   - foreign_keys(1): SQLite'ta FK kontrolü varsayılan kapalıdır
//   - journal_mode(WAL): okuyucular yazıcıyı beklemez
//   - busy_timeout(5000): kilitli DB'de hemen SQLITE_BUSY yerine 5sn bekle
//   - _txlock=immediate: BeginTx → BEGIN IMMEDIATE, yazma kilidi transaction
//     başında alınır. Aynı receiver için eşzamanlı ban/warn işlemleri böylece
//     sıraya girer; "oku → karar ver → yaz" adımları arasına başka yazıcı giremez.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"

// DB, *sql.DB connection pool'unu saran struct.
type DB struct {
	Conn *sql.DB
}

// New, SQLite bağlantısını açar ve henüz uygulanmamış migration'ları çalıştırır.
//
// dbPath: SQLite dosya yolu (ör: "./data/ban.db")
// migrationsFS: *.sql dosyalarını kökte içeren fs.FS
// (genelde fs.Sub(EmbeddedMigrations, "migrations")).
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := db.runMigrations(migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database connected", "component", "database", "path", dbPath)
	return db, nil
}

// Close, bağlantı havuzunu kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, migration dosyalarını isim sırasıyla (001_, 002_, ...) çalıştırır.
// schema_migrations tablosu uygulanmış dosyaları tutar; her dosya bir kez çalışır.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		// Dosya ve kaydı tek transaction'da: yarım kalan migration olmaz.
		tx, err := db.Conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", file, err)
		}
		for i, stmt := range splitStatements(string(content)) {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to execute migration %s (statement %d): %w", file, i+1, err)
			}
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", file, err)
		}

		slog.Info("migration applied", "component", "database", "file", file)
	}

	return nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// splitStatements, SQL metnini noktalı virgüllerden böler.
// Tek tırnaklı string literal'lerin içindeki ';' ve "--" satır yorumları yoksayılır.
func splitStatements(src string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if !inString && ch == '-' && i+1 < len(src) && src[i+1] == '-' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		if ch == '\'' {
			if inString && i+1 < len(src) && src[i+1] == '\'' {
				current.WriteString("''")
				i++
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}
