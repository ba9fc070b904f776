package services

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cameronthecoder/django-ban/database"
	"github.com/cameronthecoder/django-ban/models"
	"github.com/cameronthecoder/django-ban/repository"
	"github.com/cameronthecoder/django-ban/ws"
)

// recordingPublisher, yayınlanan event'leri saklayan sahte ws.EventPublisher.
type recordingPublisher struct {
	mu           sync.Mutex
	admin        []ws.Event
	user         map[string][]ws.Event
	disconnected []string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{user: make(map[string][]ws.Event)}
}

func (p *recordingPublisher) BroadcastToAdmins(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admin = append(p.admin, event)
}

func (p *recordingPublisher) BroadcastToUser(userID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user[userID] = append(p.user[userID], event)
}

func (p *recordingPublisher) DisconnectUser(userID, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = append(p.disconnected, userID)
}

func (p *recordingPublisher) adminOps() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, 0, len(p.admin))
	for _, e := range p.admin {
		ops = append(ops, e.Op)
	}
	return ops
}

func (p *recordingPublisher) disconnectedUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.disconnected...)
}

// testClock, testlerde ilerletilebilen saat.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *sql.DB
	users    repository.UserRepository
	sessions repository.SessionRepository
	bans     repository.BanRepository
	warns    repository.WarnRepository
	hub      *recordingPublisher
	clock    *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:       db.Conn,
		users:    repository.NewSQLiteUserRepo(db.Conn),
		sessions: repository.NewSQLiteSessionRepo(db.Conn),
		bans:     repository.NewSQLiteBanRepo(db.Conn),
		warns:    repository.NewSQLiteWarnRepo(db.Conn),
		hub:      newRecordingPublisher(),
		clock:    newTestClock(),
	}
}

func (e *testEnv) moderation(threshold int, cacheTTL time.Duration) ModerationService {
	return NewModerationService(ModerationDeps{
		DB:             e.db,
		BanRepo:        e.bans,
		WarnRepo:       e.warns,
		UserRepo:       e.users,
		SessionRepo:    e.sessions,
		Hub:            e.hub,
		WarnsThreshold: threshold,
		BanCacheTTL:    cacheTTL,
		Now:            e.clock.Now,
	})
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	u := &models.User{Username: username, PasswordHash: "hash", Language: "en"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// countRows, tabloda receiver'a ait satır sayısı.
func (e *testEnv) countRows(t *testing.T, table, receiverID string) int {
	t.Helper()

	var n int
	err := e.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE receiver_id = ?`, receiverID).Scan(&n)
	require.NoError(t, err)
	return n
}

func (e *testEnv) countActiveBans(t *testing.T, receiverID string) int {
	t.Helper()

	var n int
	err := e.db.QueryRow(
		`SELECT COUNT(*) FROM bans WHERE receiver_id = ? AND (end_date IS NULL OR end_date > ?)`,
		receiverID, database.FormatTime(e.clock.Now()),
	).Scan(&n)
	require.NoError(t, err)
	return n
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
