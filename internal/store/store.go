// Package store provides SQLite persistence for conversations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/palette/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a conversation id does not exist.
var ErrNotFound = errors.New("conversation not found")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex // Protects all database operations
	limit int
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLimit caps how many conversations Conversations returns. Zero means no cap.
func WithLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates a new Store with the given database path and applies
// pending migrations.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string, opts ...Option) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate applies the embedded migrations. The migrate instance is not
// closed because closing it would close s.db as well.
func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer src.Close()

	driver, err := sqlitemigrate.WithInstance(s.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Conversations lists conversations, most recently updated first.
// It satisfies catalog.ConversationSource.
// Thread-safe: acquires read lock.
func (s *Store) Conversations(ctx context.Context) ([]catalog.Conversation, error) {
	return s.ListConversations(ctx, s.limit)
}

// ListConversations lists up to limit conversations, most recently updated
// first. A limit of zero or less returns all of them.
// Thread-safe: acquires read lock.
func (s *Store) ListConversations(ctx context.Context, limit int) ([]catalog.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, slug, cwd, updated_at
		FROM conversations
		ORDER BY updated_at DESC, id ASC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []catalog.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// GetConversation returns a single conversation or ErrNotFound.
// Thread-safe: acquires read lock.
func (s *Store) GetConversation(ctx context.Context, id string) (catalog.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, slug, cwd, updated_at FROM conversations WHERE id = ?", id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Conversation{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return catalog.Conversation{}, fmt.Errorf("get %s: %w", id, err)
	}
	return c, nil
}

// CreateConversation inserts a conversation with a fresh id.
// Thread-safe: acquires write lock.
func (s *Store) CreateConversation(ctx context.Context, slug, cwd string) (catalog.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := catalog.Conversation{
		ID:        uuid.NewString(),
		Slug:      strings.TrimSpace(slug),
		Cwd:       strings.TrimSpace(cwd),
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, slug, cwd, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Slug, c.Cwd, now.UnixNano(), now.UnixNano())
	if err != nil {
		return catalog.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// ImportConversations stores conversations, returning how many were new.
// Existing ids are left untouched via INSERT OR IGNORE. Entries without an
// id get a generated one.
// Thread-safe: acquires write lock.
func (s *Store) ImportConversations(ctx context.Context, convs []catalog.Conversation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(convs) == 0 {
		return 0, nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR IGNORE INTO conversations (id, slug, cwd, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	now := s.now()
	newCount := 0
	for _, c := range convs {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		updated := c.UpdatedAt
		if updated.IsZero() {
			updated = now
		}

		result, err := stmt.ExecContext(ctx, id, c.Slug, c.Cwd, now.UnixNano(), updated.UnixNano())
		if err != nil {
			return newCount, fmt.Errorf("import %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return newCount, err
		}
		if affected > 0 {
			newCount++
		}
	}
	return newCount, nil
}

// TouchConversation bumps a conversation to the top of the recency order.
// Thread-safe: acquires write lock.
func (s *Store) TouchConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("touch %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("touch %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (catalog.Conversation, error) {
	var c catalog.Conversation
	var updated int64
	if err := row.Scan(&c.ID, &c.Slug, &c.Cwd, &updated); err != nil {
		return catalog.Conversation{}, err
	}
	c.UpdatedAt = time.Unix(0, updated)
	return c, nil
}
