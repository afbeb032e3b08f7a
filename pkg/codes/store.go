package codes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store serves HCPCS code lookups from a SQLite database seeded with
// the CGM code table.
//
// Store uses a write-ahead log (WAL) for better concurrent performance
// and automatic checkpointing to balance write performance with
// durability.
type Store struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	// preparedStatements contains pre-compiled SQL statements for performance
	upsertStmt *sql.Stmt
	lookupStmt *sql.Stmt
	byLCDStmt  *sql.Stmt
	searchStmt *sql.Stmt
}

// StoreConfig configures the code store.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewStore opens a code store at the given path with default settings.
func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithConfig(StoreConfig{
		DBPath:             dbPath,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewStoreWithConfig opens a code store with custom configuration.
func NewStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS billing_codes (
		code TEXT PRIMARY KEY,
		short TEXT NOT NULL,
		long TEXT NOT NULL,
		category TEXT NOT NULL,
		pricing TEXT NOT NULL,
		modifiers TEXT,
		requires_kx INTEGER NOT NULL DEFAULT 0,
		exclusive_with TEXT,
		lcd TEXT,
		notes TEXT,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_billing_codes_lcd ON billing_codes(lcd);
	CREATE INDEX IF NOT EXISTS idx_billing_codes_category ON billing_codes(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *Store) prepareStatements() error {
	var err error

	s.upsertStmt, err = s.db.Prepare(`
		INSERT INTO billing_codes (code, short, long, category, pricing, modifiers, requires_kx, exclusive_with, lcd, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			short = excluded.short,
			long = excluded.long,
			category = excluded.category,
			pricing = excluded.pricing,
			modifiers = excluded.modifiers,
			requires_kx = excluded.requires_kx,
			exclusive_with = excluded.exclusive_with,
			lcd = excluded.lcd,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	s.lookupStmt, err = s.db.Prepare(`
		SELECT code, short, long, category, pricing, modifiers, requires_kx, exclusive_with, lcd, notes
		FROM billing_codes
		WHERE code = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lookup statement: %w", err)
	}

	s.byLCDStmt, err = s.db.Prepare(`
		SELECT code, short, long, category, pricing, modifiers, requires_kx, exclusive_with, lcd, notes
		FROM billing_codes
		WHERE lcd = ?
		ORDER BY code
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lcd statement: %w", err)
	}

	s.searchStmt, err = s.db.Prepare(`
		SELECT code, short, long, category, pricing, modifiers, requires_kx, exclusive_with, lcd, notes
		FROM billing_codes
		WHERE code LIKE ? OR short LIKE ? OR long LIKE ?
		ORDER BY code
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare search statement: %w", err)
	}

	return nil
}

// Seed upserts the given entries into the store. Existing rows with
// matching codes are overwritten.
func (s *Store) Seed(ctx context.Context, entries []CodeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	for i := range entries {
		entry := &entries[i]
		if entry.Code == "" {
			return fmt.Errorf("code cannot be empty")
		}

		modifiersJSON, err := json.Marshal(entry.Modifiers)
		if err != nil {
			return fmt.Errorf("failed to marshal modifiers for %s: %w", entry.Code, err)
		}
		exclusiveJSON, err := json.Marshal(entry.ExclusiveWith)
		if err != nil {
			return fmt.Errorf("failed to marshal exclusions for %s: %w", entry.Code, err)
		}

		requiresKX := 0
		if entry.RequiresKX {
			requiresKX = 1
		}

		_, err = s.upsertStmt.ExecContext(ctx,
			entry.Code,
			entry.Short,
			entry.Long,
			entry.Category,
			entry.Pricing,
			string(modifiersJSON),
			requiresKX,
			string(exclusiveJSON),
			entry.LCD,
			entry.Notes,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", entry.Code, err)
		}
	}

	return nil
}

// Lookup returns the entry for a code, or nil if the code is unknown.
// The code is normalized to uppercase before the lookup.
func (s *Store) Lookup(ctx context.Context, code string) (*CodeEntry, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := scanEntry(s.lookupStmt.QueryRowContext(ctx, code).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	return entry, nil
}

// ByLCD returns all entries governed by the given local coverage
// determination, sorted by code.
func (s *Store) ByLCD(ctx context.Context, lcd string) ([]*CodeEntry, error) {
	if lcd == "" {
		return nil, fmt.Errorf("lcd cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.byLCDStmt.QueryContext(ctx, lcd)
	if err != nil {
		return nil, fmt.Errorf("failed to query by lcd: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Search returns entries whose code or descriptions match the query,
// sorted by code. The limit defaults to 20 when non-positive.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*CodeEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + query + "%"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.searchStmt.QueryContext(ctx, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search codes: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.upsertStmt != nil {
			s.upsertStmt.Close()
		}
		if s.lookupStmt != nil {
			s.lookupStmt.Close()
		}
		if s.byLCDStmt != nil {
			s.byLCDStmt.Close()
		}
		if s.searchStmt != nil {
			s.searchStmt.Close()
		}

		if s.db != nil {
			// Run final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *Store) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

func scanEntry(scan func(...any) error) (*CodeEntry, error) {
	var (
		entry         CodeEntry
		modifiersJSON string
		exclusiveJSON string
		requiresKX    int
	)

	err := scan(
		&entry.Code,
		&entry.Short,
		&entry.Long,
		&entry.Category,
		&entry.Pricing,
		&modifiersJSON,
		&requiresKX,
		&exclusiveJSON,
		&entry.LCD,
		&entry.Notes,
	)
	if err != nil {
		return nil, err
	}

	entry.RequiresKX = requiresKX != 0
	if modifiersJSON != "" {
		if err := json.Unmarshal([]byte(modifiersJSON), &entry.Modifiers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal modifiers: %w", err)
		}
	}
	if exclusiveJSON != "" {
		if err := json.Unmarshal([]byte(exclusiveJSON), &entry.ExclusiveWith); err != nil {
			return nil, fmt.Errorf("failed to unmarshal exclusions: %w", err)
		}
	}

	return &entry, nil
}

func collectEntries(rows *sql.Rows) ([]*CodeEntry, error) {
	var entries []*CodeEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}
