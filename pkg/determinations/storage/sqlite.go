package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"backwork/atlas/pkg/determinations"
	"backwork/atlas/pkg/eligibility"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/determinations.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "determinations.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, determinations.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return determinations.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return determinations.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return determinations.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return determinations.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return determinations.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return determinations.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a determination record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *determinations.StoredDetermination) error {
	payload, err := json.Marshal(record.Determination)
	if err != nil {
		return determinations.NewStorageError("sqlite", "marshal", err)
	}

	query := `
		INSERT INTO determinations (
			id, subject_id,
			policy_id, policy_version, overall_status, met_count, total_count, as_of,
			recorded_at,
			determination
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	det := record.Determination
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.SubjectID,
		det.PolicyID, det.PolicyVersion, string(det.OverallStatus), det.MetCount, det.TotalCount, det.AsOf,
		record.RecordedAt,
		string(payload),
	)
	if err != nil {
		return determinations.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Get retrieves a single determination by id.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*determinations.StoredDetermination, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, subject_id, recorded_at, determination FROM determinations WHERE id = ?", id)

	record, err := scanStored(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, determinations.NewStorageError("sqlite", "get", err)
	}

	return record, nil
}

// Query retrieves determinations matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *determinations.Query) ([]*determinations.StoredDetermination, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT id, subject_id, recorded_at, determination FROM determinations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortOrder := "DESC"
	if query.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	sqlQuery += " ORDER BY recorded_at " + sortOrder

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, determinations.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*determinations.StoredDetermination{}
	for rows.Next() {
		record, err := scanStored(rows.Scan)
		if err != nil {
			return nil, determinations.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, determinations.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of determinations matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *determinations.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM determinations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, determinations.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes determinations matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *determinations.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM determinations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, determinations.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, determinations.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return determinations.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *determinations.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}

	if query.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, query.SubjectID)
	}
	if query.PolicyID != "" {
		conditions = append(conditions, "policy_id = ?")
		args = append(args, query.PolicyID)
	}
	if query.OverallStatus != "" {
		conditions = append(conditions, "overall_status = ?")
		args = append(args, query.OverallStatus)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanStored scans the shared column set into a stored determination
// and unmarshals the payload.
func scanStored(scan func(dest ...interface{}) error) (*determinations.StoredDetermination, error) {
	var record determinations.StoredDetermination
	var payload string

	if err := scan(&record.ID, &record.SubjectID, &record.RecordedAt, &payload); err != nil {
		return nil, err
	}

	var det eligibility.Determination
	if err := json.Unmarshal([]byte(payload), &det); err != nil {
		return nil, err
	}
	record.Determination = &det

	return &record, nil
}
