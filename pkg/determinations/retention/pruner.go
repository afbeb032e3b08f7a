package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"backwork/atlas/pkg/determinations"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain determinations.
	// 0 means keep determinations forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving determinations before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived determinations.
	ArchivePath string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       365,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
		MaxRecords:          0,
	}
}

// Pruner enforces retention policies on stored determinations.
type Pruner struct {
	storage   determinations.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage determinations.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "determinations.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes determinations older than the retention period or
// exceeding the max record count. Both phases can run together.
// Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted > 0 {
		p.logger.Info("determination pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	query := &determinations.Query{
		EndTime: &cutoff,
	}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, query); err != nil {
			return 0, &determinations.RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, &determinations.RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
	}

	return deleted, nil
}

// pruneByCount deletes oldest records if total count exceeds MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &determinations.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if count <= p.config.MaxRecords {
		return 0, nil
	}

	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
	)

	// Query oldest records beyond the cap. The limit guards against the
	// count changing between the Count and the Query.
	toDelete := count - p.config.MaxRecords
	oldest, err := p.storage.Query(ctx, &determinations.Query{
		SortOrder: "asc",
		Limit:     int(toDelete),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}

	if len(oldest) == 0 {
		return 0, nil
	}

	sort.Slice(oldest, func(i, j int) bool {
		return oldest[i].RecordedAt.Before(oldest[j].RecordedAt)
	})
	cutoffTime := oldest[len(oldest)-1].RecordedAt

	deleteQuery := &determinations.Query{
		EndTime: &cutoffTime,
	}

	if p.config.ArchiveBeforeDelete {
		if err := p.archiveRecords(oldest); err != nil {
			return 0, fmt.Errorf("archive failed: %w", err)
		}
	}

	deleted, err := p.storage.Delete(ctx, deleteQuery)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// archive exports the records matching the query to a JSON archive file
// before deletion.
func (p *Pruner) archive(ctx context.Context, query *determinations.Query) error {
	records, err := p.storage.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query records for archiving: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	return p.archiveRecords(records)
}

// archiveRecords writes records to a timestamped JSON archive file.
func (p *Pruner) archiveRecords(records []*determinations.StoredDetermination) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("determinations-%s.json", time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	p.logger.Info("determinations archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
