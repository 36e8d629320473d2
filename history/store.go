// Package history persists search outcomes to a local SQLite database
// so past finds can be revisited without re-scanning the map.
package history

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// histLog derives the package sublogger at call time so it follows the
// writer installed during startup.
func histLog() *zerolog.Logger {
	l := log.With().Str("module", "history").Logger()
	return &l
}

// Record is one completed search attempt.
type Record struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Template   string `gorm:"index"`
	Found      bool
	Kingdom    int
	GameX      float64
	GameY      float64
	ScreenX    int
	ScreenY    int
	Confidence float64
	Snapshot   string
	DurationMs int64
	Visited    int
}

// Store wraps the SQLite connection behind the few queries the agent
// actually runs.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the history database at path and migrates the
// schema. An empty path uses a shared in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history db: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("error migrating history schema: %w", err)
	}
	histLog().Info().Str("path", dsn).Msg("history store ready")
	return &Store{db: db}, nil
}

// Append writes one record.
func (s *Store) Append(rec *Record) error {
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("error appending history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	var recs []Record
	err := s.db.Order("created_at desc, id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	return recs, nil
}

// RecentByTemplate returns up to limit records for one template name,
// newest first.
func (s *Store) RecentByTemplate(template string, limit int) ([]Record, error) {
	var recs []Record
	err := s.db.Where("template = ?", template).
		Order("created_at desc, id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	return recs, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
