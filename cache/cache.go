// Package cache persists a durable record of which (module, function,
// argument-signature) specializations have already been proven to
// type-check, so a re-analysis of an unchanged module can skip
// re-deriving them (§4.5 "Specialization synthesis", §9 "Caching the
// binding graph"). It is optional infrastructure around the engine: the
// engine itself stays a pure in-memory analyzer (§5), and a cache miss
// or a missing cache is never an analysis error, only a missed
// shortcut.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Specialization is one cached specialization: module m's function fn, called
// with an argument-type signature already rendered to its canonical
// string form (§4.5's specialization key), resolved to resultType.
type Specialization struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Module     string    `gorm:"type:varchar(255);index:idx_lookup"`
	Function   string    `gorm:"type:varchar(255);index:idx_lookup"`
	Signature  string    `gorm:"type:text;index:idx_lookup"`
	ResultType string    `gorm:"type:text"`
	CachedAt   time.Time `gorm:"autoCreateTime"`
}

func (Specialization) TableName() string { return "specialization_cache" }

// Store is a specialization cache backed by SQLite through gorm, the
// same pairing the teacher uses for its stage/apply ledger.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn (a file path, or ":memory:") and migrates the
// cache schema. debug enables gorm's query logger.
func Open(dsn string, debug bool) (*Store, error) {
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: failed to create directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to connect: %w", err)
	}
	if err := db.AutoMigrate(&Specialization{}); err != nil {
		return nil, fmt.Errorf("cache: migration failed: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Lookup reports the result type already proven for module/function
// called with signature, if one was previously recorded.
func (s *Store) Lookup(module, function, signature string) (resultType string, ok bool, err error) {
	var rec Specialization
	tx := s.db.Where("module = ? AND function = ? AND signature = ?", module, function, signature).First(&rec)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, tx.Error
	}
	return rec.ResultType, true, nil
}

// Record stores that module/function called with signature resolves to
// resultType, replacing any prior entry for the same key.
func (s *Store) Record(module, function, signature, resultType string) error {
	if err := s.db.Where("module = ? AND function = ? AND signature = ?", module, function, signature).
		Delete(&Specialization{}).Error; err != nil {
		return err
	}
	rec := &Specialization{
		ID:         uuid.NewString(),
		Module:     module,
		Function:   function,
		Signature:  signature,
		ResultType: resultType,
	}
	return s.db.Create(rec).Error
}
