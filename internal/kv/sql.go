package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvRow mirrors the hosted platform's kv_store table.
type kvRow struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvRow) TableName() string { return "kv_store" }

// SQLStore keeps records in a single SQL table through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) a SQLite database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serialises writers; one connection also keeps ":memory:" a single database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewSQLStore(db)
}

// NewSQLStore migrates the kv_store table on db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&kvRow{}); err != nil {
		return nil, fmt.Errorf("migrate kv_store: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row kvRow
	err := s.db.WithContext(ctx).Where(keyEq(key)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(row.Value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	row := kvRow{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(keyEq(key)).Delete(&kvRow{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	q := s.db.WithContext(ctx).Model(&kvRow{}).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}})
	if prefix != "" {
		q = q.Where(clause.Gte{Column: clause.Column{Name: "key"}, Value: prefix})
		if upper := prefixUpperBound(prefix); upper != "" {
			q = q.Where(clause.Lt{Column: clause.Column{Name: "key"}, Value: upper})
		}
	}

	var rows []kvRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Key: row.Key, Value: []byte(row.Value)})
	}
	return entries, nil
}

func keyEq(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
