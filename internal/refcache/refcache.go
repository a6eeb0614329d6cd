package refcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/symbol"
)

// Cache is a gorm-backed sqlite handle over the symbols table. The zero
// value is not usable; construct with Open.
type Cache struct {
	db *gorm.DB
}

// Open connects to (creating if absent) the sqlite database at path and
// runs its migration: ensure the parent directory exists, open with
// glebarez's pure-Go driver (no cgo), auto-migrate the one table this
// package owns.
func Open(path string) (*Cache, error) {
	if path == "" {
		return nil, enginerr.ErrInvalidArgument
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("refcache: create cache directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("refcache: connect: %w", err)
	}
	if err := db.AutoMigrate(&SymbolRecord{}); err != nil {
		return nil, fmt.Errorf("refcache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PutDocument replaces every record previously stored for uri with the
// top-level symbols in syms, mirroring the in-memory store's
// replace-on-reparse discipline so the cache never drifts out of sync
// with a document's latest parse.
func (c *Cache) PutDocument(uri string, syms []*symbol.Symbol) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uri = ?", uri).Delete(&SymbolRecord{}).Error; err != nil {
			return err
		}
		if len(syms) == 0 {
			return nil
		}
		records := make([]SymbolRecord, 0, len(syms))
		for _, s := range syms {
			associated, err := json.Marshal(s.Associated)
			if err != nil {
				return err
			}
			records = append(records, SymbolRecord{
				FQN:        s.Name,
				URI:        uri,
				Kind:       string(s.Kind),
				StartLine:  s.Location.StartLine,
				EndLine:    s.Location.EndLine,
				Associated: datatypes.JSON(associated),
			})
		}
		return tx.Create(&records).Error
	})
}

// RemoveDocument drops every cached record for uri.
func (c *Cache) RemoveDocument(uri string) error {
	return c.db.Where("uri = ?", uri).Delete(&SymbolRecord{}).Error
}

// Lookup returns every cached record whose FQN matches fqn exactly (the
// cache stores FQNs case-preserved; callers wanting folded matching should
// pre-normalize, matching the in-memory store's own two-bucket split).
func (c *Cache) Lookup(fqn string) ([]SymbolRecord, error) {
	var out []SymbolRecord
	if err := c.db.Where("fqn = ?", fqn).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("refcache: lookup: %w", err)
	}
	return out, nil
}

// All returns every cached record, for cold-start rehydration into the
// in-memory store before the workspace's real files finish reparsing.
func (c *Cache) All() ([]SymbolRecord, error) {
	var out []SymbolRecord
	if err := c.db.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("refcache: scan: %w", err)
	}
	return out, nil
}

// AssociatedFQNs unmarshals a record's serialized Associated column.
func (r SymbolRecord) AssociatedFQNs() []string {
	if len(r.Associated) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(r.Associated, &out); err != nil {
		return nil
	}
	return out
}
