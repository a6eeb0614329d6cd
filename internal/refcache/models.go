// Package refcache is an optional on-disk cache of resolved FQN to
// location pairs. It never backs the in-memory symbol store
// (internal/store) directly: the store is always the source of truth
// while a document is open. It only gives a host a way to rehydrate a
// cold start faster than a full workspace reparse.
package refcache

import (
	"time"

	"gorm.io/datatypes"
)

// SymbolRecord is one persisted top-level symbol, enough to answer
// workspaceSymbols and resolveType's class-lookup path without a parse.
type SymbolRecord struct {
	FQN        string `gorm:"primaryKey;type:varchar(512)"`
	URI        string `gorm:"primaryKey;type:varchar(1024);index"`
	Kind       string `gorm:"type:varchar(32)"`
	StartLine  int
	EndLine    int
	Associated datatypes.JSON // serialized []string of extends/implements/uses FQNs
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

// TableName uses the lowercase-plural convention (SymbolRecord -> "symbols").
func (SymbolRecord) TableName() string { return "symbols" }
