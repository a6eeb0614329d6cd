// Package docstore holds the engine's open documents and debounces their
// edits before handing the settled text to a reparse callback: edits land
// immediately in the document's buffer, but the symbol store only sees a
// reparse after a quiet window. The debounce timer is the one source of
// reentrancy in an otherwise single-threaded cooperative core;
// internal/engine is the only caller expected to mutate a *Store
// concurrently with traversal, so every method here takes its own lock
// rather than relying on a caller's discipline.
package docstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oxhq/phpls/internal/enginerr"
)

// Edit is one LSP-style ranged text patch: the bytes in [StartByte,EndByte)
// are replaced by NewText. A zero-width range (StartByte == EndByte) is a
// pure insertion; NewText == "" with a non-zero range is a pure deletion.
type Edit struct {
	StartByte, EndByte uint32
	NewText            string
}

// ReparseFunc is invoked once a document's edits have settled: the
// document store's own debounce discipline, not the caller's. uri and text
// are the full settled buffer; version distinguishes stale callbacks from
// a reparse scheduled against an edit that has since been superseded.
type ReparseFunc func(uri string, text []byte, version int)

// Document is one open buffer plus its pending-reparse state.
type Document struct {
	URI       string
	SessionID string
	Text      []byte
	Version   int

	mu    sync.Mutex
	timer *time.Timer
}

// Store holds every currently open document, debouncing reparse through a
// single ReparseFunc supplied at construction.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]*Document
	debounce time.Duration
	reparse  ReparseFunc
}

// New returns an empty Store. debounce is the quiet window ApplyEdit waits
// before calling reparse (default 250ms, configured via internal/config's
// PHPLS_DEBOUNCE_MS). reparse may be nil for tests that only exercise
// buffer bookkeeping.
func New(debounce time.Duration, reparse ReparseFunc) *Store {
	return &Store{
		docs:     make(map[string]*Document),
		debounce: debounce,
		reparse:  reparse,
	}
}

// Open registers uri with initial contents text, replacing any prior
// document at the same URI. Open does not schedule a reparse: a caller
// that wants the document parsed calls Flush or parses it itself
// (internal/engine's OpenDocument parses synchronously).
func (s *Store) Open(uri string, text []byte) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{URI: uri, SessionID: uuid.NewString(), Text: append([]byte(nil), text...)}
	s.docs[uri] = doc
	return doc
}

// Close drops uri's buffer and cancels any pending debounce timer. It does
// not touch the symbol store: callers that want the store's contribution
// removed too should call store.Store.Remove themselves (internal/engine
// does both together).
func (s *Store) Close(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return enginerr.ErrDocumentNotOpen
	}
	doc.mu.Lock()
	if doc.timer != nil {
		doc.timer.Stop()
	}
	doc.mu.Unlock()
	delete(s.docs, uri)
	return nil
}

// Get returns uri's document, or nil if it isn't open.
func (s *Store) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// ApplyEdit patches uri's buffer in place and (re)starts its debounce
// timer. Multiple edits arriving inside the debounce window collapse into
// one reparse.
func (s *Store) ApplyEdit(uri string, edit Edit) error {
	s.mu.RLock()
	doc := s.docs[uri]
	s.mu.RUnlock()
	if doc == nil {
		return enginerr.ErrDocumentNotOpen
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if edit.EndByte > uint32(len(doc.Text)) || edit.StartByte > edit.EndByte {
		return enginerr.ErrInvalidArgument
	}
	patched := make([]byte, 0, len(doc.Text)-int(edit.EndByte-edit.StartByte)+len(edit.NewText))
	patched = append(patched, doc.Text[:edit.StartByte]...)
	patched = append(patched, edit.NewText...)
	patched = append(patched, doc.Text[edit.EndByte:]...)
	doc.Text = patched
	doc.Version++

	s.scheduleLocked(doc)
	return nil
}

// scheduleLocked (re)arms doc's debounce timer. Callers must hold doc.mu.
func (s *Store) scheduleLocked(doc *Document) {
	if s.reparse == nil {
		return
	}
	if doc.timer != nil {
		doc.timer.Stop()
	}
	uri, version := doc.URI, doc.Version
	doc.timer = time.AfterFunc(s.debounce, func() {
		doc.mu.Lock()
		text := append([]byte(nil), doc.Text...)
		current := doc.Version
		doc.mu.Unlock()
		if current != version {
			return // superseded by a later edit before the timer fired
		}
		s.reparse(uri, text, version)
	})
}

// Flush cancels uri's pending debounce timer, if any, and reparses
// immediately and synchronously, for callers that need a guaranteed
// up-to-date store before reading it (internal/engine's Flush).
func (s *Store) Flush(uri string) error {
	s.mu.RLock()
	doc := s.docs[uri]
	s.mu.RUnlock()
	if doc == nil {
		return enginerr.ErrDocumentNotOpen
	}

	doc.mu.Lock()
	if doc.timer != nil {
		doc.timer.Stop()
		doc.timer = nil
	}
	text := append([]byte(nil), doc.Text...)
	version := doc.Version
	doc.mu.Unlock()

	if s.reparse != nil {
		s.reparse(doc.URI, text, version)
	}
	return nil
}

// URIs returns every currently open document URI, unordered.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	return out
}
