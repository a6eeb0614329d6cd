// Package store implements the global symbol store: a FQN-indexed map of
// every top-level symbol known across open/workspace documents, with a
// secondary per-URI index supporting atomic replace-on-reparse. Mutations
// go through Add/Remove/OnDocumentChange (and SetReferences for the
// reverse reference index in references.go); readers take the current
// map contents under a read lock.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/symbol"
)

// Predicate narrows a Find/Match result, typically by Kind.
type Predicate func(*symbol.Symbol) bool

// Store is the global FQN-keyed symbol index. The zero value is not
// usable; construct with New.
//
// Two buckets hold symbols depending on their kind's case rule:
// foldedByFQN for classes/interfaces/traits/functions/namespaces (keyed
// lowercase), exactByFQN for constants (keyed as declared). A lookup
// checks whichever bucket the symbol's own kind populated, so Find never
// needs the caller to state a kind up front.
type Store struct {
	mu           sync.RWMutex
	foldedByFQN  map[string][]*symbol.Symbol
	exactByFQN   map[string][]*symbol.Symbol
	byURI        map[string][]*symbol.Symbol
	refsByFQN    map[string][]Reference
	refsByURI    map[string][]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		foldedByFQN: make(map[string][]*symbol.Symbol),
		exactByFQN:  make(map[string][]*symbol.Symbol),
		byURI:       make(map[string][]*symbol.Symbol),
		refsByFQN:   make(map[string][]Reference),
		refsByURI:   make(map[string][]string),
	}
}

func trimFQN(fqn string) string {
	return strings.TrimPrefix(fqn, "\\")
}

// Add inserts every top-level symbol from tree into the global index,
// indexed by FQN under its kind's case rule, and registers them under
// tree.URI for later replace-on-reparse. Add fails with
// enginerr.ErrDuplicateDocument if the URI is already indexed; callers
// must Remove first.
func (s *Store) Add(tree *symbol.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(tree)
}

func (s *Store) addLocked(tree *symbol.Tree) error {
	if _, exists := s.byURI[tree.URI]; exists {
		return enginerr.ErrDuplicateDocument
	}
	top := tree.TopLevel()
	s.byURI[tree.URI] = top
	for _, sym := range top {
		s.index(sym)
	}
	return nil
}

func (s *Store) index(sym *symbol.Symbol) {
	name := trimFQN(sym.Name)
	if sym.Kind.CaseInsensitive() {
		key := strings.ToLower(name)
		s.foldedByFQN[key] = append(s.foldedByFQN[key], sym)
		return
	}
	s.exactByFQN[name] = append(s.exactByFQN[name], sym)
}

// Remove drops every symbol (and every reference) registered under uri.
func (s *Store) Remove(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(uri)
}

func (s *Store) removeLocked(uri string) {
	top, ok := s.byURI[uri]
	if ok {
		for _, sym := range top {
			s.unindex(sym)
		}
		delete(s.byURI, uri)
	}
	for _, key := range s.refsByURI[uri] {
		s.refsByFQN[key] = filterRefsByURI(s.refsByFQN[key], uri)
		if len(s.refsByFQN[key]) == 0 {
			delete(s.refsByFQN, key)
		}
	}
	delete(s.refsByURI, uri)
}

func (s *Store) unindex(sym *symbol.Symbol) {
	name := trimFQN(sym.Name)
	if sym.Kind.CaseInsensitive() {
		key := strings.ToLower(name)
		s.foldedByFQN[key] = removeSymbol(s.foldedByFQN[key], sym)
		if len(s.foldedByFQN[key]) == 0 {
			delete(s.foldedByFQN, key)
		}
		return
	}
	s.exactByFQN[name] = removeSymbol(s.exactByFQN[name], sym)
	if len(s.exactByFQN[name]) == 0 {
		delete(s.exactByFQN, name)
	}
}

func removeSymbol(list []*symbol.Symbol, target *symbol.Symbol) []*symbol.Symbol {
	out := make([]*symbol.Symbol, 0, len(list))
	for _, sym := range list {
		if sym != target {
			out = append(out, sym)
		}
	}
	return out
}

func filterRefsByURI(list []Reference, uri string) []Reference {
	out := make([]Reference, 0, len(list))
	for _, r := range list {
		if r.URI != uri {
			out = append(out, r)
		}
	}
	return out
}

// OnDocumentChange atomically replaces uri's contribution to the store:
// Remove(uri) followed by Add(table). Holding the single write lock for
// both halves is what makes the replace atomic to concurrent readers.
func (s *Store) OnDocumentChange(uri string, table *symbol.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(uri)
	return s.addLocked(table)
}

// Find returns every symbol whose FQN matches fqn, applying each kind's
// own case rule, optionally narrowed by predicate (e.g. by Kind).
func (s *Store) Find(fqn string, predicate Predicate) []*symbol.Symbol {
	trimmed := trimFQN(fqn)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*symbol.Symbol
	out = append(out, filterSymbols(s.exactByFQN[trimmed], predicate)...)
	out = append(out, filterSymbols(s.foldedByFQN[strings.ToLower(trimmed)], predicate)...)
	return out
}

func filterSymbols(list []*symbol.Symbol, predicate Predicate) []*symbol.Symbol {
	if predicate == nil {
		return append([]*symbol.Symbol(nil), list...)
	}
	var out []*symbol.Symbol
	for _, sym := range list {
		if predicate(sym) {
			out = append(out, sym)
		}
	}
	return out
}

// Match returns every symbol whose FQN begins with prefix: exact-case for
// case-sensitive kinds (constants), folded for everything else. Suitable
// for completion/workspace-symbol search. Results are sorted stably by
// name.
func (s *Store) Match(prefix string, predicate Predicate) []*symbol.Symbol {
	trimmed := trimFQN(prefix)
	foldedPrefix := strings.ToLower(trimmed)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*symbol.Symbol
	for key, list := range s.exactByFQN {
		if strings.HasPrefix(key, trimmed) {
			out = append(out, filterSymbols(list, predicate)...)
		}
	}
	for key, list := range s.foldedByFQN {
		if strings.HasPrefix(key, foldedPrefix) {
			out = append(out, filterSymbols(list, predicate)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DocumentSymbols returns the top-level symbols owned by uri, or nil if
// uri isn't indexed.
func (s *Store) DocumentSymbols(uri string) []*symbol.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*symbol.Symbol(nil), s.byURI[uri]...)
}

// Contains reports whether uri currently has symbols registered.
func (s *Store) Contains(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byURI[uri]
	return ok
}
