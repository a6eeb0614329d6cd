package store

import (
	"strings"

	"github.com/oxhq/phpls/internal/symbol"
)

// Reference is one position where the type resolver (internal/typeresolve)
// bound fqn as the static type of an expression, part of the
// find-references index. It is populated incrementally by the engine
// alongside each OnDocumentChange, not by a full-workspace scan.
type Reference struct {
	URI      string
	Location symbol.Location
}

// SetReferences atomically replaces every reference previously recorded
// under uri with refs, keyed by the FQNs in the map. This mirrors the
// symbol replace-on-reparse discipline in OnDocumentChange: a document's
// references are always either fully present or fully absent.
func (s *Store) SetReferences(uri string, refs map[string][]symbol.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.refsByURI[uri] {
		s.refsByFQN[key] = filterRefsByURI(s.refsByFQN[key], uri)
		if len(s.refsByFQN[key]) == 0 {
			delete(s.refsByFQN, key)
		}
	}

	var keys []string
	for fqn, locs := range refs {
		key := strings.ToLower(trimFQN(fqn))
		for _, loc := range locs {
			s.refsByFQN[key] = append(s.refsByFQN[key], Reference{URI: uri, Location: loc})
		}
		keys = append(keys, key)
	}
	s.refsByURI[uri] = keys
}

// References returns every recorded reference location for fqn.
func (s *Store) References(fqn string) []Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := strings.ToLower(trimFQN(fqn))
	return append([]Reference(nil), s.refsByFQN[key]...)
}
