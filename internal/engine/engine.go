// Package engine is the façade value wiring the symbol store, document
// store, type resolver, and optional reference cache together behind one
// external interface. It is the one place allowed to know about every
// other package in this module; everything underneath stays decoupled.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oxhq/phpls/internal/aggregate"
	"github.com/oxhq/phpls/internal/config"
	"github.com/oxhq/phpls/internal/docstore"
	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/reader"
	"github.com/oxhq/phpls/internal/refcache"
	"github.com/oxhq/phpls/internal/store"
	"github.com/oxhq/phpls/internal/symbol"
	"github.com/oxhq/phpls/internal/typeresolve"
	"github.com/oxhq/phpls/internal/workspace"
)

// parsedDoc is the per-URI state a successful reparse leaves behind: the
// parse tree ResolveAt/SignatureAt walk, and the import table they need
// alongside it.
type parsedDoc struct {
	tree    *phptree.Tree
	imports *symbol.ImportTable
}

// Engine is the single entry point a host (CLI or editor integration)
// drives. The zero value is not usable; construct with New.
type Engine struct {
	cfg   *config.Config
	store *store.Store
	docs  *docstore.Store
	cache *refcache.Cache

	mu    sync.RWMutex
	trees map[string]parsedDoc // reparse runs on the debounce timer's own goroutine
}

// New builds an Engine from cfg. If cfg.CachePath is non-empty the
// reference cache opens eagerly; a cache failure is returned rather than
// silently disabling the cache, since the host configured it explicitly.
func New(cfg *config.Config) (*Engine, error) {
	e := &Engine{
		cfg:   cfg,
		store: store.New(),
		trees: make(map[string]parsedDoc),
	}
	e.docs = docstore.New(time.Duration(cfg.DebounceMS)*time.Millisecond, e.reparse)

	if cfg.CachePath != "" {
		cache, err := refcache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("engine: opening reference cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Close releases the engine's reference cache, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

// OpenDocument registers uri with text and parses it synchronously. The
// first parse always runs inline so the store reflects the document the
// instant a caller gets its count.
func (e *Engine) OpenDocument(ctx context.Context, uri string, text []byte) (int, error) {
	e.docs.Open(uri, text)
	return e.reparseNow(ctx, uri, text)
}

// CloseDocument drops uri from both the document store and the symbol
// store.
func (e *Engine) CloseDocument(uri string) error {
	if err := e.docs.Close(uri); err != nil {
		return err
	}
	e.store.Remove(uri)
	e.mu.Lock()
	delete(e.trees, uri)
	e.mu.Unlock()
	if e.cache != nil {
		_ = e.cache.RemoveDocument(uri)
	}
	return nil
}

// EditDocument applies changes to uri's buffer and lets the document
// store's debounce discipline decide when to reparse.
func (e *Engine) EditDocument(uri string, changes []docstore.Edit) error {
	for _, c := range changes {
		if err := e.docs.ApplyEdit(uri, c); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces uri's pending debounce to fire immediately, guaranteeing
// the store reflects its latest edits before a caller reads from it.
func (e *Engine) Flush(uri string) error {
	return e.docs.Flush(uri)
}

// reparse is the docstore.ReparseFunc wired in New; it's invoked from the
// debounce timer's own goroutine. It updates the symbol store
// (OnDocumentChange, SetReferences, both under the store's own lock),
// e.trees under e.mu, and the optional reference cache.
func (e *Engine) reparse(uri string, text []byte, _ int) {
	_, _ = e.reparseNow(context.Background(), uri, text)
}

func (e *Engine) reparseNow(ctx context.Context, uri string, text []byte) (int, error) {
	tree, err := phptree.Parse(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", enginerr.ErrParseFailed, err)
	}

	symTree := reader.New(uri, text).Read(tree.Root())
	if err := e.store.OnDocumentChange(uri, symTree); err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.trees[uri] = parsedDoc{tree: tree, imports: symTree.Imports}
	e.mu.Unlock()

	e.indexReferences(ctx, uri, tree, symTree)

	if e.cache != nil {
		_ = e.cache.PutDocument(uri, symTree.TopLevel())
	}
	return len(symTree.TopLevel()), nil
}

func (e *Engine) parsedDocOf(uri string) (parsedDoc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.trees[uri]
	return d, ok
}

// indexReferences walks the document once, recording the resolved type of
// each expression WalkExpressions visits in the store's find-references
// index, keeping
// store.SetReferences's replace-on-reparse discipline in step with the
// symbol replace that just happened.
func (e *Engine) indexReferences(ctx context.Context, uri string, tree *phptree.Tree, symTree *symbol.Tree) {
	resolver := typeresolve.New(e.store)
	refs := make(map[string][]symbol.Location)

	resolver.WalkExpressions(ctx, tree.Root(), symTree.Imports, nil, func(n *phptree.Node, t symbol.TypeString) {
		if t.IsEmpty() {
			return
		}
		for _, fqn := range t.AtomicClasses() {
			refs[fqn] = append(refs[fqn], symbol.Location{URI: uri, StartLine: n.Range().StartLine, EndLine: n.Range().EndLine})
		}
	})

	e.store.SetReferences(uri, refs)
}

// DocumentSymbols returns uri's currently indexed top-level symbols.
func (e *Engine) DocumentSymbols(uri string) []*symbol.Symbol {
	return e.store.DocumentSymbols(uri)
}

// WorkspaceSymbols runs a prefix match for query over the global store.
func (e *Engine) WorkspaceSymbols(query string) []*symbol.Symbol {
	return e.store.Match(query, nil)
}

// ResolveType resolves the static type of the expression at position, a
// byte offset into uri's current buffer.
func (e *Engine) ResolveType(ctx context.Context, uri string, position uint32) (symbol.TypeString, error) {
	doc, ok := e.parsedDocOf(uri)
	if !ok {
		return symbol.TypeString{}, enginerr.ErrDocumentNotOpen
	}
	resolver := typeresolve.New(e.store)
	return resolver.ResolveAt(ctx, doc.tree.Root(), doc.imports, position, func() bool { return ctx.Err() != nil }), nil
}

// AggregateResult is a class-like symbol's merged member view: the FQNs it
// extends/implements/uses, and a function producing its members under a
// chosen merge strategy.
type AggregateResult struct {
	Associated []string
	Members    func(aggregate.MergeStrategy) []*symbol.Symbol
}

// Aggregate resolves classFQN's inheritance chain and returns its merged
// member view.
func (e *Engine) Aggregate(classFQN string) (*AggregateResult, error) {
	found := e.store.Find(classFQN, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
	if len(found) == 0 {
		return nil, enginerr.ErrSymbolNotFound
	}
	agg, err := aggregate.Build(found[0], e.store)
	if err != nil {
		return nil, err
	}
	return &AggregateResult{Associated: found[0].Associated, Members: agg.Members}, nil
}

// ProvideSignatureHelp resolves the call expression enclosing position
// and reports its callee's parameter list.
func (e *Engine) ProvideSignatureHelp(ctx context.Context, uri string, position uint32) (*typeresolve.Signature, error) {
	doc, ok := e.parsedDocOf(uri)
	if !ok {
		return nil, enginerr.ErrDocumentNotOpen
	}
	resolver := typeresolve.New(e.store)
	return resolver.SignatureAt(ctx, doc.tree.Root(), doc.imports, position, nil), nil
}

// ProvideCompletions resolves position's enclosing expression type (empty
// for a bare, unqualified prefix) and returns the aggregate's member list
// to filter against, or a workspace-wide symbol prefix match when there is
// no object expression to pivot on (e.g. completing a class name).
func (e *Engine) ProvideCompletions(ctx context.Context, uri string, position uint32, prefix string) ([]*symbol.Symbol, error) {
	t, err := e.ResolveType(ctx, uri, position)
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return e.store.Match(prefix, nil), nil
	}

	var out []*symbol.Symbol
	for _, fqn := range t.AtomicClasses() {
		found := e.store.Find(fqn, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
		if len(found) == 0 {
			continue
		}
		agg, err := aggregate.Build(found[0], e.store)
		if err != nil {
			continue
		}
		for _, m := range agg.Members(aggregate.MergeOverride) {
			if prefix == "" || hasCaseInsensitivePrefix(m.Name, prefix) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func hasCaseInsensitivePrefix(name, prefix string) bool {
	if len(prefix) > len(name) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := name[i], prefix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// ProvideDefinition resolves the expression's type and reports the
// declaring class-like symbol's location, the closest this engine gets to
// "go to definition" without member-level granularity (member positions
// are available through Aggregate's returned symbols directly).
func (e *Engine) ProvideDefinition(ctx context.Context, uri string, position uint32) (*symbol.Symbol, error) {
	t, err := e.ResolveType(ctx, uri, position)
	if err != nil {
		return nil, err
	}
	atoms := t.AtomicClasses()
	if len(atoms) == 0 {
		return nil, enginerr.ErrSymbolNotFound
	}
	found := e.store.Find(atoms[0], func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
	if len(found) == 0 {
		return nil, enginerr.ErrSymbolNotFound
	}
	return found[0], nil
}

// Discover walks root for PHP/phtml source and opens each one, yielding
// between documents, returning the total symbol count indexed.
func (e *Engine) Discover(ctx context.Context, root string, progress workspace.Progress) (int, error) {
	opts := workspace.Options{MaxFiles: e.cfg.MaxWorkspaceFiles}
	files, err := workspace.Discover(ctx, root, opts, progress)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range files {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		text, err := readFile(path)
		if err != nil {
			continue
		}
		count, err := e.OpenDocument(ctx, "file://"+path, text)
		if err != nil {
			continue
		}
		total += count
	}
	return total, nil
}

// Forget removes uri from every index without requiring it to have been
// opened through the document store first, used to drop a file discovered
// once but since deleted. Returns the symbol count it held.
func (e *Engine) Forget(uri string) int {
	before := len(e.store.DocumentSymbols(uri))
	e.store.Remove(uri)
	e.mu.Lock()
	delete(e.trees, uri)
	e.mu.Unlock()
	_ = e.docs.Close(uri)
	if e.cache != nil {
		_ = e.cache.RemoveDocument(uri)
	}
	return before
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
