// Package projindex implements the Project Index (§4.7): the component
// that owns the authoritative relativePath -> SymbolTree map and the flat
// IndexedSymbol table, drives full and incremental indexing, and answers
// every read-only query in the consumer surface (§6). It composes the
// Project Scanner, Parser, Parse Cache, and File Watcher collaborators.
package projindex

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/73ai/code-context/internal/engerr"
	"github.com/73ai/code-context/internal/fsx"
	"github.com/73ai/code-context/internal/langreg"
	"github.com/73ai/code-context/internal/model"
	"github.com/73ai/code-context/internal/parsecache"
	"github.com/73ai/code-context/internal/scanner"
	"github.com/73ai/code-context/internal/synparse"
	"github.com/73ai/code-context/internal/watch"
)

// State is one of the Project Index's lifecycle states (§4.8–4.10 state
// machine table).
type State string

const (
	StateUninitialized State = "uninitialized"
	StateIndexing       State = "indexing"
	StateReady          State = "ready"
	StateWatching       State = "watching"
	StateDisposed       State = "disposed"
)

// MaxFileSize is §5's default per-file source size cap; larger files are
// skipped with a logged warning rather than parsed.
const MaxFileSize = 5 << 20

// Config configures a new Index.
type Config struct {
	FS            *fsx.FS
	Registry      *langreg.Registry
	Cache         parsecache.Cache
	Log           logr.Logger
	Workers       int           // parallel parse fan-out during IndexProject; 0 = runtime default
	DebounceDelay time.Duration // passed through to the watcher
	MaxFileSize   int64         // 0 = MaxFileSize
}

// Index is the Project Index.
type Index struct {
	fs       *fsx.FS
	registry *langreg.Registry
	parser   *synparse.Parser
	scanner  *scanner.Scanner
	cache    parsecache.Cache
	log      logr.Logger
	workers  int
	maxSize  int64
	debounce time.Duration

	mu      sync.RWMutex
	state   State
	root    string
	trees   map[string]*model.SymbolTree
	mtimes  map[string]time.Time
	symbols []model.IndexedSymbol
	stats   model.IndexStats

	watcher *watch.Watcher
}

// New builds a Project Index in state Uninitialized.
func New(cfg Config) *Index {
	registry := cfg.Registry
	if registry == nil {
		registry = langreg.New()
	}
	cache := cfg.Cache
	if cache == nil {
		log := cfg.Log
		cache = parsecache.NewLRU(parsecache.DefaultCapacity, func(path string) {
			log.V(0).Info("parse cache eviction", "path", path)
		})
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	return &Index{
		fs:       cfg.FS,
		registry: registry,
		parser:   synparse.New(registry, cfg.Log),
		scanner:  scanner.New(cfg.FS, registry.Extensions()),
		cache:    cache,
		log:      cfg.Log,
		workers:  cfg.Workers,
		maxSize:  maxSize,
		debounce: cfg.DebounceDelay,
		state:    StateUninitialized,
		trees:    make(map[string]*model.SymbolTree),
		mtimes:   make(map[string]time.Time),
	}
}

// State reports the Project Index's current lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// fileResult is a single parsed file produced in the scratch phase of
// IndexProject, swapped into the authoritative tables all at once.
type fileResult struct {
	path string
	tree *model.SymbolTree
	err  error
}

// IndexProject performs a full (re)index of root: clears prior state, scans
// for source files, parses each (cache-checked), and replaces the
// authoritative tables atomically. Parses fan out across up to Workers
// goroutines (§5); writes into the scratch result slice are index-addressed
// so no lock is needed until the final swap. A cancelled ctx aborts at the
// next file boundary, leaving the Index's prior state untouched.
func (ix *Index) IndexProject(ctx context.Context, root string) (model.IndexStats, error) {
	ix.mu.Lock()
	priorState := ix.state
	ix.state = StateIndexing
	ix.mu.Unlock()

	files, err := ix.scanner.Scan(root)
	if err != nil {
		return model.IndexStats{}, engerr.IO("indexProject", root, err)
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if ix.workers > 0 {
		g.SetLimit(ix.workers)
	}
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			tree, parseErr := ix.parseFile(rel)
			results[i] = fileResult{path: rel, tree: tree, err: parseErr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ix.mu.Lock()
		if ix.state == StateIndexing {
			ix.state = priorState
		}
		ix.mu.Unlock()
		return model.IndexStats{}, engerr.Cancelled("indexProject", "cancelled during parse fan-out")
	}

	newTrees := make(map[string]*model.SymbolTree, len(results))
	newMtimes := make(map[string]time.Time, len(results))
	var newSymbols []model.IndexedSymbol
	histogram := make(map[string]int)
	parseErrors := 0

	for _, r := range results {
		if r.err != nil {
			parseErrors++
			ix.log.V(0).Info("skipping file, could not be parsed", "path", r.path, "err", r.err.Error())
			continue
		}
		if r.tree == nil {
			continue
		}
		newTrees[r.path] = r.tree
		if st, err := ix.fs.Stats(r.path); err == nil {
			newMtimes[r.path] = st.ModTime
		}
		histogram[r.tree.LanguageID]++
		newSymbols = append(newSymbols, flattenFile(r.path, r.tree)...)
	}

	stats := model.IndexStats{
		FilesIndexed:      len(newTrees),
		SymbolsIndexed:    len(newSymbols),
		LanguageHistogram: histogram,
		ParseErrors:       parseErrors,
		TimestampUnix:     timestampUnix(),
	}

	ix.mu.Lock()
	ix.root = root
	ix.trees = newTrees
	ix.mtimes = newMtimes
	ix.symbols = newSymbols
	ix.stats = stats
	ix.state = StateReady
	ix.mu.Unlock()

	return stats, nil
}

// parseFile reads relPath, consults the Parse Cache keyed on (path, mtime),
// and parses on a miss. Files over the size cap are skipped with a logged
// warning, matching §5's resource bound.
func (ix *Index) parseFile(relPath string) (*model.SymbolTree, error) {
	st, err := ix.fs.Stats(relPath)
	if err != nil {
		return nil, err
	}
	if st.Size > ix.maxSize {
		ix.log.V(0).Info("skipping oversized file", "path", relPath, "size", st.Size, "limit", ix.maxSize)
		return nil, nil
	}
	if cached, ok := ix.cache.Get(relPath, st.ModTime); ok {
		return cached, nil
	}

	source, err := ix.fs.Read(relPath)
	if err != nil {
		return nil, err
	}
	tree, err := ix.parser.Parse(source, relPath)
	if err != nil {
		return nil, err
	}
	ix.cache.Set(relPath, st.ModTime, tree)
	return tree, nil
}

// ReindexFile atomically replaces relPath's tree and symbols: remove then
// insert is staged in local variables and swapped into the shared tables
// under a single lock acquisition, so concurrent readers never observe a
// stale tree paired with new symbols or vice versa (§9 "Incremental reindex
// atomicity"). If parsing fails, the file is left absent from both tables —
// invisible to queries, per §4.7.
func (ix *Index) ReindexFile(relPath string) error {
	ix.mu.RLock()
	state := ix.state
	ix.mu.RUnlock()
	if state != StateReady && state != StateWatching {
		return engerr.NotInit("reindexFile", "index must be Ready or Watching")
	}

	ix.cache.Invalidate(relPath)
	tree, err := ix.parseFile(relPath)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	filtered := ix.symbols[:0:0]
	for _, s := range ix.symbols {
		if s.FilePath != relPath {
			filtered = append(filtered, s)
		}
	}
	delete(ix.trees, relPath)

	if err != nil || tree == nil {
		ix.symbols = filtered
		return err
	}

	ix.trees[relPath] = tree
	ix.symbols = append(filtered, flattenFile(relPath, tree)...)
	return nil
}

// RemoveFile removes relPath's tree and symbols.
func (ix *Index) RemoveFile(relPath string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.trees, relPath)
	filtered := ix.symbols[:0:0]
	for _, s := range ix.symbols {
		if s.FilePath != relPath {
			filtered = append(filtered, s)
		}
	}
	ix.symbols = filtered
	ix.stats.TimestampUnix = timestampUnix()
	return nil
}

// SearchOptions parameterizes SearchSymbols.
type SearchOptions struct {
	Pattern    string
	Kinds      []model.SymbolKind
	MaxResults int
}

// regexTimeout and maxPatternLength implement §5's "SHOULD reject or
// time-box pathological patterns" for caller-supplied regex.
const (
	maxPatternLength = 512
	regexTimeout     = 500 * time.Millisecond
)

// SearchSymbols matches pattern (case-insensitive) against each indexed
// symbol's name or qualified name, optionally filtered by kind, capped at
// MaxResults. Returns the matches, a truncated flag (set when the cap was
// hit — the caller decides what to do about it), and an InputError if the
// pattern is invalid or rejected as oversized.
func (ix *Index) SearchSymbols(opts SearchOptions) ([]model.IndexedSymbol, bool, error) {
	if len(opts.Pattern) > maxPatternLength {
		return nil, false, engerr.Input("searchSymbols", "pattern exceeds maximum length")
	}
	re, err := regexp.Compile("(?i)" + opts.Pattern)
	if err != nil {
		return nil, false, engerr.Input("searchSymbols", "invalid regex: "+err.Error())
	}

	kindSet := make(map[model.SymbolKind]bool, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kindSet[k] = true
	}

	ix.mu.RLock()
	candidates := make([]model.IndexedSymbol, len(ix.symbols))
	copy(candidates, ix.symbols)
	ix.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FilePath != candidates[j].FilePath {
			return candidates[i].FilePath < candidates[j].FilePath
		}
		if candidates[i].StartLine != candidates[j].StartLine {
			return candidates[i].StartLine < candidates[j].StartLine
		}
		return candidates[i].Name < candidates[j].Name
	})

	ctx, cancel := context.WithTimeout(context.Background(), regexTimeout)
	defer cancel()

	var out []model.IndexedSymbol
	truncated := false
	for _, sym := range candidates {
		select {
		case <-ctx.Done():
			return out, true, nil
		default:
		}
		if len(kindSet) > 0 && !kindSet[sym.Kind] {
			continue
		}
		if re.MatchString(sym.Name) || re.MatchString(sym.QualifiedName) {
			if opts.MaxResults > 0 && len(out) >= opts.MaxResults {
				truncated = true
				break
			}
			out = append(out, sym)
		}
	}
	return out, truncated, nil
}

// GetFileSymbols returns relPath's top-level visible (non-import) symbols.
func (ix *Index) GetFileSymbols(relPath string) ([]*model.Symbol, error) {
	tree, err := ix.GetTree(relPath)
	if err != nil {
		return nil, err
	}
	return tree.VisibleSymbols(), nil
}

// GetTree returns the full SymbolTree for relPath, including import-kind
// symbols.
func (ix *Index) GetTree(relPath string) (*model.SymbolTree, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	tree, ok := ix.trees[relPath]
	if !ok {
		return nil, engerr.NotFound("getTree", "file not indexed: "+relPath)
	}
	return tree, nil
}

// GetIndexedFiles returns every currently-indexed relative path, sorted.
func (ix *Index) GetIndexedFiles() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.trees))
	for p := range ix.trees {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsEmpty reports whether the index holds no files.
func (ix *Index) IsEmpty() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.trees) == 0
}

// AllSymbols returns a defensive copy of every currently-indexed symbol
// across every file, for collaborators layered on top of the Project Index
// (Reference & Call Search, the Insight Synthesizer) that need the full
// cross-file table rather than a single regex query.
func (ix *Index) AllSymbols() []model.IndexedSymbol {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]model.IndexedSymbol, len(ix.symbols))
	copy(out, ix.symbols)
	return out
}

// GetStats returns the stats from the last full or incremental index pass.
func (ix *Index) GetStats() model.IndexStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.stats
}

// Root returns the workspace root passed to the last IndexProject call.
func (ix *Index) Root() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.root
}

// Snapshot returns a defensive copy of the current path->tree map, for
// collaborators (reference search, dependency analysis, insight) that need
// to iterate every indexed file's tree without holding the Index's lock.
func (ix *Index) Snapshot() map[string]*model.SymbolTree {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[string]*model.SymbolTree, len(ix.trees))
	for k, v := range ix.trees {
		out[k] = v
	}
	return out
}

// StartWatching begins watching the Index's root for changes, driving
// ReindexFile on created/modified events and RemoveFile on deleted events.
// Errors from reindexing are logged, not propagated, so the watcher loop
// stays live (§4.7).
func (ix *Index) StartWatching() error {
	ix.mu.Lock()
	if ix.state != StateReady {
		ix.mu.Unlock()
		return engerr.NotInit("startWatching", "index must be Ready before watching")
	}
	root := ix.root
	ix.mu.Unlock()

	// root is workspace-relative: the OS watcher gets it resolved against
	// the File Abstraction's root, and its events (relative to that
	// directory) are re-prefixed with root to match the scanner's paths.
	watchRoot := root
	if !filepath.IsAbs(root) {
		watchRoot = filepath.Join(ix.fs.Root, root)
	}
	w := watch.New(watch.Config{
		Root:       watchRoot,
		Extensions: ix.registry.Extensions(),
		Debounce:   ix.debounce,
		Log:        ix.log,
		OnEvent: func(ev watch.Event) {
			if root != "" && root != "." {
				ev.RelativePath = filepath.ToSlash(filepath.Join(root, ev.RelativePath))
			}
			ix.handleWatchEvent(ev)
		},
	})
	if err := w.Start(); err != nil {
		return engerr.IO("startWatching", root, err)
	}

	ix.mu.Lock()
	ix.watcher = w
	ix.state = StateWatching
	ix.mu.Unlock()
	return nil
}

func (ix *Index) handleWatchEvent(ev watch.Event) {
	switch ev.Kind {
	case watch.Deleted:
		if err := ix.RemoveFile(ev.RelativePath); err != nil {
			ix.log.Error(err, "removeFile failed from watch event", "path", ev.RelativePath)
		}
	default:
		if err := ix.ReindexFile(ev.RelativePath); err != nil {
			ix.log.Error(err, "reindexFile failed from watch event", "path", ev.RelativePath)
		}
	}
}

// StopWatching stops the watcher and returns to Ready.
func (ix *Index) StopWatching() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.watcher != nil {
		ix.watcher.Stop()
		ix.watcher = nil
	}
	if ix.state == StateWatching {
		ix.state = StateReady
	}
	return nil
}

// flattenFile produces the IndexedSymbol rows for one file's tree,
// excluding import-kind symbols per §3's IndexedSymbol invariant, with
// qualified names built as the dotted path of ancestor names.
func flattenFile(relPath string, tree *model.SymbolTree) []model.IndexedSymbol {
	var out []model.IndexedSymbol
	var walk func(sym *model.Symbol, prefix string)
	walk = func(sym *model.Symbol, prefix string) {
		if sym.Kind == model.KindImport {
			return
		}
		qualified := sym.Name
		if prefix != "" {
			qualified = prefix + "." + sym.Name
		}
		out = append(out, model.IndexedSymbol{
			Name:          sym.Name,
			QualifiedName: qualified,
			Kind:          sym.Kind,
			FilePath:      relPath,
			StartLine:     sym.Declaration.Start.Line,
			EndLine:       endLine(sym),
		})
		for _, child := range sym.Children {
			walk(child, qualified)
		}
	}
	for _, sym := range tree.Symbols {
		walk(sym, "")
	}
	return out
}

func endLine(sym *model.Symbol) int {
	if sym.Body != nil {
		return sym.Body.End.Line
	}
	return sym.Declaration.End.Line
}

func timestampUnix() int64 { return time.Now().Unix() }
