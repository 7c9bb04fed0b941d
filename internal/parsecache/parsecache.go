// Package parsecache is the Parse Cache collaborator (§4.4): a
// (path, mtime) -> SymbolTree map that the Parser consults before
// re-parsing a file. The default implementation is an in-process LRU
// bounded at 10,000 entries (§5); internal/index's badger-backed Storage
// can back an optional second tier for long-running daemon deployments
// that want a warm cache across restarts of the cache layer only.
package parsecache

import (
	"bytes"
	"container/list"
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/73ai/code-context/internal/index"
	"github.com/73ai/code-context/internal/model"
)

// Cache is the Parse Cache's contract. Keyed on (path, mtime): a later
// mtime for the same path is always a miss, never a stale hit.
type Cache interface {
	Get(path string, mtime time.Time) (*model.SymbolTree, bool)
	Set(path string, mtime time.Time, tree *model.SymbolTree)
	Invalidate(path string)
}

// cacheKey derives a compact bucket key from a file's identity (path and
// mtime). xxhash is a fast non-cryptographic hash, chosen for this hot
// lookup path.
func cacheKey(path string, mtime time.Time) uint64 {
	h := xxhash.New()
	h.WriteString(path)
	h.WriteString(mtime.UTC().Format(time.RFC3339Nano))
	return h.Sum64()
}

type lruEntry struct {
	path  string
	mtime time.Time
	tree  *model.SymbolTree
}

// LRU is the default, in-process, bounded Parse Cache.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	byPath   map[string]*list.Element // path -> element holding the current lruEntry
	onEvict  func(path string)
}

// DefaultCapacity is §5's default bound: "the default is ten thousand
// entries, evicted LRU."
const DefaultCapacity = 10_000

// NewLRU builds an in-process Parse Cache bounded at capacity entries (one
// entry per distinct path; a new mtime for an already-cached path replaces
// its entry in place rather than growing the count). onEvict, if non-nil,
// is called with the evicted path — wired to structured logging at the
// cache-eviction log site described in the AMBIENT STACK.
func NewLRU(capacity int, onEvict func(path string)) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		byPath:   make(map[string]*list.Element),
		onEvict:  onEvict,
	}
}

// Get returns the cached tree for path only if its stored mtime matches
// exactly; any other stored mtime (older or newer) is a miss, never a
// stale hit.
func (c *LRU) Get(path string, mtime time.Time) (*model.SymbolTree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byPath[path]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*lruEntry)
	if !entry.mtime.Equal(mtime) {
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.tree, true
}

// Set stores tree for (path, mtime), evicting the least-recently-used
// entry if the cache is at capacity and path is new.
func (c *LRU) Set(path string, mtime time.Time, tree *model.SymbolTree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byPath[path]; ok {
		el.Value = &lruEntry{path: path, mtime: mtime, tree: tree}
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{path: path, mtime: mtime, tree: tree})
	c.byPath[path] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*lruEntry)
		c.order.Remove(oldest)
		delete(c.byPath, entry.path)
		if c.onEvict != nil {
			c.onEvict(entry.path)
		}
	}
}

// Invalidate drops any cached entry for path regardless of mtime.
func (c *LRU) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byPath[path]; ok {
		c.order.Remove(el)
		delete(c.byPath, path)
	}
}

// Len reports the current entry count, for tests and diagnostics.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// BadgerCache is the optional, on-disk second tier described in
// SPEC_FULL.md's DOMAIN STACK: the same Cache contract, backed by
// internal/index's badger.Storage, for daemon deployments that want warm
// parse results across restarts of the cache layer. It is never consulted
// by the Project Index's authoritative tables, which stay process-lifetime
// per §6 "Persisted state: none" — only by the Parser's cache-check path.
type BadgerCache struct {
	storage index.Storage
}

// NewBadgerCache wraps an already-open badger-backed Storage as a Parse
// Cache. Callers own the Storage's lifecycle (open/close).
func NewBadgerCache(storage index.Storage) *BadgerCache {
	return &BadgerCache{storage: storage}
}

type gobTree struct {
	Path  string
	Mtime time.Time
	Tree  model.SymbolTree
}

func (b *BadgerCache) keyFor(path string, mtime time.Time) []byte {
	return []byte(fmt.Sprintf("%s%016x", index.PrefixParseTree, cacheKey(path, mtime)))
}

// Get looks up path at mtime in the badger store. A hash collision or a
// key shared by an unrelated (path, mtime) pair is detected by comparing
// the decoded record's own path/mtime before returning a hit.
func (b *BadgerCache) Get(path string, mtime time.Time) (*model.SymbolTree, bool) {
	data, err := b.storage.Get(context.Background(), b.keyFor(path, mtime))
	if err != nil || data == nil {
		return nil, false
	}
	var rec gobTree
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, false
	}
	if rec.Path != path || !rec.Mtime.Equal(mtime) {
		return nil, false
	}
	tree := rec.Tree
	return &tree, true
}

// Set persists tree for (path, mtime).
func (b *BadgerCache) Set(path string, mtime time.Time, tree *model.SymbolTree) {
	var buf bytes.Buffer
	rec := gobTree{Path: path, Mtime: mtime, Tree: *tree}
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return
	}
	_ = b.storage.Set(context.Background(), b.keyFor(path, mtime), buf.Bytes())
}

// Invalidate is a no-op: removing every stored mtime variant for path would
// need a secondary path->keys index this cache doesn't keep. In practice
// callers only ever look up the current mtime, so a stale entry under a
// superseded mtime key is simply never hit again (Get's (path, mtime) match
// makes it inert). Such an entry stays in the store: it carries no TTL and
// nothing in this cache deletes it.
func (b *BadgerCache) Invalidate(path string) {}
