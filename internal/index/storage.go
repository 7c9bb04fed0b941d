// Package index provides a generic, badger-backed key-value storage
// contract reused by internal/parsecache as the Parse Cache's optional
// second-tier (on-disk) backend.
package index

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Storage defines the unified interface for all storage operations in codegrep.
// It provides key-value storage with prefix scanning, transactions, and batch operations
// optimized for storing code symbols, metadata, and query results.
type Storage interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Has(ctx context.Context, key []byte) (bool, error)

	Batch() Batch
	WriteBatch(ctx context.Context, batch Batch) error

	Scan(ctx context.Context, prefix []byte, opts ScanOptions) Iterator

	Transaction(ctx context.Context, fn func(Txn) error) error

	Backup(ctx context.Context, w io.Writer) error
	Restore(ctx context.Context, r io.Reader) error
	Close() error

	Stats() StorageStats
	Size() (int64, error)

	GC(ctx context.Context) error
	Compact(ctx context.Context) error
}

// Batch represents a collection of operations to be executed atomically
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Clear()
	Size() int
}

// Txn represents a transaction for atomic multi-operation updates
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Scan(prefix []byte, opts ScanOptions) Iterator
}

// Iterator provides sequential access to key-value pairs
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close()
}

// ScanOptions controls prefix scanning behavior
type ScanOptions struct {
	Reverse bool

	Limit int

	KeysOnly bool

	StartAfter []byte
}

// StorageStats provides insights into storage performance and usage
type StorageStats struct {
	TotalSize     int64 `json:"total_size"`
	KeyCount      int64 `json:"key_count"`
	IndexSize     int64 `json:"index_size"`

	ReadCount     int64 `json:"read_count"`
	WriteCount    int64 `json:"write_count"`
	ScanCount     int64 `json:"scan_count"`

	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`

	AvgReadTime   int64 `json:"avg_read_time"`
	AvgWriteTime  int64 `json:"avg_write_time"`
	AvgScanTime   int64 `json:"avg_scan_time"`

	LastUpdated   time.Time `json:"last_updated"`
}

const (
	// PrefixParseTree namespaces the Parse Cache's serialized SymbolTree
	// entries: parse:{path+mtime cache key} -> gob-encoded gobTree.
	PrefixParseTree = "parse:"
)

func MarshalValue(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func UnmarshalValue(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// StorageError wraps storage-specific errors
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var (
	ErrKeyNotFound   = &StorageError{Op: "get", Err: io.EOF}
	ErrKeyExists     = &StorageError{Op: "set", Err: io.ErrUnexpectedEOF}
	ErrBatchTooLarge = &StorageError{Op: "batch", Err: io.ErrShortBuffer}
	ErrTxnConflict   = &StorageError{Op: "txn", Err: io.ErrClosedPipe}
)