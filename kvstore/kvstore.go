// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kvstore is the node's ordered key-value store façade: named
// sub-databases, optional dup-sort values per key, ACID transactions,
// forward cursors, and a growable backing map with transparent MAP_FULL
// retry, built on github.com/erigontech/mdbx-go/mdbx (libmdbx).
package kvstore

import (
	"os"
	"sort"
	"sync"

	"github.com/decred/slog"
	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/nyxchain/nyxd/errs"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// Sub-database names, the node's persisted state layout.
const (
	BucketBlocks       = "blocks"
	BucketBlockHeights = "block_heights"
	BucketTransactions = "transactions"
	BucketKeyImages    = "key_images"
	BucketCandidates   = "candidates"
	BucketStakers      = "stakers"
	BucketStakes       = "stakes" // dup-sort
	BucketPeerList     = "peerlist"
	BucketLocal        = "local" // holds our persistent peer_id
)

// initialMapSizeBytes and mapGrowthFactor govern the growable backing
// map: the environment starts small and doubles on MAP_FULL rather than
// being sized up front.
const (
	initialMapSizeBytes = 64 << 20 // 64 MiB
	mapGrowthFactor     = 2
)

// registry keys every open Env by path, so re-opens with the same path
// return the same handle.
var (
	registryMu sync.Mutex
	registry   = map[string]*Env{}
)

// Env wraps one libmdbx environment. All writes to it are serialized by mu,
// which also gives growMap its zero-write-transactions-open precondition.
type Env struct {
	path string
	env  *mdbx.Env

	mu      sync.Mutex // serializes writers process-wide for this Env
	mapSize int64

	dbiMu sync.Mutex
	dbis  map[string]mdbx.DBI
}

// Open returns the Env for path, opening a fresh libmdbx environment on
// first use and the cached handle on every subsequent call.
func Open(path string) (*Env, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if e, ok := registry[path]; ok {
		return e, nil
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, errs.New(errs.DBError, "mkdir data dir: "+err.Error())
	}

	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, errs.New(errs.DBError, "new env: "+err.Error())
	}
	if err := env.SetOption(mdbx.OptMaxDB, 16); err != nil {
		return nil, errs.New(errs.DBError, "set max dbs: "+err.Error())
	}
	if err := env.SetGeometry(-1, -1, initialMapSizeBytes, -1, -1, -1); err != nil {
		return nil, errs.New(errs.DBError, "set geometry: "+err.Error())
	}
	if err := env.Open(path, 0, 0o600); err != nil {
		return nil, errs.New(errs.DBError, "open env: "+err.Error())
	}

	e := &Env{path: path, env: env, mapSize: initialMapSizeBytes, dbis: make(map[string]mdbx.DBI)}
	registry[path] = e
	return e, nil
}

// Close releases the underlying libmdbx environment and drops it from the
// process-wide registry.
func (e *Env) Close() {
	registryMu.Lock()
	defer registryMu.Unlock()
	e.env.Close()
	delete(registry, e.path)
}

// growMap doubles the environment's map size. The caller must hold e.mu,
// which guarantees no write transaction is concurrently open — libmdbx's
// precondition for resizing.
func (e *Env) growMap() error {
	e.mapSize *= mapGrowthFactor
	log.Infof("map full, growing %s to %d bytes", e.path, e.mapSize)
	if err := e.env.SetGeometry(-1, -1, int(e.mapSize), -1, -1, -1); err != nil {
		return errs.New(errs.DBError, "grow map: "+err.Error())
	}
	return nil
}

func (e *Env) openDBI(txn *mdbx.Txn, name string, dupSort bool) (mdbx.DBI, error) {
	e.dbiMu.Lock()
	defer e.dbiMu.Unlock()
	if dbi, ok := e.dbis[name]; ok {
		return dbi, nil
	}
	flags := uint(mdbx.Create)
	if dupSort {
		flags |= uint(mdbx.DupSort)
	}
	dbi, err := txn.OpenDBISimple(name, flags)
	if err != nil {
		return 0, errs.New(errs.DBError, "open sub-database "+name+": "+err.Error())
	}
	e.dbis[name] = dbi
	return dbi, nil
}

// Tx is one ACID transaction over an Env: it either commits atomically or
// is aborted on all exit paths. Readers see a consistent snapshot from
// transaction start; writers serialize via Env.mu.
type Tx struct {
	env      *Env
	txn      *mdbx.Txn
	writable bool
}

// View runs fn in a read-only transaction snapshot. The transaction is
// always aborted afterwards (read-only transactions have nothing to
// commit).
func (e *Env) View(fn func(tx *Tx) error) error {
	txn, err := e.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return errs.New(errs.DBError, "begin read txn: "+err.Error())
	}
	defer txn.Abort()
	return fn(&Tx{env: e, txn: txn, writable: false})
}

// isMapFull reports whether err indicates MDBX_MAP_FULL, the condition
// under which Update transparently grows the map and retries.
func isMapFull(err error) bool {
	var mdbxErr *mdbx.OpError
	if e, ok := err.(*mdbx.OpError); ok {
		mdbxErr = e
	}
	return mdbxErr != nil && mdbxErr.Errno == mdbx.MapFull
}

// Update runs fn in a read-write transaction and commits on success. On
// MDBX_MAP_FULL it aborts, grows the map, and retries fn, doubling again
// as needed since a single expansion may not be enough for a very large
// write. At most one write transaction is ever open at a time for this
// Env, satisfying the precondition growMap requires.
func (e *Env) Update(fn func(tx *Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		txn, err := e.env.BeginTxn(nil, 0)
		if err != nil {
			return errs.New(errs.DBError, "begin write txn: "+err.Error())
		}
		txErr := fn(&Tx{env: e, txn: txn, writable: true})
		if txErr != nil {
			txn.Abort()
			return txErr
		}
		_, commitErr := txn.Commit()
		if commitErr == nil {
			return nil
		}
		if isMapFull(commitErr) {
			if growErr := e.growMap(); growErr != nil {
				return growErr
			}
			continue
		}
		return errs.New(errs.DBError, "commit: "+commitErr.Error())
	}
}

// Bucket opens (creating if absent) the named sub-database within tx.
// dupSort must match how the bucket was first created in this Env's
// lifetime; package staking always opens BucketStakes with dupSort=true.
func (tx *Tx) Bucket(name string, dupSort bool) (*Bucket, error) {
	dbi, err := tx.env.openDBI(tx.txn, name, dupSort)
	if err != nil {
		return nil, err
	}
	return &Bucket{tx: tx, dbi: dbi, dupSort: dupSort}, nil
}

// Bucket is a handle to one named sub-database within one Tx.
type Bucket struct {
	tx      *Tx
	dbi     mdbx.DBI
	dupSort bool
}

// Get returns the value stored at k, or errs.DBKeyNotFound if absent. For
// a dup-sort bucket this returns the first duplicate in sort order; use
// Cursor().GetAll for the full set.
func (b *Bucket) Get(k []byte) ([]byte, error) {
	v, err := b.tx.txn.Get(b.dbi, k)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, errs.New(errs.DBKeyNotFound, "key not found")
		}
		return nil, errs.New(errs.DBError, "get: "+err.Error())
	}
	return v, nil
}

// Exists reports whether k has at least one value in the bucket.
func (b *Bucket) Exists(k []byte) (bool, error) {
	_, err := b.Get(k)
	if err != nil {
		if e, ok := err.(*errs.Error); ok && e.Kind == errs.DBKeyNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put writes k -> v. For a dup-sort bucket this adds v as one more
// duplicate at k rather than replacing the existing values.
func (b *Bucket) Put(k, v []byte) error {
	if !b.tx.writable {
		return errs.New(errs.DBError, "put on read-only transaction")
	}
	if err := b.tx.txn.Put(b.dbi, k, v, 0); err != nil {
		return errs.New(errs.DBError, "put: "+err.Error())
	}
	return nil
}

// Delete removes every value stored at k.
func (b *Bucket) Delete(k []byte) error {
	if !b.tx.writable {
		return errs.New(errs.DBError, "delete on read-only transaction")
	}
	if err := b.tx.txn.Del(b.dbi, k, nil); err != nil && !mdbx.IsNotFound(err) {
		return errs.New(errs.DBError, "delete: "+err.Error())
	}
	return nil
}

// DeleteExact removes exactly the (k, v) duplicate pair from a dup-sort
// bucket. Stake recalls depend on this byte-exact match, which the
// canonical encoder's sort-on-encode rule makes stable across nodes.
func (b *Bucket) DeleteExact(k, v []byte) error {
	if !b.tx.writable {
		return errs.New(errs.DBError, "delete on read-only transaction")
	}
	if err := b.tx.txn.Del(b.dbi, k, v); err != nil {
		if mdbx.IsNotFound(err) {
			return errs.New(errs.DBKeyNotFound, "exact (key,value) pair not found")
		}
		return errs.New(errs.DBError, "delete exact: "+err.Error())
	}
	return nil
}

// ListKeys returns every distinct key in the bucket, in ascending order.
// libmdbx's B-tree key order already guarantees the ordering; the sort
// only restates it.
func (b *Bucket) ListKeys() ([][]byte, error) {
	cur, err := b.tx.txn.OpenCursor(b.dbi)
	if err != nil {
		return nil, errs.New(errs.DBError, "open cursor: "+err.Error())
	}
	defer cur.Close()

	var keys [][]byte
	var lastKey []byte
	k, _, err := cur.Get(nil, nil, mdbx.First)
	for err == nil {
		if lastKey == nil || !bytesEqual(k, lastKey) {
			cp := append([]byte{}, k...)
			keys = append(keys, cp)
			lastKey = cp
		}
		k, _, err = cur.Get(nil, nil, mdbx.Next)
	}
	if err != nil && !mdbx.IsNotFound(err) {
		return nil, errs.New(errs.DBError, "cursor walk: "+err.Error())
	}
	sort.Slice(keys, func(i, j int) bool { return bytesLess(keys[i], keys[j]) })
	return keys, nil
}

// Cursor opens a forward cursor over the bucket.
func (b *Bucket) Cursor() (*Cursor, error) {
	cur, err := b.tx.txn.OpenCursor(b.dbi)
	if err != nil {
		return nil, errs.New(errs.DBError, "open cursor: "+err.Error())
	}
	return &Cursor{cur: cur}, nil
}

// Cursor is a forward cursor over one bucket.
type Cursor struct {
	cur *mdbx.Cursor
}

// Close releases the cursor. Safe to call once per Cursor.
func (c *Cursor) Close() { c.cur.Close() }

// GetAll returns every value stored at k, in dup-sort order.
func (c *Cursor) GetAll(k []byte) ([][]byte, error) {
	var out [][]byte
	_, v, err := c.cur.Get(k, nil, mdbx.SetKey)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil
		}
		return nil, errs.New(errs.DBError, "cursor set-key: "+err.Error())
	}
	out = append(out, append([]byte{}, v...))
	for {
		_, v, err = c.cur.Get(nil, nil, mdbx.NextDup)
		if err != nil {
			if mdbx.IsNotFound(err) {
				break
			}
			return nil, errs.New(errs.DBError, "cursor next-dup: "+err.Error())
		}
		out = append(out, append([]byte{}, v...))
	}
	return out, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
