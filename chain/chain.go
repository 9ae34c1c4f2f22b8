// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain persists accepted blocks and transactions and maintains the
// indexes the rest of the node reads: block by hash, block hash by height,
// transaction by hash, and the set of spent key images. Acceptance is
// structural and positional only; producer/validator authorization for a
// given round is checked by the caller before a block reaches AcceptBlock.
package chain

import (
	"encoding/binary"

	"github.com/decred/slog"

	"github.com/nyxchain/nyxd/block"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/kvstore"
	"github.com/nyxchain/nyxd/txn"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// Store is the chain's view over one data environment.
type Store struct {
	env *kvstore.Env
}

// Open returns a Store over env. The underlying sub-databases are created
// lazily on first write.
func Open(env *kvstore.Env) *Store {
	return &Store{env: env}
}

// heightKey encodes a block index big-endian so the height index iterates
// in chain order.
func heightKey(index uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], index)
	return k[:]
}

// PutTransaction stores t under its identity hash. Storing a transaction
// does not spend its key images; that happens when a block referencing it
// is accepted.
func (s *Store) PutTransaction(t txn.Transaction) error {
	h, err := txn.Hash(t)
	if err != nil {
		return err
	}
	raw, err := t.Serialize()
	if err != nil {
		return err
	}
	return s.env.Update(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketTransactions, false)
		if err != nil {
			return err
		}
		return bucket.Put(h[:], raw)
	})
}

// GetTransaction returns the transaction stored under h.
func (s *Store) GetTransaction(h chainhash.Hash) (txn.Transaction, error) {
	var raw []byte
	err := s.env.View(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketTransactions, false)
		if err != nil {
			return err
		}
		raw, err = bucket.Get(h[:])
		return err
	})
	if err != nil {
		if errs.Is(err, errs.DBKeyNotFound) {
			return nil, errs.New(errs.TransactionNotFound, "transaction not stored")
		}
		return nil, err
	}
	return txn.Deserialize(raw)
}

// AcceptBlock validates b against the stored chain and, on success, writes
// it atomically together with its height-index entry and the key images its
// transactions spend. Checks, in order:
//
//   - the transaction set must be strictly ascending (block_txn_order);
//   - the block hash must not already be stored, and the height slot must
//     be free (block_already_exists);
//   - previous_blockhash must match the stored block at block_index-1, and
//     height 0 must carry a zero previous hash (block_does_not_chain);
//   - every referenced transaction must already be stored
//     (block_transactions_mismatch);
//   - no referenced transaction may spend an already-spent key image.
func (s *Store) AcceptBlock(b *block.Block) error {
	h, err := b.Hash()
	if err != nil {
		return err
	}
	raw, err := b.Serialize()
	if err != nil {
		return err
	}
	for i := 1; i < len(b.Transactions); i++ {
		if !b.Transactions[i-1].Less(b.Transactions[i]) {
			return errs.New(errs.BlockTxnOrder, "transaction set not strictly ascending")
		}
	}

	err = s.env.Update(func(tx *kvstore.Tx) error {
		blocks, err := tx.Bucket(kvstore.BucketBlocks, false)
		if err != nil {
			return err
		}
		heights, err := tx.Bucket(kvstore.BucketBlockHeights, false)
		if err != nil {
			return err
		}
		txns, err := tx.Bucket(kvstore.BucketTransactions, false)
		if err != nil {
			return err
		}
		images, err := tx.Bucket(kvstore.BucketKeyImages, false)
		if err != nil {
			return err
		}

		if exists, err := blocks.Exists(h[:]); err != nil {
			return err
		} else if exists {
			return errs.New(errs.BlockAlreadyExists, "block already stored")
		}
		if exists, err := heights.Exists(heightKey(b.BlockIndex)); err != nil {
			return err
		} else if exists {
			return errs.New(errs.BlockAlreadyExists, "height already occupied")
		}

		if b.BlockIndex == 0 {
			if !b.PreviousBlockHash.IsZero() {
				return errs.New(errs.BlockDoesNotChain, "height 0 must have a zero previous hash")
			}
		} else {
			prev, err := heights.Get(heightKey(b.BlockIndex - 1))
			if err != nil {
				if errs.Is(err, errs.DBKeyNotFound) {
					return errs.New(errs.BlockDoesNotChain, "no block at the previous height")
				}
				return err
			}
			if !bytesEqualHash(prev, b.PreviousBlockHash) {
				return errs.New(errs.BlockDoesNotChain, "previous_blockhash does not match the stored parent")
			}
		}

		for _, txHash := range b.Transactions {
			rawTx, err := txns.Get(txHash[:])
			if err != nil {
				if errs.Is(err, errs.DBKeyNotFound) {
					return errs.New(errs.BlockTransactionsMismatch, "referenced transaction not stored: "+txHash.String())
				}
				return err
			}
			t, err := txn.Deserialize(rawTx)
			if err != nil {
				return err
			}
			for _, ki := range txn.KeyImages(t) {
				kib := ki.Bytes()
				if exists, err := images.Exists(kib); err != nil {
					return err
				} else if exists {
					return errs.New(errs.GenericFailure, "key image already spent")
				}
				if err := images.Put(kib, txHash[:]); err != nil {
					return err
				}
			}
		}

		if err := blocks.Put(h[:], raw); err != nil {
			return err
		}
		return heights.Put(heightKey(b.BlockIndex), h[:])
	})
	if err != nil {
		return err
	}
	log.Infof("accepted block %s at height %d (%d txns)", h, b.BlockIndex, len(b.Transactions))
	return nil
}

// GetBlock returns the block stored under h.
func (s *Store) GetBlock(h chainhash.Hash) (*block.Block, error) {
	var raw []byte
	err := s.env.View(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketBlocks, false)
		if err != nil {
			return err
		}
		raw, err = bucket.Get(h[:])
		return err
	})
	if err != nil {
		if errs.Is(err, errs.DBKeyNotFound) {
			return nil, errs.New(errs.BlockNotFound, "block not stored")
		}
		return nil, err
	}
	return block.Deserialize(raw)
}

// GetBlockByHeight returns the block stored at the given chain height.
func (s *Store) GetBlockByHeight(index uint64) (*block.Block, error) {
	var hash chainhash.Hash
	err := s.env.View(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketBlockHeights, false)
		if err != nil {
			return err
		}
		v, err := bucket.Get(heightKey(index))
		if err != nil {
			return err
		}
		hash.SetBytes(v)
		return nil
	})
	if err != nil {
		if errs.Is(err, errs.DBKeyNotFound) {
			return nil, errs.New(errs.BlockNotFound, "no block at that height")
		}
		return nil, err
	}
	return s.GetBlock(hash)
}

// Tip returns the hash and height of the highest stored block, or db_empty
// when no block has been accepted yet.
func (s *Store) Tip() (chainhash.Hash, uint64, error) {
	var hash chainhash.Hash
	var height uint64
	err := s.env.View(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketBlockHeights, false)
		if err != nil {
			return err
		}
		keys, err := bucket.ListKeys()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return errs.New(errs.DBEmpty, "no blocks stored")
		}
		last := keys[len(keys)-1]
		height = binary.BigEndian.Uint64(last)
		v, err := bucket.Get(last)
		if err != nil {
			return err
		}
		hash.SetBytes(v)
		return nil
	})
	if err != nil {
		return chainhash.Hash{}, 0, err
	}
	return hash, height, nil
}

// IsKeyImageSpent reports whether a key image has been consumed by an
// accepted block.
func (s *Store) IsKeyImageSpent(kib []byte) (bool, error) {
	var spent bool
	err := s.env.View(func(tx *kvstore.Tx) error {
		bucket, err := tx.Bucket(kvstore.BucketKeyImages, false)
		if err != nil {
			return err
		}
		spent, err = bucket.Exists(kib)
		return err
	})
	return spent, err
}

func bytesEqualHash(raw []byte, h chainhash.Hash) bool {
	if len(raw) != chainhash.HashSize {
		return false
	}
	for i := range raw {
		if raw[i] != h[i] {
			return false
		}
	}
	return true
}
