// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/nyxchain/nyxd/block"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/kvstore"
	"github.com/nyxchain/nyxd/txn"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	env, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(env.Close)
	return Open(env)
}

func randPoint(t *testing.T) *crypto.Point {
	t.Helper()
	s, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	return s.BasePoint()
}

func dummyOutputs(t *testing.T, n int) []txn.Output {
	t.Helper()
	out := make([]txn.Output, n)
	for i := range out {
		out[i] = txn.Output{PublicKey: randPoint(t), Amount: uint64(100 * (i + 1)), Commitment: randPoint(t)}
	}
	return out
}

// normalTxn builds a serialized-storable normal transaction spending one
// fresh key image.
func normalTxn(t *testing.T, memo string) *txn.Normal {
	t.Helper()
	secret, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	image := crypto.DeriveKeyImage(secret)
	blind, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	rp, err := crypto.ProveRange(200, blind)
	if err != nil {
		t.Fatalf("ProveRange: %v", err)
	}
	ring := []*crypto.Point{secret.BasePoint(), randPoint(t)}
	sig, err := crypto.SignRing([]byte(memo), ring, 0, secret, image)
	if err != nil {
		t.Fatalf("SignRing: %v", err)
	}
	return &txn.Normal{
		Prefix: txn.Prefix{
			Header:      txn.Header{Type: txn.TagNormal, Version: 1},
			TxPublicKey: randPoint(t),
		},
		Body: txn.Body{
			Fee:       1,
			KeyImages: []*crypto.KeyImage{image},
			Outputs:   dummyOutputs(t, 2),
		},
		TxExtra: []byte(memo),
		Suffix: &txn.UncommittedSuffix{
			Offsets:    []uint64{0, 1},
			Signatures: []*crypto.RingSignature{sig},
			RangeProof: rp,
		},
	}
}

func signedBlock(t *testing.T, prev chainhash.Hash, index uint64, txs []chainhash.Hash) *block.Block {
	t.Helper()
	reward := block.StakerReward{
		Header: txn.Header{Type: txn.TagCoinbase, Version: 1},
		Outputs: []block.StakerRewardOutput{
			{StakerID: chainhash.Sum(chainhash.DomainStakerIdentity, []byte("staker")), Amount: 10},
		},
	}
	b := block.New(1, prev, 1000+index, index, reward, txs)
	sk, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	if err := b.ProducerSign(sk); err != nil {
		t.Fatalf("ProducerSign: %v", err)
	}
	vsk, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	if err := b.ValidatorSign(vsk); err != nil {
		t.Fatalf("ValidatorSign: %v", err)
	}
	return b
}

func TestAcceptBlockChains(t *testing.T) {
	s := openStore(t)

	n := normalTxn(t, "chained")
	if err := s.PutTransaction(n); err != nil {
		t.Fatalf("PutTransaction: %v", err)
	}

	genesis := signedBlock(t, chainhash.Hash{}, 0, nil)
	if err := s.AcceptBlock(genesis); err != nil {
		t.Fatalf("AcceptBlock(genesis): %v", err)
	}
	gh, err := genesis.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	b1 := signedBlock(t, gh, 1, []chainhash.Hash{n.Hash()})
	if err := s.AcceptBlock(b1); err != nil {
		t.Fatalf("AcceptBlock(b1): %v", err)
	}

	tipHash, tipHeight, err := s.Tip()
	if err != nil {
		t.Fatalf("Tip: %v", err)
	}
	b1h, _ := b1.Hash()
	if tipHash != b1h || tipHeight != 1 {
		t.Fatalf("Tip = (%v, %d), want (%v, 1)", tipHash, tipHeight, b1h)
	}

	got, err := s.GetBlockByHeight(1)
	if err != nil {
		t.Fatalf("GetBlockByHeight: %v", err)
	}
	goth, _ := got.Hash()
	if goth != b1h {
		t.Fatalf("GetBlockByHeight(1) returned a different block")
	}

	spent, err := s.IsKeyImageSpent(n.Body.KeyImages[0].Bytes())
	if err != nil {
		t.Fatalf("IsKeyImageSpent: %v", err)
	}
	if !spent {
		t.Fatalf("key image not marked spent after block acceptance")
	}
}

func TestAcceptBlockRejectsDuplicate(t *testing.T) {
	s := openStore(t)
	genesis := signedBlock(t, chainhash.Hash{}, 0, nil)
	if err := s.AcceptBlock(genesis); err != nil {
		t.Fatalf("AcceptBlock: %v", err)
	}
	if err := s.AcceptBlock(genesis); !errs.Is(err, errs.BlockAlreadyExists) {
		t.Fatalf("second AcceptBlock = %v, want errs.BlockAlreadyExists", err)
	}
}

func TestAcceptBlockRejectsBrokenChain(t *testing.T) {
	s := openStore(t)
	genesis := signedBlock(t, chainhash.Hash{}, 0, nil)
	if err := s.AcceptBlock(genesis); err != nil {
		t.Fatalf("AcceptBlock: %v", err)
	}

	wrongPrev := chainhash.Sum(chainhash.DomainBlockDigest, []byte("not-the-genesis"))
	b1 := signedBlock(t, wrongPrev, 1, nil)
	if err := s.AcceptBlock(b1); !errs.Is(err, errs.BlockDoesNotChain) {
		t.Fatalf("AcceptBlock(wrong prev) = %v, want errs.BlockDoesNotChain", err)
	}

	b2 := signedBlock(t, wrongPrev, 5, nil)
	if err := s.AcceptBlock(b2); !errs.Is(err, errs.BlockDoesNotChain) {
		t.Fatalf("AcceptBlock(height gap) = %v, want errs.BlockDoesNotChain", err)
	}
}

func TestAcceptBlockRejectsUnknownTransaction(t *testing.T) {
	s := openStore(t)
	missing := chainhash.Sum(chainhash.DomainTxHash, []byte("never-stored"))
	genesis := signedBlock(t, chainhash.Hash{}, 0, []chainhash.Hash{missing})
	if err := s.AcceptBlock(genesis); !errs.Is(err, errs.BlockTransactionsMismatch) {
		t.Fatalf("AcceptBlock = %v, want errs.BlockTransactionsMismatch", err)
	}
}

func TestAcceptBlockRejectsUnsortedTransactions(t *testing.T) {
	s := openStore(t)
	a := normalTxn(t, "a")
	b := normalTxn(t, "b")
	for _, tr := range []*txn.Normal{a, b} {
		if err := s.PutTransaction(tr); err != nil {
			t.Fatalf("PutTransaction: %v", err)
		}
	}
	ha, hb := a.Hash(), b.Hash()
	if ha.Less(hb) {
		ha, hb = hb, ha
	}
	blk := signedBlock(t, chainhash.Hash{}, 0, nil)
	blk.Transactions = []chainhash.Hash{ha, hb} // descending on purpose
	// Re-sign since the transaction set participates in every digest mode.
	sk, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	if err := blk.ProducerSign(sk); err != nil {
		t.Fatalf("ProducerSign: %v", err)
	}
	vsk, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	if err := blk.ValidatorSign(vsk); err != nil {
		t.Fatalf("ValidatorSign: %v", err)
	}
	if err := s.AcceptBlock(blk); !errs.Is(err, errs.BlockTxnOrder) {
		t.Fatalf("AcceptBlock = %v, want errs.BlockTxnOrder", err)
	}
}

func TestAcceptBlockRejectsDoubleSpend(t *testing.T) {
	s := openStore(t)
	n := normalTxn(t, "spend-once")
	if err := s.PutTransaction(n); err != nil {
		t.Fatalf("PutTransaction: %v", err)
	}

	genesis := signedBlock(t, chainhash.Hash{}, 0, []chainhash.Hash{n.Hash()})
	if err := s.AcceptBlock(genesis); err != nil {
		t.Fatalf("AcceptBlock(genesis): %v", err)
	}
	gh, _ := genesis.Hash()

	// A second transaction reusing the same key image.
	double := normalTxn(t, "spend-twice")
	double.Body.KeyImages = n.Body.KeyImages
	if err := s.PutTransaction(double); err != nil {
		t.Fatalf("PutTransaction (double): %v", err)
	}
	b1 := signedBlock(t, gh, 1, []chainhash.Hash{double.Hash()})
	if err := s.AcceptBlock(b1); err == nil {
		t.Fatalf("expected AcceptBlock to reject a reused key image")
	}
}

func TestTipOnEmptyStore(t *testing.T) {
	s := openStore(t)
	if _, _, err := s.Tip(); !errs.Is(err, errs.DBEmpty) {
		t.Fatalf("Tip on empty store = %v, want errs.DBEmpty", err)
	}
}

func TestGetBlockNotFound(t *testing.T) {
	s := openStore(t)
	h := chainhash.Sum(chainhash.DomainBlockDigest, []byte("missing"))
	if _, err := s.GetBlock(h); !errs.Is(err, errs.BlockNotFound) {
		t.Fatalf("GetBlock = %v, want errs.BlockNotFound", err)
	}
	if _, err := s.GetTransaction(h); !errs.Is(err, errs.TransactionNotFound) {
		t.Fatalf("GetTransaction = %v, want errs.TransactionNotFound", err)
	}
}
