// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package httpapi is the node's read-only HTTP façade: JSON lookups for
// blocks, transactions and peers, routed with github.com/go-chi/chi/v5.
package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/decred/slog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nyxchain/nyxd/addrmgr"
	"github.com/nyxchain/nyxd/block"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/txn"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// Store is the read-only subset of the node's persisted state the façade
// needs; cmd/nyxd supplies the chain store as the real implementation.
type Store interface {
	GetBlock(h chainhash.Hash) (*block.Block, error)
	GetBlockByHeight(index uint64) (*block.Block, error)
	GetTransaction(h chainhash.Hash) (txn.Transaction, error)
	Tip() (chainhash.Hash, uint64, error)
}

// Elector computes the upcoming round's producer and validator sets;
// cmd/nyxd supplies an implementation backed by the stake ledger and the
// election engine.
type Elector interface {
	Election() (producers, validators []*crypto.Point, err error)
}

// Server is the HTTP façade.
type Server struct {
	store   Store
	addrMgr *addrmgr.Manager
	elector Elector
	mux     *chi.Mux
}

// New builds the façade's route table. elector may be nil, in which case
// the election route reports the service unavailable.
func New(store Store, addrMgr *addrmgr.Manager, elector Elector) *Server {
	s := &Server{store: store, addrMgr: addrMgr, elector: elector, mux: chi.NewRouter()}
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(middleware.RequestID)

	s.mux.Get("/blocks/{hash}", s.handleGetBlock)
	s.mux.Get("/heights/{index}", s.handleGetBlockByHeight)
	s.mux.Get("/transactions/{hash}", s.handleGetTransaction)
	s.mux.Get("/peers", s.handleGetPeers)
	s.mux.Get("/tip", s.handleGetTip)
	s.mux.Get("/election", s.handleGetElection)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func writeError(w http.ResponseWriter, status int, err *errs.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func parseHash(s string) (chainhash.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return chainhash.Hash{}, errs.New(errs.JSONDeserializationError, "bad hash: "+err.Error())
	}
	h, err := chainhash.NewHash(b)
	if err != nil {
		return chainhash.Hash{}, errs.New(errs.JSONDeserializationError, err.Error())
	}
	return *h, nil
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	h, err := parseHash(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.(*errs.Error))
		return
	}
	b, err := s.store.GetBlock(h)
	if err != nil {
		writeError(w, http.StatusNotFound, errs.New(errs.BlockNotFound, err.Error()))
		return
	}
	writeJSON(w, b)
}

func (s *Server) handleGetBlockByHeight(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errs.New(errs.JSONDeserializationError, "bad height: "+err.Error()))
		return
	}
	b, err := s.store.GetBlockByHeight(index)
	if err != nil {
		writeError(w, http.StatusNotFound, errs.New(errs.BlockNotFound, err.Error()))
		return
	}
	writeJSON(w, b)
}

func (s *Server) handleGetTip(w http.ResponseWriter, r *http.Request) {
	hash, height, err := s.store.Tip()
	if err != nil {
		writeError(w, http.StatusNotFound, errs.New(errs.DBEmpty, err.Error()))
		return
	}
	writeJSON(w, struct {
		Hash   chainhash.Hash `json:"hash"`
		Height uint64         `json:"height"`
	}{hash, height})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	h, err := parseHash(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.(*errs.Error))
		return
	}
	t, err := s.store.GetTransaction(h)
	if err != nil {
		writeError(w, http.StatusNotFound, errs.New(errs.TransactionNotFound, err.Error()))
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	if s.elector == nil {
		writeError(w, http.StatusServiceUnavailable, errs.New(errs.GenericFailure, "election not available"))
		return
	}
	producers, validators, err := s.elector.Election()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, errs.New(errs.GenericFailure, err.Error()))
		return
	}
	writeJSON(w, struct {
		Producers  []*crypto.Point `json:"producers"`
		Validators []*crypto.Point `json:"validators"`
	}{producers, validators})
}

func (s *Server) handleGetPeers(w http.ResponseWriter, r *http.Request) {
	peers, err := s.addrMgr.Peers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, errs.New(errs.DBError, err.Error()))
		return
	}
	writeJSON(w, peers)
}
