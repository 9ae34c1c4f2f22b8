// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config holds the process-wide immutable constants and the
// jessevdk/go-flags-tagged CLI surface that feeds cmd/nyxd.
package config

import (
	"time"
)

// Timing and protocol constants.
const (
	ThreadPollingInterval = 50 * time.Millisecond
	DefaultConnTimeout    = 2000 * time.Millisecond

	P2PVersion     = 1
	MinimumVersion = 1

	KeepaliveInterval    = 30 * time.Second
	PeerExchangeInterval = 120 * time.Second
	ConnMgrInterval      = 30 * time.Second

	MaximumPeersExchanged = 200
	PeerPruneTime         = 86400 * time.Second

	DefaultP2PPort    = 12897
	DefaultNodePort   = 12898
	DefaultWalletPort = 18070
	DefaultNotifyPort = 12899

	DefaultExtraConnections = 8

	ElectorTargetCount    = 10
	ValidatorThresholdPct = 60

	RingSize = 512

	PublicAddressPrefix = 0x6bb3b1d
)

// Options is the nyxd CLI surface.
type Options struct {
	DBPath                 string   `long:"db-path" description:"path to the LMDB/MDBX data environment" default:"~/.nyxd/data"`
	Port                   uint16   `long:"port" description:"P2P listen port" default:"12897"`
	SeedNodes              []string `long:"seed-node" description:"host:port of a seed node; may be repeated"`
	LogFile                string   `long:"log-file" description:"path to the log file" default:"~/.nyxd/nyxd.log"`
	LogLevel               int      `long:"log-level" description:"verbosity 0 (off) through 6 (trace)" default:"3"`
	SeedMode               bool     `long:"seed" description:"run as a seed node (proceed at startup even with zero peers)"`
	PermanentCandidateKeys []string `long:"permanent-candidate" description:"hex public signing key of a permanent election candidate; may be repeated, a network needs at least three"`
	ProxyAddr              string   `long:"proxy" description:"optional host:port of a SOCKS5 proxy for outbound P2P dials"`
	HTTPAddr               string   `long:"http-addr" description:"bind address for the read-only HTTP facade" default:"127.0.0.1:8080"`
	Version                bool     `long:"version" description:"display version information and exit"`
	Credits                bool     `long:"credits" description:"display licensing credits and exit"`
}

// DefaultConnectionCount returns the target out-degree: the number of
// compiled-in/operator seeds plus the fixed extra budget.
func DefaultConnectionCount(seedCount int) int {
	return seedCount + DefaultExtraConnections
}

// PermanentCandidates is the fixed set of public keys unconditionally
// included in every election result, guaranteeing liveness when organic
// stake is insufficient; a network needs at least three. They are genesis
// parameters, so cmd/nyxd fills this at startup from the
// --permanent-candidate options rather than compiling in keys no mainnet
// has fixed yet. Each entry consumes a producer and a validator slot in
// every election.
var PermanentCandidates [][]byte

// MinimumPermanentCandidates is the smallest permanent set a network can
// launch with.
const MinimumPermanentCandidates = 3
