// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command nyxd is the Nyx full node process entry point:
// parses CLI options, opens the KV store, wires the stake ledger, election
// engine, peer database, message fabric and P2P node, starts the HTTP
// façade, and blocks on the cooperative shutdown fabric until interrupted.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/nyxchain/nyxd/addrmgr"
	"github.com/nyxchain/nyxd/chain"
	"github.com/nyxchain/nyxd/config"
	"github.com/nyxchain/nyxd/election"
	"github.com/nyxchain/nyxd/httpapi"
	"github.com/nyxchain/nyxd/internal/signal"
	"github.com/nyxchain/nyxd/kvstore"
	"github.com/nyxchain/nyxd/log"
	"github.com/nyxchain/nyxd/netfabric"
	"github.com/nyxchain/nyxd/p2p"
	"github.com/nyxchain/nyxd/staking"
)

// version is the nyxd release string, overridden at build time with
// -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	var opts config.Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "nyxd - the Nyx full node"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if opts.Version {
		fmt.Printf("nyxd version %s\n", version)
		return 0
	}
	if opts.Credits {
		printCredits()
		return 0
	}

	logFile, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	registerLoggers()
	if err := log.NewLoggers(log.NumericLevelToString(opts.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "log level:", err)
		return 1
	}

	// Permanent candidates are genesis parameters: they come in through
	// --permanent-candidate and hold a producer and validator seat in every
	// election, so a malformed key is a startup failure, not a skip.
	for _, s := range opts.PermanentCandidateKeys {
		raw, derr := hex.DecodeString(s)
		if derr != nil || len(raw) != 32 {
			fmt.Fprintf(os.Stderr, "bad permanent candidate key %q: want 32 hex-encoded bytes\n", s)
			return 1
		}
		config.PermanentCandidates = append(config.PermanentCandidates, raw)
	}
	if n := len(config.PermanentCandidates); n > 0 && n < config.MinimumPermanentCandidates {
		fmt.Fprintf(os.Stderr, "%d permanent candidates configured, a network needs at least %d\n",
			n, config.MinimumPermanentCandidates)
		return 1
	}

	interrupt := signal.Global()
	interrupt.Listen()

	env, err := kvstore.Open(opts.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open data environment:", err)
		return 1
	}
	defer env.Close()

	addrMgr, err := addrmgr.Open(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open peer database:", err)
		return 1
	}

	stakeLedger := staking.Open(env)
	chainStore := chain.Open(env)

	interruptCtx := interrupt.Context()
	notifier, err := netfabric.NewPublisher(interruptCtx,
		fmt.Sprintf("tcp://%s:%d", "0.0.0.0", config.DefaultNotifyPort))
	if err != nil {
		fmt.Fprintln(os.Stderr, "bind notifier:", err)
		return 1
	}
	defer notifier.Close()

	node, err := p2p.New(p2p.Config{
		BindAddr:      "0.0.0.0",
		Port:          opts.Port,
		OperatorSeeds: opts.SeedNodes,
		SeedMode:      opts.SeedMode,
		ProxyAddr:     opts.ProxyAddr,
	}, addrMgr, gossipHandler(chainStore, stakeLedger, notifier))
	if err != nil {
		fmt.Fprintln(os.Stderr, "construct p2p node:", err)
		return 1
	}

	if err := node.Start(interruptCtx); err != nil {
		fmt.Fprintln(os.Stderr, "p2p startup:", err)
		return 1
	}

	httpServer := &http.Server{
		Addr:    opts.HTTPAddr,
		Handler: httpapi.New(chainStore, addrMgr, nodeElector{chain: chainStore, stake: stakeLedger}),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "http façade:", err)
		}
	}()

	<-interrupt.Done()

	_ = httpServer.Shutdown(context.Background())
	node.Shutdown()

	return 0
}

// registerLoggers wires every subsystem's UseLogger against package log's
// backend, one call per subsystem.
func registerLoggers() {
	log.Register(log.TagKVStore, kvstore.UseLogger)
	log.Register(log.TagChain, chain.UseLogger)
	log.Register(log.TagStaking, staking.UseLogger)
	log.Register(log.TagElection, election.UseLogger)
	log.Register(log.TagAddrMgr, addrmgr.UseLogger)
	log.Register(log.TagNetFabric, netfabric.UseLogger)
	log.Register(log.TagP2P, p2p.UseLogger)
	log.Register(log.TagHTTPAPI, httpapi.UseLogger)
}

func printCredits() {
	fmt.Println("nyxd - the Nyx full node")
	fmt.Println("Copyright (c) 2021-2026 The Nyx developers")
	fmt.Println("Licensed under the ISC license.")
}
