// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log centralizes the github.com/decred/slog backend construction
// and the per-subsystem logger registry. Each core package keeps one
// `var log = slog.Disabled` plus a `UseLogger(slog.Logger)` setter rather
// than importing this package directly; cmd/nyxd builds the backend here
// and calls every subsystem's UseLogger.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
)

// Backend is the process-wide slog backend, rebuilt by SetOutput once the
// application knows where logs should go (the --log-file option).
var Backend = slog.NewBackend(os.Stdout)

// Subsystem tags. cmd/nyxd registers a logger for every tag except
// TagWire, TagTxn and TagBlock: packages wire, txn and block do not log.
const (
	TagWire      = "WIRE"
	TagTxn       = "TXN "
	TagBlock     = "BLK "
	TagKVStore   = "KVDB"
	TagChain     = "CHAN"
	TagStaking   = "STAK"
	TagElection  = "ELCN"
	TagAddrMgr   = "ADXR"
	TagNetFabric = "FABR"
	TagP2P       = "P2P "
	TagHTTPAPI   = "HTTP"
)

// setters maps a subsystem tag to the UseLogger closure cmd/nyxd registers
// for it, so SetLogLevels and NewLoggers can reach every package without
// those packages importing this one (which would be circular).
var setters = map[string]func(slog.Logger){}

// Register lets a subsystem package announce its UseLogger function under
// tag; cmd/nyxd calls Register once per package at startup, then NewLoggers
// (or SetLogLevels) to actually wire and level every registered logger.
func Register(tag string, useLogger func(slog.Logger)) {
	setters[tag] = useLogger
}

// NewLoggers constructs one Backend.Logger per registered subsystem at
// levelStr and installs it via that subsystem's UseLogger.
func NewLoggers(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}
	for tag, set := range setters {
		l := Backend.Logger(tag)
		l.SetLevel(level)
		set(l)
	}
	return nil
}

// NumericLevelToString maps the CLI's `--log-level 0..6` integer scale
// onto slog's named levels (0=off ... 6=trace).
func NumericLevelToString(n int) string {
	switch {
	case n <= 0:
		return "off"
	case n == 1:
		return "critical"
	case n == 2:
		return "error"
	case n == 3:
		return "warn"
	case n == 4:
		return "info"
	case n == 5:
		return "debug"
	default:
		return "trace"
	}
}

// SetOutput redirects the backend to w (e.g. the --log-file the operator
// configured) in place of the stdout default.
func SetOutput(w io.Writer) {
	Backend = slog.NewBackend(w)
}
