// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"bytes"
	"testing"

	"github.com/decred/slog"
)

func TestNumericLevelToString(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{-1, "off"},
		{0, "off"},
		{1, "critical"},
		{2, "error"},
		{3, "warn"},
		{4, "info"},
		{5, "debug"},
		{6, "trace"},
		{99, "trace"},
	}
	for _, c := range cases {
		if got := NumericLevelToString(c.n); got != c.want {
			t.Errorf("NumericLevelToString(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestRegisterAndNewLoggersInstallsLevel(t *testing.T) {
	var installed slog.Logger
	Register("TEST", func(l slog.Logger) { installed = l })
	defer delete(setters, "TEST")

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(bytes.NewBuffer(nil))

	if err := NewLoggers("debug"); err != nil {
		t.Fatalf("NewLoggers: %v", err)
	}
	if installed == nil {
		t.Fatalf("UseLogger was never called for the registered tag")
	}
	if installed.Level() != slog.LevelDebug {
		t.Fatalf("installed level = %v, want %v", installed.Level(), slog.LevelDebug)
	}
}

func TestNewLoggersRejectsUnknownLevel(t *testing.T) {
	if err := NewLoggers("not-a-level"); err == nil {
		t.Fatalf("NewLoggers(bad level) unexpectedly succeeded")
	}
}
