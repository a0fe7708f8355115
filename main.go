// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// crcengine - Generic bit-serial CRC calculator
//
// A CLI tool for computing, tracing and verifying CRCs of any width from
// 8 to 64 bits, and for checking CRC-protected frames on a serial or
// WebSocket link.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/crcengine/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
