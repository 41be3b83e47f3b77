// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xmidt-org/resourcetiming/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const applicationName = "timingd"

// run starts the collector and blocks until a termination signal arrives or the server fails
func run(arguments []string, signals <-chan os.Signal) int {
	var (
		logger *zap.Logger
		s      *server.Server
		app    = newApp(arguments, fx.Populate(&logger, &s))
	)

	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to start %s: %s\n", applicationName, err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to start %s: %s\n", applicationName, err)
		return 1
	}

	stopped := make(chan os.Signal, 1)
	go func() {
		stopped <- server.SignalWait(logger, signals, os.Interrupt, syscall.SIGTERM)
	}()

	exitCode := 0
	select {
	case sig := <-stopped:
		logger.Info("exiting due to signal", zap.Any("signal", sig))
	case <-s.Done():
		if err := s.Err(); err != nil {
			exitCode = 2
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("unclean shutdown", zap.Error(err))
		exitCode = 3
	}

	return exitCode
}

func main() {
	signals := make(chan os.Signal, 10)
	signal.Notify(signals)
	os.Exit(run(os.Args[1:], signals))
}
