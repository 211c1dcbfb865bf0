// Copyright 2025 Runup Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	runup "github.com/runup-sh/runup"
	"github.com/runup-sh/runup/pkg/bootstrap"
)

func main() {
	app := &cli.Command{
		Name:                   "runup",
		Usage:                  "Bootstrap and launch Python applications reproducibly",
		Description:            "Prepares a local execution environment for a Python application, then hands off control to it: the env file is seeded from its template, a virtual environment is created and reused, dependencies are installed from the manifest, and the entry point runs with its natural exit code.",
		Version:                runup.Version,
		EnableShellCompletion:  true,
		Suggest:                true,
		HideHelpCommand:        true,
		UseShortOptionHandling: true,
		Flags:                  globalFlags,
		ArgsUsage:              "[PROJECT_NAME]",
		// a bare `runup` performs the full sequence
		Action: runUp,
		Before: initLogger,
	}

	app.Commands = append(app.Commands, UpCommands...)
	app.Commands = append(app.Commands, EnvCommands...)
	app.Commands = append(app.Commands, CheckCommands...)
	app.Commands = append(app.Commands, ProjectCommands...)

	// Register cleanup hook for SIGINT, SIGTERM, SIGQUIT; the current
	// step's child process is killed through context cancellation
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := app.Run(ctx, os.Args); err != nil {
		// the application's exit status passes through unchanged
		var exitErr *bootstrap.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
	})
	if cmd.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return ctx, nil
}
