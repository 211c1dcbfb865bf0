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
	"net/http"
	"time"

	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/runup-sh/runup/pkg/bootstrap"
	"github.com/runup-sh/runup/pkg/util"
)

var (
	UpCommands = []*cli.Command{
		{
			Name:      "up",
			Usage:     "Prepare the environment and launch the application",
			UsageText: "runup up [PROJECT_NAME]",
			ArgsUsage: "[PROJECT_NAME]",
			Action:    runUp,
			Flags:     append([]cli.Flag{skipInstallFlag, promptFlag, openFlag, appURLFlag}, runnerFlags...),
		},
		{
			Name:      "install",
			Usage:     "Prepare the environment without launching the application",
			UsageText: "runup install [PROJECT_NAME]",
			ArgsUsage: "[PROJECT_NAME]",
			Action:    runInstall,
			Flags:     append([]cli.Flag{promptFlag}, runnerFlags...),
		},
		{
			Name:      "run",
			Usage:     "Launch the application without re-installing dependencies",
			UsageText: "runup run [PROJECT_NAME]",
			ArgsUsage: "[PROJECT_NAME]",
			Action:    runOnly,
			Flags:     append([]cli.Flag{openFlag, appURLFlag}, runnerFlags...),
		},
	}
)

func runUp(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}

	if err := prepare(ctx, cmd, r); err != nil {
		return err
	}

	if openAfter {
		go openWhenUp(ctx, appURL)
	}
	return r.Launch(ctx, r.LaunchEnv())
}

func runInstall(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	if err := prepare(ctx, cmd, r); err != nil {
		return err
	}
	fmt.Println("Environment ready in [" + util.Accented(r.VenvPath()) + "]")
	return nil
}

func runOnly(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	if err := r.EnsureEnvFile(); err != nil {
		return err
	}
	if err := util.Await("Preparing virtual environment", ctx, r.EnsureVenv); err != nil {
		return err
	}
	if openAfter {
		go openWhenUp(ctx, appURL)
	}
	return r.Launch(ctx, r.LaunchEnv())
}

// prepare runs the sequence up to and including the install step.
func prepare(ctx context.Context, cmd *cli.Command, r *bootstrap.Runner) error {
	if promptEnv {
		err := r.InstantiateEnvFile(nil, huhPrompt(ctx))
		if err != nil && !errors.Is(err, bootstrap.ErrEnvFileExists) {
			return err
		}
	} else if err := r.EnsureEnvFile(); err != nil {
		return err
	}

	if err := util.Await("Preparing virtual environment", ctx, r.EnsureVenv); err != nil {
		return err
	}

	if skipInstall {
		log.Debug("skipping dependency install")
		return nil
	}
	env := r.LaunchEnv()
	return util.Await("Installing dependencies", ctx, func(ctx context.Context) error {
		return r.InstallDeps(ctx, env)
	})
}

// openWhenUp polls the application URL and opens a browser once it
// answers, giving up quietly when the app never comes up.
func openWhenUp(ctx context.Context, url string) {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 30; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if err := browser.OpenURL(url); err != nil {
			log.WithError(err).Debug("failed to open browser")
		}
		return
	}
}
