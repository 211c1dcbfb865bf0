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
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/runup-sh/runup/pkg/bootstrap"
	"github.com/runup-sh/runup/pkg/util"
)

var (
	EnvCommands = []*cli.Command{
		{
			Name:      "env",
			Usage:     "Seed the env file from its template",
			UsageText: "runup env [PROJECT_NAME]",
			ArgsUsage: "[PROJECT_NAME]",
			Action:    seedEnv,
			Flags:     append([]cli.Flag{promptFlag}, runnerFlags...),
		},
	}
)

func seedEnv(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}

	if promptEnv {
		if err := r.InstantiateEnvFile(nil, huhPrompt(ctx)); err != nil {
			return err
		}
	} else if err := r.EnsureEnvFile(); err != nil {
		return err
	}

	vars, err := r.EnvFileVars()
	if err != nil {
		return err
	}
	fmt.Printf("Environment file has %d entries\n", len(vars))
	return nil
}

// huhPrompt asks for a single env value, defaulting to the template's
func huhPrompt(ctx context.Context) bootstrap.PromptFunc {
	return func(key string, value string) (string, error) {
		newValue := value
		err := huh.NewForm(huh.NewGroup(huh.NewInput().
			Title(key).
			Placeholder(value).
			Value(&newValue))).
			WithTheme(util.Theme).
			RunWithContext(ctx)
		return newValue, err
	}
}
