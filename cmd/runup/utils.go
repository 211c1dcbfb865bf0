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
	"github.com/urfave/cli/v3"

	"github.com/runup-sh/runup/pkg/bootstrap"
	"github.com/runup-sh/runup/pkg/config"
)

const defaultAppURL = "http://localhost:8000"

var (
	projectDir  string = "."
	entrypoint  string
	pythonBin   string
	venvDir     string
	skipInstall bool
	promptEnv   bool
	openAfter   bool
	appURL      string = defaultAppURL

	dirFlag = &cli.StringFlag{
		Name:        "dir",
		Aliases:     []string{"d"},
		Usage:       "Project `DIR` holding the template, manifest, and entry point",
		Sources:     cli.EnvVars("RUNUP_DIR"),
		Value:       ".",
		Destination: &projectDir,
	}
	entrypointFlag = &cli.StringFlag{
		Name:        "entrypoint",
		Aliases:     []string{"e"},
		Usage:       "`FILE` to run as the application entry point",
		Sources:     cli.EnvVars("RUNUP_ENTRYPOINT"),
		Destination: &entrypoint,
	}
	pythonFlag = &cli.StringFlag{
		Name:        "python",
		Usage:       "Interpreter `BIN` used to create the virtual environment",
		Sources:     cli.EnvVars("RUNUP_PYTHON"),
		Destination: &pythonBin,
	}
	venvFlag = &cli.StringFlag{
		Name:        "venv",
		Usage:       "Virtual environment `DIR`, relative to the project",
		Sources:     cli.EnvVars("RUNUP_VENV"),
		Destination: &venvDir,
	}
	skipInstallFlag = &cli.BoolFlag{
		Name:        "skip-install",
		Usage:       "Skip the dependency install step",
		Destination: &skipInstall,
	}
	promptFlag = &cli.BoolFlag{
		Name:        "prompt",
		Usage:       "Prompt for env values instead of copying the template verbatim",
		Destination: &promptEnv,
	}
	openFlag = &cli.BoolFlag{
		Name:        "open",
		Usage:       "Open the application URL once it responds",
		Destination: &openAfter,
	}
	appURLFlag = &cli.StringFlag{
		Name:        "app-url",
		Usage:       "`URL` the application serves on, used with --open",
		Value:       defaultAppURL,
		Destination: &appURL,
	}

	runnerFlags = []cli.Flag{dirFlag, entrypointFlag, pythonFlag, venvFlag}

	jsonFlag = &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	}
	globalFlags = []cli.Flag{
		&cli.BoolFlag{
			Name:     "verbose",
			Required: false,
		},
	}
)

// newRunner builds a bootstrap runner from flags and the optional
// leading PROJECT_NAME argument. A first argument naming a registered
// project selects its directory; anything else is handed to the
// application. With no argument and no explicit --dir, the default
// project applies when one is set.
func newRunner(cmd *cli.Command) (*bootstrap.Runner, error) {
	opts := bootstrap.Options{
		Dir:         projectDir,
		Entrypoint:  entrypoint,
		VenvDir:     venvDir,
		Python:      pythonBin,
		SkipInstall: skipInstall,
		Verbose:     cmd.Bool("verbose"),
	}

	var project *config.ProjectConfig
	args := cmd.Args().Slice()
	if len(args) > 0 {
		if p, ok := resolveProject(args[0]); ok {
			project = p
			args = args[1:]
		}
	}
	if project == nil && !cmd.IsSet("dir") {
		if p, err := config.LoadDefaultProject(); err == nil {
			project = p
		}
	}
	if project != nil {
		opts.Dir = project.Dir
		if opts.Entrypoint == "" {
			opts.Entrypoint = project.Entrypoint
		}
		if opts.Python == "" {
			opts.Python = project.Python
		}
	}
	opts.AppArgs = args

	return bootstrap.New(opts)
}

func resolveProject(name string) (*config.ProjectConfig, bool) {
	p, err := config.LoadProject(name)
	if err != nil {
		return nil, false
	}
	return p, true
}
