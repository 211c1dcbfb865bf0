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

// Package bootstrap prepares a reproducible local execution
// environment for a Python application and hands off control to it:
// env file from template, virtual environment, dependency install,
// launch. Every step is an idempotent short-circuit on existing
// state, and the first failing step aborts the run.
package bootstrap

import (
	"context"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const (
	EnvFile           = ".env"
	EnvExampleFile    = ".env.example"
	RequirementsFile  = "requirements.txt"
	PyprojectFile     = "pyproject.toml"
	TaskFile          = "taskfile.yaml"
	DefaultEntrypoint = "main.py"
	DefaultVenvDir    = ".venv"
)

type Options struct {
	// Dir is the project directory holding the template, manifest,
	// and entry point. Defaults to the working directory.
	Dir string
	// Entrypoint is the file whose execution constitutes running the
	// application. Defaults to main.py.
	Entrypoint string
	// VenvDir is the isolated environment directory, relative to Dir.
	// Defaults to .venv.
	VenvDir string
	// Python overrides interpreter selection for venv creation.
	Python string
	// SkipInstall skips the dependency install step.
	SkipInstall bool
	// AppArgs are passed through to the entry point.
	AppArgs []string
	// Verbose forwards subprocess output instead of discarding it.
	Verbose bool
}

// Runner executes the bootstrap sequence against a single project
// directory. It holds no open resources and is not safe for
// concurrent use against the same directory.
type Runner struct {
	opts        Options
	projectType ProjectType
}

func New(opts Options) (*Runner, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	abs, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, err
	}
	opts.Dir = abs
	if opts.Entrypoint == "" {
		opts.Entrypoint = DefaultEntrypoint
	}
	if opts.VenvDir == "" {
		opts.VenvDir = DefaultVenvDir
	}

	// Unknown is tolerated here: a bare directory still gets an env
	// file and a venv, and the install step reports the missing
	// manifest itself.
	projectType, err := DetectProjectType(opts.Dir)
	if err != nil {
		log.WithField("dir", opts.Dir).Debug("project type not identified, assuming pip")
		projectType = ProjectTypePythonPip
	}

	return &Runner{
		opts:        opts,
		projectType: projectType,
	}, nil
}

func (r *Runner) Dir() string              { return r.opts.Dir }
func (r *Runner) Entrypoint() string       { return r.opts.Entrypoint }
func (r *Runner) ProjectType() ProjectType { return r.projectType }

// VenvPath returns the absolute path of the isolated environment
// directory.
func (r *Runner) VenvPath() string {
	return filepath.Join(r.opts.Dir, r.opts.VenvDir)
}

// Run performs the full sequence: env file, venv, install, launch.
// The returned error is the first step failure, or an *ExitError
// carrying the application's exit code once launched.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.EnsureEnvFile(); err != nil {
		return err
	}
	if err := r.EnsureVenv(ctx); err != nil {
		return err
	}
	env := r.LaunchEnv()
	if !r.opts.SkipInstall {
		if err := r.InstallDeps(ctx, env); err != nil {
			return err
		}
	}
	return r.Launch(ctx, env)
}
