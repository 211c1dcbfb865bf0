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

package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ExitError carries the application's exit code up to the process
// boundary unchanged.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("application exited with code %d", e.Code)
}

// InstallDeps installs the declared dependencies into the isolated
// environment. It always runs, even against a pre-existing venv, so
// manifest changes are reflected before launch. Failure is fatal to
// the sequence.
func (r *Runner) InstallDeps(ctx context.Context, env []string) error {
	if HasTask(r.opts.Dir, TaskInstall) {
		log.Infof("installing dependencies via %s task %q", TaskFile, TaskInstall)
		run, err := NewTask(ctx, r.opts.Dir, TaskInstall, r.opts.Verbose)
		if err != nil {
			return fmt.Errorf("failed to set up %s: %w", TaskFile, err)
		}
		if err := run(); err != nil {
			return fmt.Errorf("dependency install failed: %w", err)
		}
		return nil
	}

	name, args := r.installCommand()
	log.Infof("installing dependencies with %s", name)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start installer: %w", err)
	}

	// forward installer output line by line; stderr is kept so a
	// failure can report the installer's own diagnostic
	var diagnostic []string
	eg := errgroup.Group{}
	eg.Go(func() error {
		return scanLines(stdout, func(line string) {
			log.Debug(line)
		})
	})
	eg.Go(func() error {
		return scanLines(stderr, func(line string) {
			log.Debug(line)
			diagnostic = append(diagnostic, line)
			if len(diagnostic) > 20 {
				diagnostic = diagnostic[1:]
			}
		})
	})

	scanErr := eg.Wait()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("dependency install failed: %w\n%s", err, strings.Join(diagnostic, "\n"))
	}
	return scanErr
}

func (r *Runner) installCommand() (string, []string) {
	if r.projectType == ProjectTypePythonUV && CommandExists("uv") {
		return "uv", []string{"sync"}
	}
	return r.VenvPython(), []string{"-m", "pip", "install", "-r", RequirementsFile}
}

func scanLines(reader io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}

// Launch runs the entry point inside the isolated environment with
// inherited stdio. The child's exit status is surfaced as an
// *ExitError rather than interpreted; a missing entry point is
// reported by the interpreter itself.
func (r *Runner) Launch(ctx context.Context, env []string) error {
	if HasTask(r.opts.Dir, TaskDev) {
		log.Infof("launching via %s task %q", TaskFile, TaskDev)
		run, err := NewTask(ctx, r.opts.Dir, TaskDev, true)
		if err != nil {
			return fmt.Errorf("failed to set up %s: %w", TaskFile, err)
		}
		return run()
	}

	args := append([]string{r.opts.Entrypoint}, r.opts.AppArgs...)
	log.Infof("launching %s", r.opts.Entrypoint)

	cmd := exec.CommandContext(ctx, r.VenvPython(), args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", r.opts.Entrypoint, err)
	}
	return nil
}
