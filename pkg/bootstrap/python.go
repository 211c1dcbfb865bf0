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
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/runup-sh/runup/pkg/util"
)

// Interpreter is the binary used to create the virtual environment,
// with any leading arguments the launcher form requires.
type Interpreter struct {
	Path string
	Args []string
}

func (i Interpreter) String() string {
	if len(i.Args) == 0 {
		return i.Path
	}
	return i.Path + " " + strings.Join(i.Args, " ")
}

// ResolveInterpreter selects the interpreter for venv creation. The
// version-dispatching `py` launcher wins when present on PATH,
// otherwise the directly named binaries are tried in order.
func ResolveInterpreter(override string) (Interpreter, error) {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return Interpreter{}, fmt.Errorf("python interpreter %q not found: %w", override, err)
		}
		return Interpreter{Path: path}, nil
	}
	if path, err := exec.LookPath("py"); err == nil {
		return Interpreter{Path: path, Args: []string{"-3"}}, nil
	}
	if path, err := exec.LookPath("python3"); err == nil {
		return Interpreter{Path: path}, nil
	}
	if path, err := exec.LookPath("python"); err == nil {
		return Interpreter{Path: path}, nil
	}
	return Interpreter{}, errors.New("no python interpreter found on PATH, install python3 or the py launcher")
}

// EnsureVenv creates the isolated environment when its directory is
// absent. An existing directory is reused without validation.
func (r *Runner) EnsureVenv(ctx context.Context) error {
	venv := r.VenvPath()
	if util.DirExists(venv) {
		log.Debugf("virtual environment %s present, reusing it", venv)
		return nil
	}

	interp, err := ResolveInterpreter(r.opts.Python)
	if err != nil {
		return err
	}
	log.Infof("creating virtual environment in %s using %s", r.opts.VenvDir, interp)

	args := append(append([]string{}, interp.Args...), "-m", "venv", r.opts.VenvDir)
	cmd := exec.CommandContext(ctx, interp.Path, args...)
	cmd.Dir = r.opts.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create virtual environment: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// VenvPython returns the interpreter inside the virtual environment.
func (r *Runner) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(r.VenvPath(), "Scripts", "python.exe")
	}
	return filepath.Join(r.VenvPath(), "bin", "python")
}

func (r *Runner) venvBinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(r.VenvPath(), "Scripts")
	}
	return filepath.Join(r.VenvPath(), "bin")
}

// LaunchEnv computes the activation environment passed to child
// processes: VIRTUAL_ENV set, the venv bin directory first on PATH,
// PYTHONHOME dropped. The parent environment is never mutated, so
// activation cannot outlive the run.
func (r *Runner) LaunchEnv() []string {
	venv := r.VenvPath()

	env := make([]string, 0, len(os.Environ())+2)
	path := os.Getenv("PATH")
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "PYTHONHOME", "VIRTUAL_ENV", "PATH":
			continue
		}
		env = append(env, kv)
	}
	env = append(env, "VIRTUAL_ENV="+venv)
	if path == "" {
		env = append(env, "PATH="+r.venvBinDir())
	} else {
		env = append(env, "PATH="+r.venvBinDir()+string(os.PathListSeparator)+path)
	}
	return env
}

// Determine if `cmd` is a binary in PATH or a known alias
func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return (err == nil || CommandIsAlias(cmd))
}

// Determine if `cmd` is a known alias
func CommandIsAlias(cmd string) bool {
	if runtime.GOOS == "windows" {
		return false
	}
	out, err := exec.Command("alias", cmd).Output()
	if err != nil {
		return false
	}
	output := strings.TrimSpace(string(out))
	return strings.HasPrefix(output, cmd+"=")
}
