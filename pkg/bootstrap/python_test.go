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
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInterpreterMissingOverride(t *testing.T) {
	_, err := ResolveInterpreter("definitely-not-a-python-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-python-binary")
}

func TestEnsureVenvReusesExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, dir)
	require.NoError(t, os.MkdirAll(r.VenvPath(), 0755))

	// no interpreter resolution happens for an existing venv, so this
	// must succeed even with an impossible override
	r.opts.Python = "definitely-not-a-python-binary"
	assert.NoError(t, r.EnsureVenv(context.Background()))
}

func TestVenvPython(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, dir)

	if runtime.GOOS == "windows" {
		assert.Equal(t, filepath.Join(dir, DefaultVenvDir, "Scripts", "python.exe"), r.VenvPython())
	} else {
		assert.Equal(t, filepath.Join(dir, DefaultVenvDir, "bin", "python"), r.VenvPython())
	}
}

func TestLaunchEnv(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(t, dir)

	t.Setenv("PYTHONHOME", "/usr/lib/python-oops")
	t.Setenv("VIRTUAL_ENV", "/somewhere/else")
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("MY_APP_SETTING", "kept")

	env := r.LaunchEnv()

	var virtualEnv, path string
	for _, kv := range env {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PYTHONHOME":
			t.Error("PYTHONHOME must be dropped from the launch environment")
		case "VIRTUAL_ENV":
			virtualEnv = value
		case "PATH":
			path = value
		}
	}

	assert.Equal(t, r.VenvPath(), virtualEnv)
	assert.True(t, strings.HasPrefix(path, r.venvBinDir()+string(os.PathListSeparator)),
		"venv bin dir must be first on PATH, got %q", path)
	assert.Contains(t, path, "/usr/bin")
	assert.Contains(t, env, "MY_APP_SETTING=kept")

	// the parent environment is untouched
	assert.Equal(t, "/usr/lib/python-oops", os.Getenv("PYTHONHOME"))
}

func TestCommandExists(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix shell builtins")
	}
	assert.True(t, CommandExists("sh"))
	assert.False(t, CommandExists("definitely-not-a-real-command"))
}
