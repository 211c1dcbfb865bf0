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
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirements(t *testing.T) {
	dir := t.TempDir()
	manifest := `# web stack
fastapi==0.110.0
uvicorn[standard]==0.29.0
sqlalchemy>=2.0,<3
apscheduler~=3.10

# options and includes are pip's business
-r extra-requirements.txt
--index-url https://pypi.org/simple

requests==2.31.0 ; python_version < "3.12"
openai==1.14.2  # pinned for stability
`
	path := filepath.Join(dir, RequirementsFile)
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	reqs, err := ParseRequirements(path)
	require.NoError(t, err)

	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"fastapi", "uvicorn", "sqlalchemy", "apscheduler", "requests", "openai"}, names)

	assert.Equal(t, "standard", reqs[1].Extras)
	assert.Equal(t, "==0.29.0", reqs[1].Specifier)
	assert.Equal(t, ">=2.0,<3", reqs[2].Specifier)

	// markers and comments are stripped from the specifier
	assert.Equal(t, "==2.31.0", reqs[4].Specifier)
	assert.Equal(t, "==1.14.2", reqs[5].Specifier)
}

func TestPinnedVersion(t *testing.T) {
	tests := []struct {
		specifier string
		version   string
		pinned    bool
	}{
		{"==1.2.3", "1.2.3", true},
		{"== 1.2.3", "1.2.3", true},
		{">=1.2.3", "", false},
		{"~=1.2", "", false},
		{"==1.2.*", "", false}, // wildcard pins are not exact
		{"==1.2.3,<2", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run("spec "+tt.specifier, func(t *testing.T) {
			version, ok := Requirement{Name: "pkg", Specifier: tt.specifier}.PinnedVersion()
			assert.Equal(t, tt.pinned, ok)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "python-dotenv", NormalizeName("python_dotenv"))
	assert.Equal(t, "ruamel-yaml", NormalizeName("ruamel.yaml"))
	assert.Equal(t, "fastapi", NormalizeName("FastAPI"))
}

func TestParsePyprojectDependencies(t *testing.T) {
	dir := t.TempDir()
	pyproject := `[project]
name = "employee-intel"
version = "1.0.0"
dependencies = [
    "fastapi==0.110.0",
    "pydantic-settings>=2",
    "uvicorn[standard]",
]
`
	path := filepath.Join(dir, PyprojectFile)
	require.NoError(t, os.WriteFile(path, []byte(pyproject), 0644))

	reqs, err := ParsePyprojectDependencies(path)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "fastapi", reqs[0].Name)
	pin, ok := reqs[0].PinnedVersion()
	assert.True(t, ok)
	assert.Equal(t, "0.110.0", pin)
	assert.Equal(t, "pydantic-settings", reqs[1].Name)
	assert.Equal(t, "uvicorn", reqs[2].Name)
}

func TestRequirementsPrefersManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RequirementsFile), []byte("requests==2.31.0\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PyprojectFile), []byte("[project]\nname = \"x\"\ndependencies = [\"flask\"]\n"), 0644))

	r := newTestRunner(t, dir)
	reqs, err := r.Requirements()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "requests", reqs[0].Name)
}

func TestRequirementsMissingManifest(t *testing.T) {
	r := newTestRunner(t, t.TempDir())
	_, err := r.Requirements()
	assert.Error(t, err)
}

func TestFreezeCommand(t *testing.T) {
	r := newTestRunner(t, t.TempDir())
	// a bare directory is assumed pip-managed
	assert.Equal(t, ProjectTypePythonPip, r.ProjectType())

	name, args := r.freezeCommand()
	assert.Equal(t, r.VenvPython(), name)
	assert.Equal(t, []string{"-m", "pip", "freeze"}, args)
}

func TestFreezeCommandUV(t *testing.T) {
	// uv venvs have no pip module, so freezing goes through uv itself
	if runtime.GOOS == "windows" {
		t.Skip("fake uv binary relies on shell scripts")
	}
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "uv"), []byte("#!/bin/sh\nexit 0\n"), 0755))
	t.Setenv("PATH", bin)

	r := newTestRunner(t, t.TempDir())
	r.projectType = ProjectTypePythonUV
	name, args := r.freezeCommand()
	assert.Equal(t, "uv", name)
	assert.Equal(t, []string{"pip", "freeze"}, args)
}

func TestFreezeCommandUVMissingBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH manipulation relies on unix conventions")
	}
	t.Setenv("PATH", t.TempDir())

	r := newTestRunner(t, t.TempDir())
	r.projectType = ProjectTypePythonUV
	name, args := r.freezeCommand()
	assert.Equal(t, r.VenvPython(), name)
	assert.Equal(t, []string{"-m", "pip", "freeze"}, args)
}

func TestVersionsEqual(t *testing.T) {
	assert.True(t, versionsEqual("1.2.3", "1.2.3"))
	assert.True(t, versionsEqual("1.2.0", "1.2"))
	assert.False(t, versionsEqual("1.2.3", "1.2.4"))
	// not semver, falls back to string comparison
	assert.True(t, versionsEqual("1!2.0", "1!2.0"))
	assert.False(t, versionsEqual("2.0.post1", "2.0.post2"))
}
