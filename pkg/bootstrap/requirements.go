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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/runup-sh/runup/pkg/util"
)

// Requirement is one declared package from the dependency manifest.
type Requirement struct {
	Name      string `json:"name"`
	Extras    string `json:"extras,omitempty"`
	Specifier string `json:"specifier,omitempty"`
}

var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*([=~><!].*)?$`)

// PinnedVersion returns the exact version when the requirement uses
// an `==` pin.
func (q Requirement) PinnedVersion() (string, bool) {
	spec := strings.TrimSpace(q.Specifier)
	if !strings.HasPrefix(spec, "==") {
		return "", false
	}
	version := strings.TrimSpace(strings.TrimPrefix(spec, "=="))
	// wildcard pins and pins combined with further constraints are
	// not exact
	if version == "" || strings.ContainsAny(version, ",<>~!*") {
		return "", false
	}
	return version, true
}

// NormalizeName lowers a package name the way package indexes do, so
// Foo_Bar and foo.bar compare equal to foo-bar.
func NormalizeName(name string) string {
	lower := strings.ToLower(name)
	lower = strings.ReplaceAll(lower, "_", "-")
	return strings.ReplaceAll(lower, ".", "-")
}

func parseRequirementLine(line string) (Requirement, bool) {
	// strip inline comments and environment markers
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Requirement{}, false
	}

	matches := requirementPattern.FindStringSubmatch(line)
	if matches == nil {
		return Requirement{}, false
	}
	return Requirement{
		Name:      matches[1],
		Extras:    strings.Trim(matches[2], "[]"),
		Specifier: strings.TrimSpace(matches[3]),
	}, true
}

// ParseRequirements reads a pip requirements manifest. Comment lines,
// blank lines, and pip options (-r, -e, --index-url, ...) are
// skipped; pip itself still honors them during install.
func ParseRequirements(path string) ([]Requirement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reqs []Requirement
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if req, ok := parseRequirementLine(line); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs, scanner.Err()
}

type pyprojectDoc struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// ParsePyprojectDependencies reads [project].dependencies from a
// pyproject.toml manifest.
func ParsePyprojectDependencies(path string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc pyprojectDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	var reqs []Requirement
	for _, dep := range doc.Project.Dependencies {
		if req, ok := parseRequirementLine(dep); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

// Requirements loads the declared dependencies of the project,
// preferring the requirements manifest over pyproject.toml.
func (r *Runner) Requirements() ([]Requirement, error) {
	if util.FileExists(r.opts.Dir, RequirementsFile) {
		return ParseRequirements(filepath.Join(r.opts.Dir, RequirementsFile))
	}
	if util.FileExists(r.opts.Dir, PyprojectFile) {
		return ParsePyprojectDependencies(filepath.Join(r.opts.Dir, PyprojectFile))
	}
	return nil, fmt.Errorf("no %s or %s found in %s", RequirementsFile, PyprojectFile, r.opts.Dir)
}

// VerifyResult reports whether one pinned requirement resolves in the
// isolated environment.
type VerifyResult struct {
	Requirement
	Installed string `json:"installed"`
	Satisfied bool   `json:"satisfied"`
}

// freezeCommand returns the command that lists installed packages.
// uv-managed environments ship without pip, so they are frozen
// through uv itself.
func (r *Runner) freezeCommand() (string, []string) {
	if r.projectType == ProjectTypePythonUV && CommandExists("uv") {
		return "uv", []string{"pip", "freeze"}
	}
	return r.VenvPython(), []string{"-m", "pip", "freeze"}
}

// VerifyPinned compares every `==` pin in the manifest against the
// packages actually installed in the venv, per `pip freeze`.
func (r *Runner) VerifyPinned(ctx context.Context, env []string) ([]VerifyResult, error) {
	reqs, err := r.Requirements()
	if err != nil {
		return nil, err
	}

	name, args := r.freezeCommand()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = env
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list installed packages: %w", err)
	}

	installed := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		name, version, found := strings.Cut(strings.TrimSpace(scanner.Text()), "==")
		if found {
			installed[NormalizeName(name)] = version
		}
	}

	var results []VerifyResult
	for _, req := range reqs {
		pin, ok := req.PinnedVersion()
		if !ok {
			continue
		}
		got, present := installed[NormalizeName(req.Name)]
		results = append(results, VerifyResult{
			Requirement: req,
			Installed:   got,
			Satisfied:   present && versionsEqual(pin, got),
		})
	}
	return results, nil
}

// versionsEqual compares two version strings semantically, falling
// back to string equality for versions semver cannot parse (post and
// epoch releases).
func versionsEqual(want, got string) bool {
	wantVer, err1 := semver.NewVersion(want)
	gotVer, err2 := semver.NewVersion(got)
	if err1 != nil || err2 != nil {
		return want == got
	}
	return wantVer.Equal(gotVer)
}
