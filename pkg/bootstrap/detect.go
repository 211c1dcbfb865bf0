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
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/runup-sh/runup/pkg/util"
)

type ProjectType string

const (
	ProjectTypePythonPip ProjectType = "python.pip"
	ProjectTypePythonUV  ProjectType = "python.uv"
	ProjectTypeUnknown   ProjectType = "unknown"
)

func (p ProjectType) IsPython() bool {
	return p == ProjectTypePythonPip || p == ProjectTypePythonUV
}

func (p ProjectType) Installer() string {
	switch p {
	case ProjectTypePythonUV:
		return "uv"
	case ProjectTypePythonPip:
		return "pip"
	default:
		return ""
	}
}

// DetectProjectType determines how dependencies should be installed
// by checking for manifest and lock files, and pyproject tool tables.
func DetectProjectType(dir string) (ProjectType, error) {
	// uv.lock is the most definitive UV indicator
	if util.FileExists(dir, "uv.lock") {
		return ProjectTypePythonUV, nil
	}

	// other lock files are treated as pip-compatible
	if util.FileExists(dir, "poetry.lock") || util.FileExists(dir, "Pipfile.lock") || util.FileExists(dir, "pdm.lock") {
		return ProjectTypePythonPip, nil
	}

	// classic pip setup
	if util.FileExists(dir, RequirementsFile) {
		return ProjectTypePythonPip, nil
	}

	if util.FileExists(dir, PyprojectFile) {
		data, err := os.ReadFile(filepath.Join(dir, PyprojectFile))
		if err == nil {
			var doc map[string]any
			if err := toml.Unmarshal(data, &doc); err == nil {
				if tool, ok := doc["tool"].(map[string]any); ok {
					if _, hasUv := tool["uv"]; hasUv {
						return ProjectTypePythonUV, nil
					}
					if _, hasPoetry := tool["poetry"]; hasPoetry {
						return ProjectTypePythonPip, nil
					}
					if _, hasPdm := tool["pdm"]; hasPdm {
						return ProjectTypePythonPip, nil
					}
					if _, hasHatch := tool["hatch"]; hasHatch {
						return ProjectTypePythonPip, nil
					}
				}
				if isUVByContent(string(data)) {
					return ProjectTypePythonUV, nil
				}
			}
		}
		// Default to pip if pyproject.toml is present but not informative
		return ProjectTypePythonPip, nil
	}

	return ProjectTypeUnknown, errors.New("project type could not be identified; expected requirements.txt, pyproject.toml, or lock files")
}

// isUVByContent identifies UV projects by pyproject.toml content
// without misclassifying setuptools or poetry projects.
func isUVByContent(content string) bool {
	return strings.Contains(content, "[dependency-groups]") ||
		strings.Contains(content, "uv sync") ||
		strings.Contains(content, "[tool.uv]")
}
