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
	"testing"
)

func TestDetectProjectType(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		expected ProjectType
		wantErr  bool
	}{
		{
			name:     "requirements.txt",
			files:    map[string]string{"requirements.txt": "fastapi==0.110.0\n"},
			expected: ProjectTypePythonPip,
		},
		{
			name:     "uv.lock wins over requirements",
			files:    map[string]string{"uv.lock": "", "requirements.txt": "fastapi\n"},
			expected: ProjectTypePythonUV,
		},
		{
			name:     "poetry lock treated as pip-compatible",
			files:    map[string]string{"poetry.lock": ""},
			expected: ProjectTypePythonPip,
		},
		{
			name: "pyproject with tool.uv",
			files: map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n\n[tool.uv]\ndev-dependencies = []\n"},
			expected: ProjectTypePythonUV,
		},
		{
			name: "pyproject with tool.poetry",
			files: map[string]string{"pyproject.toml": "[tool.poetry]\nname = \"x\"\nversion = \"0.1.0\"\n"},
			expected: ProjectTypePythonPip,
		},
		{
			name: "pyproject with dependency-groups",
			files: map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n\n[dependency-groups]\ndev = []\n"},
			expected: ProjectTypePythonUV,
		},
		{
			name: "plain pyproject defaults to pip",
			files: map[string]string{"pyproject.toml": "[project]\nname = \"x\"\ndependencies = [\"fastapi\"]\n"},
			expected: ProjectTypePythonPip,
		},
		{
			name:     "empty directory",
			files:    map[string]string{},
			expected: ProjectTypeUnknown,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			got, err := DetectProjectType(dir)
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DetectProjectType = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestProjectTypeIsPython(t *testing.T) {
	if !ProjectTypePythonPip.IsPython() {
		t.Error("pip type should be python")
	}
	if !ProjectTypePythonUV.IsPython() {
		t.Error("uv type should be python")
	}
	if ProjectTypeUnknown.IsPython() {
		t.Error("unknown type should not be python")
	}
}

func TestProjectTypeInstaller(t *testing.T) {
	if got := ProjectTypePythonPip.Installer(); got != "pip" {
		t.Errorf("pip installer = %q", got)
	}
	if got := ProjectTypePythonUV.Installer(); got != "uv" {
		t.Errorf("uv installer = %q", got)
	}
	if got := ProjectTypeUnknown.Installer(); got != "" {
		t.Errorf("unknown installer = %q", got)
	}
}
