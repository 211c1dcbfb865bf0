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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateMissingFile(t *testing.T) {
	t.Setenv("RUNUP_CONFIG_HOME", t.TempDir())

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	require.Empty(t, conf.Projects)
	require.Empty(t, conf.DefaultProject)

	// an empty config that never existed on disk shouldn't be written out
	require.NoError(t, conf.PersistIfNeeded())
	_, err = os.Stat(filepath.Join(os.Getenv("RUNUP_CONFIG_HOME"), "cli-config.yaml"))
	require.True(t, os.IsNotExist(err))
}

func TestPersistAndReload(t *testing.T) {
	t.Setenv("RUNUP_CONFIG_HOME", t.TempDir())

	conf, err := LoadOrCreate()
	require.NoError(t, err)

	conf.Projects = append(conf.Projects, ProjectConfig{
		Name:       "api",
		Dir:        "/srv/api",
		Entrypoint: "app.py",
	})
	conf.DefaultProject = "api"
	require.NoError(t, conf.PersistIfNeeded())

	configPath := filepath.Join(os.Getenv("RUNUP_CONFIG_HOME"), "cli-config.yaml")
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := LoadOrCreate()
	require.NoError(t, err)
	require.Equal(t, "api", reloaded.DefaultProject)
	require.Len(t, reloaded.Projects, 1)
	require.Equal(t, "/srv/api", reloaded.Projects[0].Dir)
	require.Equal(t, "app.py", reloaded.Projects[0].Entrypoint)
}

func TestLoadProject(t *testing.T) {
	t.Setenv("RUNUP_CONFIG_HOME", t.TempDir())

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	conf.Projects = append(conf.Projects,
		ProjectConfig{Name: "api", Dir: "/srv/api"},
		ProjectConfig{Name: "worker", Dir: "/srv/worker", Python: "python3.12"},
	)
	require.NoError(t, conf.PersistIfNeeded())

	p, err := LoadProject("worker")
	require.NoError(t, err)
	require.Equal(t, "/srv/worker", p.Dir)
	require.Equal(t, "python3.12", p.Python)

	_, err = LoadProject("missing")
	require.Error(t, err)
}

func TestLoadDefaultProject(t *testing.T) {
	t.Setenv("RUNUP_CONFIG_HOME", t.TempDir())

	_, err := LoadDefaultProject()
	require.Error(t, err)

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	conf.Projects = []ProjectConfig{{Name: "api", Dir: "/srv/api"}}
	conf.DefaultProject = "api"
	require.NoError(t, conf.PersistIfNeeded())

	p, err := LoadDefaultProject()
	require.NoError(t, err)
	require.Equal(t, "api", p.Name)
}

func TestRemoveProjectClearsDefault(t *testing.T) {
	t.Setenv("RUNUP_CONFIG_HOME", t.TempDir())

	conf, err := LoadOrCreate()
	require.NoError(t, err)
	conf.Projects = []ProjectConfig{
		{Name: "api", Dir: "/srv/api"},
		{Name: "worker", Dir: "/srv/worker"},
	}
	conf.DefaultProject = "api"
	require.NoError(t, conf.PersistIfNeeded())

	require.NoError(t, conf.RemoveProject("api"))
	require.Empty(t, conf.DefaultProject)
	require.Len(t, conf.Projects, 1)

	reloaded, err := LoadOrCreate()
	require.NoError(t, err)
	require.Empty(t, reloaded.DefaultProject)
	require.Len(t, reloaded.Projects, 1)
	require.Equal(t, "worker", reloaded.Projects[0].Name)
}

func TestProjectExists(t *testing.T) {
	conf := &CLIConfig{Projects: []ProjectConfig{{Name: "API", Dir: "/srv/api"}}}
	require.True(t, conf.ProjectExists("api"))
	require.True(t, conf.ProjectExists("API"))
	require.False(t, conf.ProjectExists("worker"))
}
