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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/runup-sh/runup/pkg/util"
)

// ErrEnvFileExists is returned by InstantiateEnvFile when a .env is
// already present. An existing env file is never overwritten.
var ErrEnvFileExists = errors.New("env file already exists")

// EnsureEnvFile copies the env template to the env file, bit for bit,
// when the env file is absent. An existing env file is left alone.
// When neither exists the run continues without one.
func (r *Runner) EnsureEnvFile() error {
	if util.FileExists(r.opts.Dir, EnvFile) {
		log.Debugf("%s present, leaving it alone", EnvFile)
		return nil
	}
	if !util.FileExists(r.opts.Dir, EnvExampleFile) {
		log.Debugf("neither %s nor %s found, continuing without environment configuration", EnvFile, EnvExampleFile)
		return nil
	}

	log.Infof("creating %s from %s", EnvFile, EnvExampleFile)
	src := filepath.Join(r.opts.Dir, EnvExampleFile)
	dest := filepath.Join(r.opts.Dir, EnvFile)
	return util.CopyFile(src, dest)
}

type PromptFunc func(key string, value string) (string, error)

// InstantiateEnvFile creates the env file from the template, taking
// values from `substitutions` where given and prompting for the rest.
// Unlike EnsureEnvFile the result is not a verbatim copy, so this is
// only used when explicitly requested.
func (r *Runner) InstantiateEnvFile(substitutions map[string]string, prompt PromptFunc) error {
	if util.FileExists(r.opts.Dir, EnvFile) {
		return ErrEnvFileExists
	}
	if !util.FileExists(r.opts.Dir, EnvExampleFile) {
		return fmt.Errorf("no %s template found in %s", EnvExampleFile, r.opts.Dir)
	}

	envMap, err := godotenv.Read(filepath.Join(r.opts.Dir, EnvExampleFile))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(envMap))
	for key := range envMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if value, ok := substitutions[key]; ok {
			envMap[key] = value
			continue
		}
		newValue, err := prompt(key, envMap[key])
		if err != nil {
			return err
		}
		envMap[key] = newValue
	}

	envContents, err := godotenv.Marshal(envMap)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(r.opts.Dir, EnvFile), []byte(envContents), 0600)
}

// EnvFileVars reads the env file into a map, returning an empty map
// when the file is absent.
func (r *Runner) EnvFileVars() (map[string]string, error) {
	if !util.FileExists(r.opts.Dir, EnvFile) {
		return map[string]string{}, nil
	}
	return godotenv.Read(filepath.Join(r.opts.Dir, EnvFile))
}
