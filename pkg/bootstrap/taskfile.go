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
	"io"
	"os"
	"path/filepath"

	"github.com/go-task/task/v3"
	"gopkg.in/yaml.v3"

	"github.com/runup-sh/runup/pkg/util"
)

// Projects may carry a taskfile that overrides how runup installs
// dependencies or launches the app. Only these task names are
// consulted; anything else in the taskfile is the project's business.
const (
	TaskInstall = "install"
	TaskDev     = "dev"
)

// HasTask reports whether the project taskfile declares the named
// task.
func HasTask(rootPath, taskName string) bool {
	if !util.FileExists(rootPath, TaskFile) {
		return false
	}
	file, err := os.ReadFile(filepath.Join(rootPath, TaskFile))
	if err != nil {
		return false
	}
	var tf struct {
		Tasks map[string]any `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(file, &tf); err != nil {
		return false
	}
	_, ok := tf.Tasks[taskName]
	return ok
}

func NewTaskExecutor(dir string, verbose bool) *task.Executor {
	var o io.Writer = io.Discard
	var e io.Writer = os.Stderr
	if verbose {
		o = os.Stdout
	}
	return &task.Executor{
		Dir:       dir,
		Force:     false,
		ForceAll:  false,
		Insecure:  false,
		Download:  false,
		Offline:   false,
		Watch:     false,
		Verbose:   false,
		Silent:    !verbose,
		AssumeYes: false,
		Dry:       false,
		Summary:   false,
		Parallel:  false,
		Color:     true,

		Stdin:  os.Stdin,
		Stdout: o,
		Stderr: e,
	}
}

func NewTask(ctx context.Context, dir, taskName string, verbose bool) (func() error, error) {
	exe := NewTaskExecutor(dir, verbose)
	err := exe.Setup()
	if err != nil {
		return nil, err
	}

	return func() error {
		return exe.Run(ctx, &task.Call{
			Task: taskName,
		})
	}, nil
}
