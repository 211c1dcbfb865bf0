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

package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/runup-sh/runup/pkg/bootstrap"
	"github.com/runup-sh/runup/pkg/util"
)

var (
	CheckCommands = []*cli.Command{
		{
			Name:      "check",
			Usage:     "Diagnose the project's bootstrap state",
			UsageText: "runup check [PROJECT_NAME]",
			ArgsUsage: "[PROJECT_NAME]",
			Action:    checkProject,
			Flags:     append([]cli.Flag{jsonFlag}, runnerFlags...),
		},
	}
)

type checkReport struct {
	Dir         string                   `json:"dir"`
	ProjectType bootstrap.ProjectType    `json:"project_type"`
	Interpreter string                   `json:"interpreter"`
	EnvTemplate bool                     `json:"env_template"`
	EnvFile     bool                     `json:"env_file"`
	Manifest    bool                     `json:"manifest"`
	Entrypoint  bool                     `json:"entrypoint"`
	Venv        bool                     `json:"venv"`
	Pins        []bootstrap.VerifyResult `json:"pins,omitempty"`
}

func checkProject(ctx context.Context, cmd *cli.Command) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}

	// raw detection, without the runner's assume-pip fallback, so an
	// unrecognized directory reports as such
	projectType, _ := bootstrap.DetectProjectType(r.Dir())

	report := checkReport{
		Dir:         r.Dir(),
		ProjectType: projectType,
		EnvTemplate: util.FileExists(r.Dir(), bootstrap.EnvExampleFile),
		EnvFile:     util.FileExists(r.Dir(), bootstrap.EnvFile),
		Manifest:    util.FileExists(r.Dir(), bootstrap.RequirementsFile) || util.FileExists(r.Dir(), bootstrap.PyprojectFile),
		Entrypoint:  util.FileExists(r.Dir(), r.Entrypoint()),
		Venv:        util.DirExists(r.VenvPath()),
	}
	if interp, err := bootstrap.ResolveInterpreter(pythonBin); err == nil {
		report.Interpreter = interp.String()
	}
	if report.ProjectType.IsPython() && report.Venv && report.Manifest {
		// pin verification needs an existing venv to freeze
		pins, err := r.VerifyPinned(ctx, r.LaunchEnv())
		if err != nil {
			return err
		}
		report.Pins = pins
	}

	if cmd.Bool("json") {
		return util.PrintJSON(report)
	}

	printReport(report)
	return nil
}

func printReport(report checkReport) {
	mark := func(ok bool) string {
		if ok {
			return "present"
		}
		return "missing"
	}

	fmt.Println("Project [" + util.Accented(report.Dir) + "]")

	table := util.CreateTable().
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return util.FormHeaderStyle
			}
			return util.FormBaseStyle
		}).
		Headers("Check", "State")
	table.Row("project type", string(report.ProjectType))
	table.Row("interpreter", report.Interpreter)
	table.Row(bootstrap.EnvExampleFile, mark(report.EnvTemplate))
	table.Row(bootstrap.EnvFile, mark(report.EnvFile))
	table.Row("dependency manifest", mark(report.Manifest))
	table.Row("entry point", mark(report.Entrypoint))
	table.Row("virtual environment", mark(report.Venv))
	fmt.Println(table)

	if len(report.Pins) > 0 {
		pins := util.CreateTable().
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == ltable.HeaderRow {
					return util.FormHeaderStyle
				}
				return util.FormBaseStyle
			}).
			Headers("Package", "Pinned", "Installed")
		for _, pin := range report.Pins {
			version, _ := pin.PinnedVersion()
			installed := pin.Installed
			if !pin.Satisfied {
				installed = installed + " ✗"
			}
			pins.Row(pin.Name, version, installed)
		}
		fmt.Println(pins)
	}
}
