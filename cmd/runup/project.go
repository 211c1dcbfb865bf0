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
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/runup-sh/runup/pkg/config"
	"github.com/runup-sh/runup/pkg/util"
)

var (
	ProjectCommands = []*cli.Command{
		{
			Name:   "project",
			Usage:  "Register project directories to bootstrap by name",
			Before: loadProjectConfig,
			Commands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "Register a project directory",
					UsageText: "runup project add PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    addProject,
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "dir",
							Usage: "Project `DIR`",
						},
						&cli.StringFlag{
							Name:  "entrypoint",
							Usage: "Entry point `FILE`, when not main.py",
						},
						&cli.StringFlag{
							Name:  "python",
							Usage: "Interpreter `BIN` override for this project",
						},
						&cli.BoolFlag{
							Name:  "default",
							Usage: "Set this project as the default",
						},
					},
				},
				{
					Name:      "list",
					Usage:     "List all registered projects",
					UsageText: "runup project list",
					Action:    listProjects,
					Flags:     []cli.Flag{jsonFlag},
				},
				{
					Name:      "remove",
					Usage:     "Remove a registered project",
					UsageText: "runup project remove PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    removeProject,
				},
				{
					Name:      "set-default",
					Usage:     "Set a project as default to use with other commands",
					UsageText: "runup project set-default PROJECT_NAME",
					ArgsUsage: "PROJECT_NAME",
					Action:    setDefaultProject,
				},
			},
		},
	}

	cliConfig      *config.CLIConfig
	defaultProject *config.ProjectConfig
	nameRegex      = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

func loadProjectConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	conf, err := config.LoadOrCreate()
	if err != nil {
		return ctx, err
	}
	cliConfig = conf

	if cliConfig.DefaultProject != "" {
		for _, p := range cliConfig.Projects {
			if p.Name == cliConfig.DefaultProject {
				defaultProject = &p
				break
			}
		}
	}
	return ctx, nil
}

func addProject(ctx context.Context, cmd *cli.Command) error {
	p := config.ProjectConfig{}
	var err error
	var prompts []huh.Field

	// Name
	validateName := func(val string) error {
		if !nameRegex.MatchString(val) {
			return errors.New("name can only contain alphanumeric characters, dashes and underscores")
		}
		// cannot conflict with existing projects, in any case spelling
		if cliConfig.ProjectExists(val) {
			return errors.New("name already exists")
		}
		return nil
	}

	if p.Name = cmd.Args().Get(0); p.Name != "" {
		if err = validateName(p.Name); err != nil {
			return err
		}
		fmt.Println("  Project Name:", p.Name)
	} else {
		prompts = append(prompts, huh.NewInput().
			Title("Project Name").
			Placeholder("my-app").
			Validate(validateName).
			Value(&p.Name))
	}

	// Directory
	validateDir := func(val string) error {
		abs, err := filepath.Abs(val)
		if err != nil {
			return err
		}
		if !util.DirExists(abs) {
			return errors.New("directory does not exist")
		}
		return nil
	}
	if p.Dir = cmd.String("dir"); p.Dir != "" {
		if err = validateDir(p.Dir); err != nil {
			return err
		}
		fmt.Println("  Directory:", p.Dir)
	} else {
		prompts = append(prompts, huh.NewInput().
			Title("Project Directory").
			Placeholder("~/src/my-app").
			Validate(validateDir).
			Value(&p.Dir))
	}

	p.Entrypoint = cmd.String("entrypoint")
	p.Python = cmd.String("python")

	// if it's the first project, make it default
	isDefault := false
	if cmd.Bool("default") || defaultProject == nil {
		cliConfig.DefaultProject = p.Name
	} else if !cmd.IsSet("default") {
		prompts = append(prompts, huh.NewConfirm().
			Title("Make this project default?").
			Value(&isDefault).
			Inline(true).
			WithTheme(util.Theme))
	}

	if len(prompts) > 0 {
		var groups []*huh.Group
		for _, p := range prompts {
			groups = append(groups, huh.NewGroup(p))
		}
		err = huh.NewForm(groups...).
			WithTheme(util.Theme).
			RunWithContext(ctx)
		if err != nil {
			return err
		}
		if isDefault {
			cliConfig.DefaultProject = p.Name
		}
	}

	if abs, err := filepath.Abs(p.Dir); err == nil {
		p.Dir = abs
	}
	cliConfig.Projects = append(cliConfig.Projects, p)

	// save config
	if err = cliConfig.PersistIfNeeded(); err != nil {
		return err
	}

	listProjects(ctx, cmd)

	return nil
}

func listProjects(ctx context.Context, cmd *cli.Command) error {
	if len(cliConfig.Projects) == 0 {
		fmt.Println("No projects registered, use `runup project add` to register one.")
		return nil
	}

	selectedStyle := util.Theme.Focused.Title.Padding(0, 1)

	if cmd.Bool("json") {
		return util.PrintJSON(cliConfig.Projects)
	}

	table := util.CreateTable().
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return util.FormHeaderStyle
			case cliConfig.Projects[row].Name == cliConfig.DefaultProject:
				return selectedStyle
			default:
				return util.FormBaseStyle
			}
		}).
		Headers("Name", "Directory", "Entry Point")
	for _, p := range cliConfig.Projects {
		var pName string
		if p.Name == cliConfig.DefaultProject {
			pName = "* " + p.Name
		} else {
			pName = "  " + p.Name
		}
		entry := p.Entrypoint
		if entry == "" {
			entry = "main.py"
		}
		table.Row(pName, p.Dir, entry)
	}
	fmt.Println(table)

	return nil
}

func removeProject(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		_ = cli.ShowSubcommandHelp(cmd)
		return errors.New("project name is required")
	}
	name := cmd.Args().First()
	return cliConfig.RemoveProject(name)
}

func setDefaultProject(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		_ = cli.ShowSubcommandHelp(cmd)
		return errors.New("project name is required")
	}
	name := cmd.Args().First()

	for _, p := range cliConfig.Projects {
		if p.Name != name {
			continue
		}

		cliConfig.DefaultProject = p.Name
		if err := cliConfig.PersistIfNeeded(); err != nil {
			return err
		}
		fmt.Println("Default project set to [" + util.Accented(p.Name) + "]")
		return nil
	}

	return errors.New("project not found")
}
