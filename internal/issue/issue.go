// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	CondaNotFoundId Id = iota + 1
	EnvFileNotFoundId
	EnvFileParseErrorId
	EnvironmentNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.extLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	condaNotFoundIssue = &Issue{
		id: CondaNotFoundId,
		mdMsg: `
# Conda not found!

envrun needs the conda executable on your PATH to manage the project
environment, and could not locate it.

## Things you can try:
- Install Miniconda (the small distribution is all envrun needs):
  - Linux/macOS: download the installer and run it
  - Windows: use the graphical installer

- If conda is already installed, initialize your shell so it lands on PATH:
~~~
$ ~/miniconda3/bin/conda init
~~~
    then open a new terminal and retry.

- If the binary lives in a non-standard place, point envrun at it:
~~~cue
conda_binary: "/opt/miniconda3/bin/conda"
~~~`,
		extLinks: []HttpLink{
			"https://docs.conda.io/projects/miniconda/",
		},
	}

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# No environment file found!

envrun looked for the environment specification file but couldn't read it.

## Things you can try:
- Create an environment.yml next to your project:
~~~yaml
name: myproject
channels:
  - defaults
dependencies:
  - python=3.11
~~~

- Or point envrun at an existing file:
~~~cue
environment_file: "deploy/environment.yml"
~~~

- If the environment already exists on this machine, export it:
~~~
$ envrun save_environment
~~~`,
	}

	envFileParseErrorIssue = &Issue{
		id: EnvFileParseErrorId,
		mdMsg: `
# Failed to parse the environment file!

The environment specification file is not valid YAML, or is missing its
top-level name field.

## Things you can try:
- Check the error message above for the offending line
- Make sure the file has a top-level name:
~~~yaml
name: myproject
~~~
- Regenerate the file from the live environment:
~~~
$ envrun save_environment
~~~`,
	}

	environmentNotFoundIssue = &Issue{
		id: EnvironmentNotFoundId,
		mdMsg: `
# Environment does not exist yet!

Package install/uninstall operate on an existing conda environment, and the
named environment was not found.

## Things you can try:
- Create the environment first by running the launcher without arguments:
~~~
$ envrun
~~~
- Then retry the package operation.`,
	}

	issuesById = map[Id]*Issue{
		CondaNotFoundId:       condaNotFoundIssue,
		EnvFileNotFoundId:     envFileNotFoundIssue,
		EnvFileParseErrorId:   envFileParseErrorIssue,
		EnvironmentNotFoundId: environmentNotFoundIssue,
	}
)

// Lookup returns the Issue registered for the given Id, or nil if none exists.
func Lookup(id Id) *Issue {
	return issuesById[id]
}
