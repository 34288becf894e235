// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// File is the decoded form of a conda environment specification file.
	// Channel and dependency order is preserved as written; conda treats
	// both lists as ordered.
	File struct {
		Name         EnvironmentName `yaml:"name"`
		Channels     []string        `yaml:"channels,omitempty"`
		Dependencies []Dependency    `yaml:"dependencies,omitempty"`
		// Prefix is the environment-local absolute path conda appends on
		// export. It never survives Sanitize and is never written back.
		Prefix string `yaml:"prefix,omitempty"`

		// FilePath is the location this File was loaded from (not part of
		// the YAML document).
		FilePath string `yaml:"-"`
	}

	// Dependency is one entry of the dependencies list: either a plain
	// package spec or the nested pip sub-list ({pip: [...]}). The model is
	// read-only; writes to the specification file always go through the
	// sanitized raw export, never a re-marshal.
	Dependency struct {
		Spec PackageSpec
		Pip  []PackageSpec
	}
)

// UnmarshalYAML decodes a dependency entry from either scalar form
// ("python=3.9") or the mapping form ({pip: [requests, flask]}).
func (d *Dependency) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		d.Spec = PackageSpec(s)
		return nil
	case yaml.MappingNode:
		var m struct {
			Pip []PackageSpec `yaml:"pip"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Pip == nil {
			return fmt.Errorf("line %d: dependency mapping must contain a pip list", node.Line)
		}
		d.Pip = m.Pip
		return nil
	default:
		return fmt.Errorf("line %d: dependency must be a string or a pip mapping", node.Line)
	}
}

// ErrParse is the sentinel error wrapped by Parse failures, so callers can
// distinguish a malformed file from a missing one with errors.Is.
var ErrParse = errors.New("failed to parse environment file")

// Parse decodes environment specification content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if errs := f.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return &f, nil
}

// Load reads and parses the environment specification file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file at %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	f.FilePath = path
	return f, nil
}

// Validate checks the constraints the launcher relies on. The dependency
// lists are conda's to validate in depth; only the environment name is
// load-bearing here (it drives every conda -n invocation).
func (f *File) Validate() []error {
	var errs []error
	if ok, nameErrs := f.Name.IsValid(); !ok {
		errs = append(errs, nameErrs...)
	}
	return errs
}
