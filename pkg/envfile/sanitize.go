// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"fmt"
	"os"
	"strings"
)

// Sanitize normalizes exported environment specification content so it is
// portable across machines:
//
//   - prefix: lines (the environment-local absolute path conda appends on
//     export) are dropped entirely
//   - build strings are stripped from pinned dependencies, keeping only the
//     version pin (python=3.9.7=h12debd9_1 becomes python=3.9.7)
//
// Line order and indentation are preserved; everything else passes through
// untouched. The result always ends with a single trailing newline.
func Sanitize(data []byte) []byte {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.HasPrefix(line, "prefix:") {
			continue
		}
		out = append(out, stripBuildString(line))
	}

	return []byte(strings.Join(out, "\n") + "\n")
}

// stripBuildString removes the build string from a pinned conda dependency
// line (name=version=build). Pip-style pins use the '==' operator and never
// carry a conda build string, so lines containing "==" pass through.
func stripBuildString(line string) string {
	stripped := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(stripped, "- ") ||
		strings.Contains(stripped, "==") ||
		strings.Count(stripped, "=") < 2 {
		return line
	}

	first := strings.Index(stripped, "=")
	second := first + 1 + strings.Index(stripped[first+1:], "=")
	indent := line[:len(line)-len(stripped)]
	return indent + stripped[:second]
}

// WriteTemp writes sanitized content to a temporary file and returns its
// path together with a cleanup function. conda create/update are always fed
// a sanitized temp copy, never the project's own file.
func WriteTemp(data []byte) (string, func(), error) {
	tmp, err := os.CreateTemp("", "envrun-*.yml")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp environment file: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(Sanitize(data)); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp environment file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp environment file: %w", err)
	}

	return tmp.Name(), cleanup, nil
}
