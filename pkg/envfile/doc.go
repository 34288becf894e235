// SPDX-License-Identifier: MPL-2.0

// Package envfile provides types and parsing for conda environment
// specification files (environment.yml).
//
// The file format itself is owned by conda: a name, an ordered channel list,
// and an ordered dependency list with an optional nested pip sub-list. The
// launcher only needs to read the environment name, validate the file's
// basic shape, and sanitize exported content (drop the environment-local
// prefix line and strip build strings from pinned dependencies) before the
// file is fed back to conda or written over the project's copy.
package envfile
