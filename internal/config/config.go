// Package config holds the ignore sets, the gitignore matcher and the
// application configuration loaded from YAML files.
package config

import (
	"sort"

	"github.com/tyemirov/repomerge/internal/utils"
)

var defaultIgnoredFolders = [...]string{
	".turbo",
	"_generated",
	".git",
	".github",
	".pnpm",
	"dist",
	"target",
	"venv",
	".venv",
	"node_modules",
	"__pycache__",
	"build",
	"public",
}

var defaultIgnoredFiles = [...]string{
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"uv.lock",
	".env",
	"flux",
	"README.md",
	"LICENSE",
	"NOTICE",
}

// DefaultIgnoredFolders returns a copy of the built-in ignored folder names.
func DefaultIgnoredFolders() []string {
	return append([]string(nil), defaultIgnoredFolders[:]...)
}

// DefaultIgnoredFiles returns a copy of the built-in ignored file names.
func DefaultIgnoredFiles() []string {
	return append([]string(nil), defaultIgnoredFiles[:]...)
}

// IgnoreSets holds the folder and file names excluded from a run.
// A value is read-only once built by NewIgnoreSets.
type IgnoreSets struct {
	folders map[string]struct{}
	files   map[string]struct{}
}

// NewIgnoreSets merges the built-in defaults with the supplied names into a fresh pair of sets.
func NewIgnoreSets(extraFolders []string, extraFiles []string) IgnoreSets {
	return IgnoreSets{
		folders: buildNameSet(defaultIgnoredFolders[:], extraFolders),
		files:   buildNameSet(defaultIgnoredFiles[:], extraFiles),
	}
}

func buildNameSet(defaults []string, extras []string) map[string]struct{} {
	nameSet := make(map[string]struct{}, len(defaults)+len(extras))
	for _, name := range defaults {
		nameSet[name] = struct{}{}
	}
	for _, name := range utils.TrimNames(extras) {
		nameSet[name] = struct{}{}
	}
	return nameSet
}

// IgnoresFolder reports whether name is an ignored folder name.
func (sets IgnoreSets) IgnoresFolder(name string) bool {
	_, ignored := sets.folders[name]
	return ignored
}

// IgnoresFile reports whether name is an ignored file name.
func (sets IgnoreSets) IgnoresFile(name string) bool {
	_, ignored := sets.files[name]
	return ignored
}

// IgnoresEntry reports whether name appears in either set.
func (sets IgnoreSets) IgnoresEntry(name string) bool {
	return sets.IgnoresFolder(name) || sets.IgnoresFile(name)
}

// Folders returns the ignored folder names in ascending order.
func (sets IgnoreSets) Folders() []string {
	return sortedNames(sets.folders)
}

// Files returns the ignored file names in ascending order.
func (sets IgnoreSets) Files() []string {
	return sortedNames(sets.files)
}

func sortedNames(nameSet map[string]struct{}) []string {
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
