// Package commands contains the tree rendering and file combining logic.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tyemirov/repomerge/internal/config"
	"github.com/tyemirov/repomerge/internal/output"
	"github.com/tyemirov/repomerge/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"

	// errorReadDirectoryFormat wraps os.ReadDir errors, which already name the path.
	errorReadDirectoryFormat = "reading directory: %w"
)

// TreeRenderer renders a directory as indented tree lines.
type TreeRenderer struct {
	IgnoreSets  config.IgnoreSets
	PathMatcher config.PathMatcher
	// ExcludedPath is never listed. The combiner sets it to its output file.
	ExcludedPath string
}

// RenderTree lists the entries below rootDirectoryPath, one line per entry,
// siblings sorted ascending. Any directory that cannot be read fails the render.
func RenderTree(rootDirectoryPath string, ignoreSets config.IgnoreSets) ([]string, error) {
	treeRenderer := TreeRenderer{IgnoreSets: ignoreSets}
	return treeRenderer.RenderTree(rootDirectoryPath)
}

// RenderTree lists the entries below rootDirectoryPath using the renderer's filters.
func (treeRenderer *TreeRenderer) RenderTree(rootDirectoryPath string) ([]string, error) {
	absoluteRootDirectoryPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	treeLines := []string{}
	if renderError := treeRenderer.appendTreeLines(&treeLines, absoluteRootDirectoryPath, absoluteRootDirectoryPath, utils.EmptyString); renderError != nil {
		return nil, renderError
	}
	return treeLines, nil
}

func (treeRenderer *TreeRenderer) appendTreeLines(treeLines *[]string, currentDirectoryPath string, rootDirectoryPath string, prefix string) error {
	entryNames, listError := treeRenderer.listVisibleEntries(currentDirectoryPath, rootDirectoryPath)
	if listError != nil {
		return listError
	}
	for entryIndex, entryName := range entryNames {
		isLast := entryIndex == len(entryNames)-1
		*treeLines = append(*treeLines, output.FormatTreeLine(prefix, entryName, isLast))
		childPath := filepath.Join(currentDirectoryPath, entryName)
		if !isDirectoryFollowingLinks(childPath) {
			continue
		}
		if renderError := treeRenderer.appendTreeLines(treeLines, childPath, rootDirectoryPath, output.ChildPrefix(prefix, isLast)); renderError != nil {
			return renderError
		}
	}
	return nil
}

func (treeRenderer *TreeRenderer) listVisibleEntries(currentDirectoryPath string, rootDirectoryPath string) ([]string, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, readDirectoryError)
	}
	entryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if treeRenderer.IgnoreSets.IgnoresEntry(entryName) {
			continue
		}
		childPath := filepath.Join(currentDirectoryPath, entryName)
		if utils.SamePath(childPath, treeRenderer.ExcludedPath) {
			continue
		}
		if treeRenderer.PathMatcher != nil {
			relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
			if treeRenderer.PathMatcher.MatchesPath(relativeChildPath, isDirectoryFollowingLinks(childPath)) {
				continue
			}
		}
		entryNames = append(entryNames, entryName)
	}
	sort.Strings(entryNames)
	return entryNames, nil
}

// isDirectoryFollowingLinks reports false for entries that cannot be resolved.
func isDirectoryFollowingLinks(path string) bool {
	pathInfo, statError := os.Stat(path)
	return statError == nil && pathInfo.IsDir()
}
