package config

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/tyemirov/repomerge/internal/utils"
)

const directorySuffix = "/"

// PathMatcher excludes entries by their path relative to the processing root.
type PathMatcher interface {
	MatchesPath(relativePath string, isDirectory bool) bool
}

// GitignoreMatcher applies the patterns of a .gitignore file.
type GitignoreMatcher struct {
	compiled *gitignore.GitIgnore
}

// NewGitignoreMatcher compiles the provided gitignore lines.
func NewGitignoreMatcher(lines ...string) *GitignoreMatcher {
	return &GitignoreMatcher{compiled: gitignore.CompileIgnoreLines(lines...)}
}

// LoadGitignoreMatcher compiles the .gitignore at the root of rootDirectory.
// It returns nil without error when the file does not exist.
func LoadGitignoreMatcher(rootDirectory string) (*GitignoreMatcher, error) {
	gitignorePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
	if _, statErr := os.Stat(gitignorePath); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", gitignorePath, statErr)
	}
	compiled, compileErr := gitignore.CompileIgnoreFile(gitignorePath)
	if compileErr != nil {
		return nil, fmt.Errorf("compile %s: %w", gitignorePath, compileErr)
	}
	return &GitignoreMatcher{compiled: compiled}, nil
}

// MatchesPath reports whether the slash-separated relative path is ignored.
// Directories are also tested with a trailing slash so that "name/" patterns apply.
func (matcher *GitignoreMatcher) MatchesPath(relativePath string, isDirectory bool) bool {
	if matcher == nil || matcher.compiled == nil {
		return false
	}
	slashPath := filepath.ToSlash(relativePath)
	if matcher.compiled.MatchesPath(slashPath) {
		return true
	}
	return isDirectory && matcher.compiled.MatchesPath(slashPath+directorySuffix)
}

var _ PathMatcher = (*GitignoreMatcher)(nil)
