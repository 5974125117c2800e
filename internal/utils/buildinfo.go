package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion    = "unknown"
	develVersion      = "(devel)"
	gitDirectoryName  = ".git"
	gitExecutableName = "git"
)

// Version may be set at build time with -ldflags "-X github.com/tyemirov/repomerge/internal/utils.Version=v1.2.3".
var Version = EmptyString

// GetApplicationVersion reports the linked version, then the module version from
// build info, then a git describe of the enclosing checkout.
func GetApplicationVersion() string {
	if Version != EmptyString {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != EmptyString && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	checkoutDirectory, found := findCheckoutDirectory(".")
	if !found {
		return unknownVersion
	}
	for _, describeArguments := range [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	} {
		// #nosec G204
		describeCommand := exec.Command(gitExecutableName, describeArguments...)
		describeCommand.Dir = checkoutDirectory
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

// findCheckoutDirectory walks upward from startDirectory to the first directory holding a .git folder.
func findCheckoutDirectory(startDirectory string) (string, bool) {
	currentDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return EmptyString, false
	}
	for {
		gitInfo, statError := os.Stat(filepath.Join(currentDirectory, gitDirectoryName))
		if statError == nil && gitInfo.IsDir() {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return EmptyString, false
		}
		currentDirectory = parentDirectory
	}
}
