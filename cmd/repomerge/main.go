package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tyemirov/repomerge/internal/cli"
	"github.com/tyemirov/repomerge/internal/utils"
)

const invalidArgumentSyncError = "invalid argument"

// main is the entry point for the repomerge command.
func main() {
	loggerInstance, logLevel, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	if applicationExecutionError := cli.Execute(loggerInstance, logLevel); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
	syncLogger(loggerInstance)
}

// syncLogger flushes the logger when stderr supports it; pipes and character
// devices other than terminals report EINVAL on sync.
func syncLogger(loggerInstance *zap.Logger) {
	if !term.IsTerminal(int(os.Stderr.Fd())) && !isRegularFile(os.Stderr) {
		return
	}
	if syncError := loggerInstance.Sync(); syncError != nil {
		if !strings.Contains(strings.ToLower(syncError.Error()), invalidArgumentSyncError) {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncError)
		}
	}
}

func isRegularFile(file *os.File) bool {
	fileInfo, statError := file.Stat()
	if statError != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
