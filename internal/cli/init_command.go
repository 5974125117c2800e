package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/repomerge/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a configuration file holding the supported keys.
Without --global the file is ./.repomerge.yaml; with --global it is ~/.repomerge/config.yaml.
Existing files are kept unless --force is given.`
	initGlobalFlagName        = "global"
	initForceFlagName         = "force"
	initGlobalFlagDescription = "write the global configuration file"
	initForceFlagDescription  = "overwrite an existing configuration file"
	initWrittenFormat         = "Configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var globalTarget bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            overwrite,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			dependencies.Logger.Debug("configuration initialized", zap.String(logFieldPath, writtenPath))
			fmt.Fprintf(command.OutOrStdout(), initWrittenFormat, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &globalTarget, initGlobalFlagName, false, initGlobalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &overwrite, initForceFlagName, false, initForceFlagDescription)
	return initCommand
}
