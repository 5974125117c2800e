// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/repomerge/internal/commands"
	"github.com/tyemirov/repomerge/internal/config"
	"github.com/tyemirov/repomerge/internal/services/clipboard"
	"github.com/tyemirov/repomerge/internal/tokenizer"
	"github.com/tyemirov/repomerge/internal/utils"
)

const (
	ignoredFoldersFlagName = "ignored-folders"
	ignoredFilesFlagName   = "ignored-files"
	configFlagName         = "config"
	useGitignoreFlagName   = "use-gitignore"
	copyFlagName           = "copy"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	verboseFlagName        = "verbose"

	rootUse              = utils.ApplicationName + " <repo_path> <output_file>"
	rootShortDescription = "Combine a repository's text files into one document"
	rootLongDescription  = `repomerge writes a single document holding an ASCII tree of <repo_path>
followed by the text of every file in it, skipping ignored folders and files.
Ignore lists extend built-in defaults and may also come from ~/.repomerge/config.yaml
and .repomerge.yaml. Undecodable files are replaced by a placeholder.
A repository directory named init must be given as ./init, since init alone
runs the init subcommand.`
	rootUsageExample = `  # Combine the current directory
  repomerge . combined.txt

  # Skip additional folders and files
  repomerge ./service out.txt --ignored-folders testdata fixtures --ignored-files go.mod

  # Copy the result to the clipboard and report its token count
  repomerge . out.txt --copy --tokens`
	versionTemplate = utils.ApplicationName + " version: {{.Version}}\n"

	ignoredFoldersFlagDescription = "additional folder names to ignore"
	ignoredFilesFlagDescription   = "additional file names to ignore"
	configFlagDescription         = "configuration file to use instead of ./" + utils.ConfigFileName
	useGitignoreFlagDescription   = "also exclude paths matched by the root .gitignore"
	copyFlagDescription           = "copy the combined document to the clipboard"
	tokensFlagDescription         = "report the token count of the combined document"
	modelFlagDescription          = "tokenizer model to use for token counting"
	verboseFlagDescription        = "enable debug logging"

	combinedConfirmationFormat = "All files have been combined into %s\n"
	tokenCountFormat           = "Tokens: %d (%s)\n"

	workingDirectoryErrorFormat  = "unable to determine working directory: %w"
	loadConfigurationErrorFormat = "loading configuration: %w"
	gitignoreErrorFormat         = "loading .gitignore: %w"
	tokenizerErrorFormat         = "initializing tokenizer for %s: %w"

	warningClipboardFailed  = "unable to copy document to clipboard"
	warningTokensSkipped    = "document is not valid UTF-8 text, token count skipped"
	warningTokenCountFailed = "unable to count document tokens"
	logFieldPath            = "path"
	logFieldModel           = "model"
)

// CounterFactory builds a token counter for the configured model.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies wires the collaborators used by the root command.
type Dependencies struct {
	Logger           *zap.Logger
	LogLevel         zap.AtomicLevel
	Clipboard        clipboard.Copier
	CounterFactory   CounterFactory
	WorkingDirectory string
}

// Execute runs the repomerge application with the process arguments.
func Execute(logger *zap.Logger, logLevel zap.AtomicLevel) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger:         logger,
		LogLevel:       logLevel,
		Clipboard:      clipboard.NewService(),
		CounterFactory: tokenizer.NewCounter,
	})
	rootCommand.SetArgs(normalizeArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// combineOptions stores the values of the root command flags.
type combineOptions struct {
	ignoredFolders []string
	ignoredFiles   []string
	configPath     string
	useGitignore   bool
	copyToBoard    bool
	tokensEnabled  bool
	tokenModel     string
	verbose        bool
}

// NewRootCommand builds the root Cobra command. Callers apply normalizeArguments
// to raw arguments so list flags accept space separated values.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	var options combineOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if argumentsError := cobra.ExactArgs(2)(command, arguments); argumentsError != nil {
				command.Usage()
				return argumentsError
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return runCombine(command, dependencies, options, arguments[0], arguments[1])
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		command.Usage()
		return flagError
	})

	flagSet := rootCommand.Flags()
	flagSet.StringArrayVar(&options.ignoredFolders, ignoredFoldersFlagName, nil, ignoredFoldersFlagDescription)
	flagSet.StringArrayVar(&options.ignoredFiles, ignoredFilesFlagName, nil, ignoredFilesFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, utils.EmptyString, configFlagDescription)
	registerBooleanFlag(flagSet, &options.useGitignore, useGitignoreFlagName, false, useGitignoreFlagDescription)
	registerBooleanFlag(flagSet, &options.copyToBoard, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(flagSet, &options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&options.tokenModel, modelFlagName, config.DefaultTokenizerModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &options.verbose, verboseFlagName, false, verboseFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	return rootCommand
}

// commandLineConfiguration expresses explicitly set flags in configuration form.
func commandLineConfiguration(command *cobra.Command, options combineOptions) config.ApplicationConfiguration {
	flagSet := command.Flags()
	configuration := config.ApplicationConfiguration{
		IgnoredFolders: options.ignoredFolders,
		IgnoredFiles:   options.ignoredFiles,
	}
	if flagSet.Changed(useGitignoreFlagName) {
		configuration.UseGitignore = &options.useGitignore
	}
	if flagSet.Changed(copyFlagName) {
		configuration.Copy = &options.copyToBoard
	}
	if flagSet.Changed(tokensFlagName) {
		configuration.Tokens.Enabled = &options.tokensEnabled
	}
	if flagSet.Changed(modelFlagName) {
		configuration.Tokens.Model = options.tokenModel
	}
	return configuration
}

func resolveWorkingDirectory(dependencies Dependencies) (string, error) {
	if dependencies.WorkingDirectory != utils.EmptyString {
		return dependencies.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return utils.EmptyString, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	return workingDirectory, nil
}

// runCombine merges configuration sources, writes the document and runs the
// optional clipboard and token steps.
func runCombine(command *cobra.Command, dependencies Dependencies, options combineOptions, repositoryPath string, outputPath string) error {
	logger := dependencies.Logger
	if options.verbose && dependencies.LogLevel != (zap.AtomicLevel{}) {
		dependencies.LogLevel.SetLevel(zap.DebugLevel)
	}

	workingDirectory, workingDirectoryError := resolveWorkingDirectory(dependencies)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	fileConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, loadError)
	}
	effectiveConfiguration := fileConfiguration.Merge(commandLineConfiguration(command, options))

	combiner := commands.Combiner{
		IgnoreSets: config.NewIgnoreSets(effectiveConfiguration.IgnoredFolders, effectiveConfiguration.IgnoredFiles),
		Logger:     logger,
	}
	if config.BoolValue(effectiveConfiguration.UseGitignore, false) {
		gitignoreMatcher, gitignoreError := config.LoadGitignoreMatcher(repositoryPath)
		if gitignoreError != nil {
			return fmt.Errorf(gitignoreErrorFormat, gitignoreError)
		}
		if gitignoreMatcher != nil {
			combiner.PathMatcher = gitignoreMatcher
		}
	}
	logger.Debug("combining repository",
		zap.String(logFieldPath, repositoryPath),
		zap.Strings("ignored_folders", combiner.IgnoreSets.Folders()),
		zap.Strings("ignored_files", combiner.IgnoreSets.Files()),
	)

	summary, combineError := combiner.CombineFiles(repositoryPath, outputPath)
	if combineError != nil {
		return combineError
	}
	logger.Debug("document written",
		zap.String(logFieldPath, outputPath),
		zap.Int("files", summary.Files),
		zap.Int("placeholders", summary.Placeholders),
		zap.String("size", utils.FormatFileSize(summary.DocumentBytes)),
		zap.Int("tree_lines", summary.TreeLines),
		zap.Strings("skipped_folders", summary.SkippedFolders),
	)
	fmt.Fprintf(command.OutOrStdout(), combinedConfirmationFormat, outputPath)

	if config.BoolValue(effectiveConfiguration.Tokens.Enabled, false) {
		if tokenError := reportTokenCount(command, dependencies, effectiveConfiguration.Tokens.Model, outputPath); tokenError != nil {
			return tokenError
		}
	}
	if config.BoolValue(effectiveConfiguration.Copy, false) && dependencies.Clipboard != nil {
		if copyError := clipboard.CopyFile(dependencies.Clipboard, outputPath); copyError != nil {
			logger.Warn(warningClipboardFailed, zap.String(logFieldPath, outputPath), zap.Error(copyError))
		}
	}
	return nil
}

func reportTokenCount(command *cobra.Command, dependencies Dependencies, model string, outputPath string) error {
	if model == utils.EmptyString {
		model = config.DefaultTokenizerModel
	}
	counterFactory := dependencies.CounterFactory
	if counterFactory == nil {
		counterFactory = tokenizer.NewCounter
	}
	counter, resolvedModel, counterError := counterFactory(tokenizer.Config{Model: model})
	if counterError != nil {
		return fmt.Errorf(tokenizerErrorFormat, model, counterError)
	}
	countResult, countError := tokenizer.CountFile(counter, outputPath)
	if countError != nil {
		dependencies.Logger.Warn(warningTokenCountFailed, zap.String(logFieldPath, outputPath), zap.Error(countError))
		return nil
	}
	if !countResult.Counted {
		dependencies.Logger.Warn(warningTokensSkipped, zap.String(logFieldPath, outputPath), zap.String(logFieldModel, resolvedModel))
		return nil
	}
	fmt.Fprintf(command.OutOrStdout(), tokenCountFormat, countResult.Tokens, resolvedModel)
	return nil
}
