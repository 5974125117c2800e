package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ApplicationName is the name of the command and of its configuration directory.
const ApplicationName = "repomerge"

// Configuration file locations.
const (
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".repomerge.yaml"
	// GlobalConfigDirectoryName is the directory under the user home holding the global configuration.
	GlobalConfigDirectoryName = ".repomerge"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
)

// Messages shared by the entry point.
const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal execution errors.
	ApplicationExecutionFailedMessage = "repomerge execution failed"
)
