package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tyemirov/repomerge/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults read from configuration files.
// List values extend the built-in ignore lists; nil pointers mean "not set".
type ApplicationConfiguration struct {
	IgnoredFolders []string           `mapstructure:"ignored_folders"`
	IgnoredFiles   []string           `mapstructure:"ignored_files"`
	UseGitignore   *bool              `mapstructure:"use_gitignore"`
	Copy           *bool              `mapstructure:"copy"`
	Tokens         TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from the global file and then
// from the local (or explicitly requested) file, later sources taking precedence.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, required := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, required)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.IgnoredFolders = utils.DeduplicatePatterns(utils.TrimNames(merged.IgnoredFolders))
	merged.IgnoredFiles = utils.DeduplicatePatterns(utils.TrimNames(merged.IgnoredFiles))
	return merged, nil
}

// resolveLocalConfigPath returns the local configuration path and whether it must exist.
func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, bool) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), false
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, true
	}
	return filepath.Join(workingDirectory, explicitPath), true
}

func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		reader.SetConfigType("yaml")
	}
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver. Ignore lists accumulate; scalar values are replaced.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.IgnoredFolders = appendNames(result.IgnoredFolders, override.IgnoredFolders)
	result.IgnoredFiles = appendNames(result.IgnoredFiles, override.IgnoredFiles)
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (configuration TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := configuration
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func appendNames(base []string, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	combined := make([]string, 0, len(base)+len(extra))
	combined = append(combined, base...)
	combined = append(combined, extra...)
	return utils.DeduplicatePatterns(combined)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

// BoolValue dereferences value, falling back when it is unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
