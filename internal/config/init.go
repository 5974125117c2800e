package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/repomerge/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	// DefaultTokenizerModel is the tokenizer model used when none is configured.
	DefaultTokenizerModel = "gpt-4o"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

type templateTokens struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

type configurationTemplate struct {
	IgnoredFolders []string       `yaml:"ignored_folders"`
	IgnoredFiles   []string       `yaml:"ignored_files"`
	UseGitignore   bool           `yaml:"use_gitignore"`
	Copy           bool           `yaml:"copy"`
	Tokens         templateTokens `yaml:"tokens"`
}

// RenderDefaultConfiguration returns the YAML document written by InitializeConfiguration.
// The built-in ignore lists are listed as comments since they always apply.
func RenderDefaultConfiguration() ([]byte, error) {
	template := configurationTemplate{
		IgnoredFolders: []string{},
		IgnoredFiles:   []string{},
		Tokens:         templateTokens{Model: DefaultTokenizerModel},
	}
	body, marshalErr := yaml.Marshal(template)
	if marshalErr != nil {
		return nil, fmt.Errorf("render default configuration: %w", marshalErr)
	}
	var header strings.Builder
	header.WriteString("# Names listed here extend the built-in ignore lists.\n")
	header.WriteString("# Built-in folders: " + strings.Join(DefaultIgnoredFolders(), ", ") + "\n")
	header.WriteString("# Built-in files: " + strings.Join(DefaultIgnoredFiles(), ", ") + "\n")
	return append([]byte(header.String()), body...), nil
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	content, renderErr := RenderDefaultConfiguration()
	if renderErr != nil {
		return "", renderErr
	}
	if err := os.WriteFile(destinationPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}
