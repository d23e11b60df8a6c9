package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/readmetree/internal/types"
	"github.com/temirov/readmetree/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the tree defaults read from configuration files.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree"`
}

// TreeConfiguration defines render and action defaults. Nil pointers mean "not configured".
type TreeConfiguration struct {
	ExcludePatterns   []string `mapstructure:"exclude_patterns"`
	MaxDepth          *int     `mapstructure:"max_depth"`
	IncludeFiles      *bool    `mapstructure:"include_files"`
	UseMarkdownFormat *bool    `mapstructure:"use_markdown_format"`
	Icons             *bool    `mapstructure:"icons"`
	Action            string   `mapstructure:"action"`
	OutputFile        string   `mapstructure:"output_file"`
	Tokens            *bool    `mapstructure:"tokens"`
	Timeout           string   `mapstructure:"timeout"`
}

// TreeDefaults is a TreeConfiguration with every built-in default applied.
type TreeDefaults struct {
	ExcludePatterns   []string
	MaxDepth          int
	IncludeFiles      bool
	UseMarkdownFormat bool
	Icons             bool
	Action            string
	OutputFile        string
	Tokens            bool
	Timeout           string
}

// LoadApplicationConfiguration loads configuration from global and local files.
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
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	if merged.Tree.ExcludePatterns != nil {
		merged.Tree.ExcludePatterns = utils.NormalizePatterns(merged.Tree.ExcludePatterns)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.ExcludePatterns != nil {
		result.ExcludePatterns = append([]string{}, override.ExcludePatterns...)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.IncludeFiles != nil {
		result.IncludeFiles = cloneBool(override.IncludeFiles)
	}
	if override.UseMarkdownFormat != nil {
		result.UseMarkdownFormat = cloneBool(override.UseMarkdownFormat)
	}
	if override.Icons != nil {
		result.Icons = cloneBool(override.Icons)
	}
	if override.Action != "" {
		result.Action = override.Action
	}
	if override.OutputFile != "" {
		result.OutputFile = override.OutputFile
	}
	if override.Tokens != nil {
		result.Tokens = cloneBool(override.Tokens)
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	return result
}

// Defaults resolves unset values to the built-in defaults.
func (config TreeConfiguration) Defaults() TreeDefaults {
	defaults := TreeDefaults{
		ExcludePatterns: append([]string{}, utils.DefaultExcludePatterns...),
		MaxDepth:        types.UnlimitedDepth,
		IncludeFiles:    true,
		Action:          types.ActionPrint,
		OutputFile:      config.OutputFile,
		Timeout:         config.Timeout,
	}
	if config.ExcludePatterns != nil {
		defaults.ExcludePatterns = append([]string{}, config.ExcludePatterns...)
	}
	if config.MaxDepth != nil {
		defaults.MaxDepth = *config.MaxDepth
	}
	if config.IncludeFiles != nil {
		defaults.IncludeFiles = *config.IncludeFiles
	}
	if config.UseMarkdownFormat != nil {
		defaults.UseMarkdownFormat = *config.UseMarkdownFormat
	}
	if config.Icons != nil {
		defaults.Icons = *config.Icons
	}
	if config.Action != "" {
		defaults.Action = config.Action
	}
	if config.Tokens != nil {
		defaults.Tokens = *config.Tokens
	}
	return defaults
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
