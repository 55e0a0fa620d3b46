package config

import (
	"fmt"
	"path/filepath"

	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/spf13/viper"
)

// Config holds the configuration for the agent chat client
type Config struct {
	APIURL           string   `toml:"api_url" mapstructure:"api_url"`
	AgentKey         string   `toml:"agent_key" mapstructure:"agent_key"`
	AppName          string   `toml:"app_name" mapstructure:"app_name"`
	Profile          string   `toml:"profile" mapstructure:"profile"` // Profile name or path (empty = none)
	ProfileDirs      []string `toml:"profile_dirs" mapstructure:"profile_dirs"`
	TranscriptDir    string   `toml:"transcript_dir" mapstructure:"transcript_dir"`
	TranscriptFormat string   `toml:"transcript_format" mapstructure:"transcript_format"` // "json" or "yaml"
	LogLevel         string   `toml:"log_level" mapstructure:"log_level"`
	SerializeSends   bool     `toml:"serialize_sends" mapstructure:"serialize_sends"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(configDir string) *Config {
	return &Config{
		APIURL:           "http://localhost:8000",
		AgentKey:         "$AGENT_KEY", // Default to env var
		AppName:          agentchat.DefaultAppName,
		Profile:          "",
		ProfileDirs:      []string{filepath.Join(configDir, "profiles")},
		TranscriptDir:    filepath.Join(configDir, "transcripts"),
		TranscriptFormat: "json",
		LogLevel:         "warn",
		SerializeSends:   true,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand environment variable references
	var err error
	if config.APIURL, err = expandEnvVar(config.APIURL); err != nil {
		return nil, err
	}
	if config.AgentKey, err = expandEnvVar(config.AgentKey); err != nil {
		return nil, err
	}
	if config.AppName, err = expandEnvVar(config.AppName); err != nil {
		return nil, err
	}

	for i, dir := range config.ProfileDirs {
		absPath, err := ResolvePath(v, dir)
		if err != nil {
			return nil, fmt.Errorf("error resolving profile directory path '%s': %v", dir, err)
		}
		config.ProfileDirs[i] = absPath
	}

	if config.TranscriptDir != "" {
		absPath, err := ResolvePath(v, config.TranscriptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving transcript directory path '%s': %v", config.TranscriptDir, err)
		}
		config.TranscriptDir = absPath
	}

	return config, nil
}

// WidgetConfig returns the settings needed to initialize a conversation
func (c *Config) WidgetConfig() agentchat.WidgetConfig {
	return agentchat.WidgetConfig{
		APIURL:   c.APIURL,
		AgentKey: c.AgentKey,
		AppName:  c.AppName,
	}
}
