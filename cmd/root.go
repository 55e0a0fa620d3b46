/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agentchat",
	Short: "A chat client for conversational agent backends",
	Long: `agentchat is a command-line chat client for an ADK-style agent API server.
It creates a conversation session on the backend and exchanges messages with the agent.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/agentchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// userConfigDir returns the per-user configuration directory
func userConfigDir() string {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	return filepath.Join(home, ".config", "agentchat")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory is optional
	_ = godotenv.Load()

	viper.SetEnvPrefix("AGENTCHAT")
	viper.AutomaticEnv()

	userDir := userConfigDir()
	defaultConfig := config.NewDefaultConfig(userDir)

	// Note: Later directories in the array take precedence over earlier ones
	defaultProfileDirs := []string{
		"/usr/share/agentchat/profiles",
		"/usr/local/share/agentchat/profiles",
		filepath.Join(userDir, "profiles"),
	}

	viper.SetDefault("api_url", defaultConfig.APIURL)
	viper.SetDefault("agent_key", defaultConfig.AgentKey)
	viper.SetDefault("app_name", defaultConfig.AppName)
	viper.SetDefault("profile", defaultConfig.Profile)
	viper.SetDefault("profile_dirs", defaultProfileDirs)
	viper.SetDefault("transcript_dir", defaultConfig.TranscriptDir)
	viper.SetDefault("transcript_format", defaultConfig.TranscriptFormat)
	viper.SetDefault("log_level", defaultConfig.LogLevel)
	viper.SetDefault("serialize_sends", defaultConfig.SerializeSends)

	viper.BindEnv("api_url", "AGENTCHAT_API_URL")
	viper.BindEnv("agent_key", "AGENTCHAT_AGENT_KEY")
	viper.BindEnv("app_name", "AGENTCHAT_APP_NAME")
	viper.BindEnv("log_level", "AGENTCHAT_LOG_LEVEL")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		viper.AddConfigPath("/etc/agentchat")
		viper.AddConfigPath("/usr/local/etc/agentchat")
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := viper.ReadInConfig() == nil

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	setupLogging(viper.GetString("log_level"))

	log.Debug().
		Str("config_file", viper.ConfigFileUsed()).
		Str("api_url", viper.GetString("api_url")).
		Str("app_name", viper.GetString("app_name")).
		Strs("profile_dirs", viper.GetStringSlice("profile_dirs")).
		Msg("Configuration loaded")
}

// setupLogging configures the global zerolog logger for the terminal
func setupLogging(level string) {
	lvl := parseLogLevel(level)
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

// parseLogLevel converts a string level into zerolog.Level with a safe default
func parseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	case "warn", "warning":
		fallthrough
	default:
		return zerolog.WarnLevel
	}
}
