package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, api_url, agent_key, app_name, profile, profile_dirs, transcript_dir, transcript_format, log_level, serialize_sends"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  agentchat config             # Show all configuration
  agentchat config api_url     # Show only the API URL
  agentchat config agent_key   # Show only the (masked) agent key`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "api_url", "apiurl":
				fmt.Println(cfg.APIURL)
			case "agent_key", "agentkey":
				fmt.Println(maskToken(cfg.AgentKey))
			case "app_name", "appname":
				fmt.Println(cfg.AppName)
			case "profile":
				fmt.Println(cfg.Profile)
			case "profile_dirs", "profiledirs":
				fmt.Println(strings.Join(cfg.ProfileDirs, ","))
			case "transcript_dir", "transcriptdir":
				fmt.Println(cfg.TranscriptDir)
			case "transcript_format", "transcriptformat":
				fmt.Println(cfg.TranscriptFormat)
			case "log_level", "loglevel":
				fmt.Println(cfg.LogLevel)
			case "serialize_sends", "serializesends":
				fmt.Println(cfg.SerializeSends)
			default:
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				return fmt.Errorf("unknown field: %s", args[0])
			}
			return nil
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("APIURL: %s\n", cfg.APIURL)
		fmt.Printf("AgentKey: %s\n", maskToken(cfg.AgentKey))
		fmt.Printf("AppName: %s\n", cfg.AppName)
		fmt.Printf("Profile: %s\n", cfg.Profile)
		fmt.Printf("ProfileDirectories: %s\n", strings.Join(cfg.ProfileDirs, ","))
		fmt.Printf("TranscriptDir: %s\n", cfg.TranscriptDir)
		fmt.Printf("TranscriptFormat: %s\n", cfg.TranscriptFormat)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		fmt.Printf("SerializeSends: %v\n", cfg.SerializeSends)
		return nil
	},
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
