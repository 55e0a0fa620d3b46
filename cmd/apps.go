package cmd

import (
	"fmt"

	"github.com/longkey1/agentchat/internal/adk"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// appsCmd represents the apps command
var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List the applications served by the agent backend",
	Long: `List all applications served by the configured agent API server.
Any of them can be used as app_name or with the --app flag.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		transport := adk.NewClient(adk.WithLogger(log.Logger))
		apps, err := transport.ListApps(cmd.Context(), cfg.APIURL)
		if err != nil {
			return fmt.Errorf("listing apps: %w", err)
		}

		if len(apps) == 0 {
			fmt.Println("No apps found.")
			return nil
		}

		for _, app := range apps {
			if app == cfg.AppName {
				fmt.Printf("%s %s\n", app, dimStyle.Render("(configured)"))
				continue
			}
			fmt.Println(app)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
}
