package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/spf13/cobra"
)

var withDir bool

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available agent profiles",
	Long: `List all agent profiles found in the configured profile directories.
Profiles in later directories take precedence over profiles with the same name in earlier ones.

If you want to see which directory each profile comes from, use the --with-dir option.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		profileMap := make(map[string]string) // profile name -> directory path
		for _, dir := range cfg.ProfileDirs {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				continue
			}
			err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() || !strings.HasSuffix(info.Name(), ".toml") {
					return nil
				}
				relPath, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				profileMap[strings.TrimSuffix(relPath, ".toml")] = dir
				return nil
			})
			if err != nil {
				return fmt.Errorf("reading profile directory %s: %w", dir, err)
			}
		}

		if len(profileMap) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}

		names := make([]string, 0, len(profileMap))
		for name := range profileMap {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if withDir {
				fmt.Printf("%s\t%s\n", name, profileMap[name])
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.Flags().BoolVarP(&withDir, "with-dir", "d", false, "Show the directory of each profile")
}
