package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/longkey1/agentchat/internal/agentchat/transcript"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("62"))

// transcriptsCmd represents the transcripts command
var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Manage saved conversation transcripts",
	Long: `Manage saved conversation transcripts including listing, viewing, renaming and deleting them.

Transcripts are read-only exports of a conversation; they cannot be used to resume a backend session.`,
}

// loadTranscriptStore loads the config and opens the transcript store
func loadTranscriptStore() (*transcript.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newTranscriptStore(cfg)
}

// transcriptsListCmd represents the transcripts list command
var transcriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all transcripts",
	Long:  `List all saved transcripts sorted by most recently created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadTranscriptStore()
		if err != nil {
			return err
		}

		transcripts, err := store.List()
		if err != nil {
			return fmt.Errorf("listing transcripts: %w", err)
		}

		if len(transcripts) == 0 {
			fmt.Println("No transcripts found.")
			fmt.Println("\nSave one with:")
			fmt.Println("  agentchat chat --transcript \"your message\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("APP")+"\t"+headerStyle.Render("CREATED")+"\t"+headerStyle.Render("MESSAGES")+"\t"+headerStyle.Render("NAME"))
		for _, t := range transcripts {
			name := t.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				t.GetShortID(),
				t.AppName,
				t.CreatedAt.Format("2006-01-02 15:04"),
				t.MessageCount(),
				name,
			)
		}
		w.Flush()

		fmt.Println("\nUse 'agentchat transcripts show <id>' to view a transcript.")
		return nil
	},
}

// transcriptsShowCmd represents the transcripts show command
var transcriptsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a transcript",
	Long: `Show a saved transcript including all messages.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent transcript.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadTranscriptStore()
		if err != nil {
			return err
		}

		t, err := store.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding transcript: %w", err)
		}

		fmt.Printf("Transcript: %s\n", t.ID)
		if t.Name != "" {
			fmt.Printf("Name: %s\n", t.Name)
		}
		fmt.Printf("App: %s\n", t.AppName)
		fmt.Printf("User: %s\n", t.UserID)
		fmt.Printf("Session: %s\n", t.SessionID)
		fmt.Printf("Created: %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Messages: %d\n", t.MessageCount())

		printHistory(os.Stdout, t.Messages)
		return nil
	},
}

// transcriptsRenameCmd represents the transcripts rename command
var transcriptsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a transcript",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadTranscriptStore()
		if err != nil {
			return err
		}

		t, err := store.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding transcript: %w", err)
		}

		t, err = store.Rename(t.ID, args[1])
		if err != nil {
			return fmt.Errorf("renaming transcript: %w", err)
		}

		fmt.Printf("Transcript %s renamed to \"%s\".\n", t.GetShortID(), t.Name)
		return nil
	},
}

// transcriptsDeleteCmd represents the transcripts delete command
var transcriptsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transcript",
	Long: `Delete a saved transcript permanently.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent transcript.

Warning: This action cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadTranscriptStore()
		if err != nil {
			return err
		}

		t, err := store.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding transcript: %w", err)
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Printf("Are you sure you want to delete transcript %s? [y/N]: ", t.GetShortID())
			var response string
			fmt.Scanln(&response)

			if response != "y" && response != "Y" {
				fmt.Println("Deletion cancelled.")
				return nil
			}
		}

		if err := store.Delete(t.ID); err != nil {
			return fmt.Errorf("deleting transcript: %w", err)
		}

		fmt.Printf("Transcript %s deleted successfully.\n", t.GetShortID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.AddCommand(transcriptsListCmd)
	transcriptsCmd.AddCommand(transcriptsShowCmd)
	transcriptsCmd.AddCommand(transcriptsRenameCmd)
	transcriptsCmd.AddCommand(transcriptsDeleteCmd)

	transcriptsDeleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
}
