/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/longkey1/agentchat/internal/agentchat/transcript"
	"github.com/spf13/cobra"
)

var (
	appName        string
	profileName    string
	argFlags       []string
	useEditor      bool
	saveTranscript bool
	transcriptName string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to the agent",
	Long: `Send a single message to the agent and print the reply.
A new backend session is created for every invocation.

For multi-turn conversations, use 'agentchat start' instead.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.

A profile file in TOML format can add state for the agent:
instructions = "Instructions with optional {{key}} placeholders"
knowledge = "Background knowledge"
rag_corpus = "projects/p/locations/l/ragCorpora/c"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("app") {
			cfg.AppName = appName
		}

		// Get message from arguments, editor, or stdin
		var message string
		if useEditor {
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		} else if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = string(input)
		}

		message = strings.TrimSpace(message)
		if message == "" {
			return fmt.Errorf("message is empty")
		}

		client, err := newConversation(cfg, profileName, argFlags)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if err := client.Initialize(ctx, cfg.WidgetConfig()); err != nil {
			return fmt.Errorf("connecting to agent: %w", err)
		}

		reply, err := client.SendMessage(ctx, message)
		if err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		fmt.Println(reply.Text)

		if saveTranscript {
			store, err := newTranscriptStore(cfg)
			if err != nil {
				return err
			}
			identity, err := client.Identity()
			if err != nil {
				return err
			}
			t := transcript.New(identity, client.Messages())
			t.Name = transcriptName
			path, err := store.Save(t)
			if err != nil {
				return fmt.Errorf("saving transcript: %w", err)
			}
			fmt.Fprintf(os.Stderr, "\nTranscript saved: %s\nPath: %s\n", t.GetShortID(), path)
		}

		return nil
	},
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	tmpFile, err := os.CreateTemp("", "agentchat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&appName, "app", "a", "", "Backend application name (overrides app_name)")
	chatCmd.Flags().StringVarP(&profileName, "profile", "p", "", "Name or path of the agent profile (without .toml extension)")
	chatCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for profile placeholders (format: key:value)")
	chatCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")
	chatCmd.Flags().BoolVarP(&saveTranscript, "transcript", "t", false, "Save the exchange as a transcript")
	chatCmd.Flags().StringVar(&transcriptName, "transcript-name", "", "Name for the saved transcript (optional)")
}
