package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/agentchat/internal/agentchat"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/longkey1/agentchat/internal/agentchat/conversation"
	"github.com/longkey1/agentchat/internal/agentchat/transcript"
	"github.com/spf13/cobra"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	agentLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the agent.

A backend session is created when the conversation starts and lives until you exit.
Type '/help' for the available commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("app") {
			cfg.AppName = appName
		}

		client, err := newConversation(cfg, profileName, argFlags)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := client.Initialize(ctx, cfg.WidgetConfig()); err != nil {
			return fmt.Errorf("connecting to agent: %w", err)
		}

		repl := &interactiveSession{
			client: client,
			cfg:    cfg,
			in:     os.Stdin,
			out:    os.Stdout,
			errOut: os.Stderr,
		}
		if err := repl.run(ctx); err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}
		return nil
	},
}

// interactiveSession is the terminal UI around a conversation client
type interactiveSession struct {
	client *conversation.Client
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (s *interactiveSession) run(ctx context.Context) error {
	s.printHeader()

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.errOut, userLabelStyle.Render("You>")+" ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(s.errOut, "\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if s.handleCommand(ctx, input) {
				continue
			}
			return nil
		}

		// Sends are made one at a time: the next prompt is shown only after the reply
		done := make(chan struct{})
		stopped := make(chan struct{})
		go showSpinner(s.errOut, done, stopped)

		reply, err := s.client.SendMessage(ctx, input)

		close(done)
		<-stopped

		if err != nil {
			fmt.Fprintln(s.errOut, errorStyle.Render("Error: "+err.Error()))
			continue
		}

		fmt.Fprintf(s.out, "\n%s %s\n\n", agentLabelStyle.Render("Agent>"), reply.Text)
	}
}

func (s *interactiveSession) printHeader() {
	identity, _ := s.client.Identity()
	fmt.Fprintf(s.errOut, "\n=== Conversation [%s] ===\n", identity.SessionID)
	fmt.Fprintf(s.errOut, "App: %s\n", identity.AppName)
	fmt.Fprintln(s.errOut, dimStyle.Render("Type '/help' for commands, '/exit' or 'Ctrl+D' to quit"))
	fmt.Fprintf(s.errOut, "===================================\n\n")
}

// showSpinner displays a spinner animation until done is closed
func showSpinner(w io.Writer, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-done:
			fmt.Fprint(w, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(w, "\r%s Waiting for the agent...", spinners[i])
			i = (i + 1) % len(spinners)
		}
	}
}

// handleCommand processes slash commands.
// Returns true to continue the loop, false to exit
func (s *interactiveSession) handleCommand(ctx context.Context, command string) bool {
	command = strings.ToLower(strings.TrimSpace(command))

	switch command {
	case "/help", "/h":
		fmt.Fprintln(s.errOut, "\nAvailable commands:")
		fmt.Fprintln(s.errOut, "  /help, /h     - Show this help message")
		fmt.Fprintln(s.errOut, "  /info, /i     - Show session information")
		fmt.Fprintln(s.errOut, "  /history      - Show the message history")
		fmt.Fprintln(s.errOut, "  /clear, /c    - Clear the message history (keeps the session)")
		fmt.Fprintln(s.errOut, "  /reset        - Start a new backend session")
		fmt.Fprintln(s.errOut, "  /save         - Save the conversation as a transcript")
		fmt.Fprintln(s.errOut, "  /exit, /quit  - Exit interactive mode")
		fmt.Fprintln(s.errOut, "  Ctrl+D        - Exit interactive mode")
		fmt.Fprintln(s.errOut, "")
		return true

	case "/info", "/i":
		identity, err := s.client.Identity()
		fmt.Fprintln(s.errOut, "\nSession Information:")
		fmt.Fprintf(s.errOut, "  State: %s\n", s.client.State())
		if err == nil {
			fmt.Fprintf(s.errOut, "  App: %s\n", identity.AppName)
			fmt.Fprintf(s.errOut, "  User: %s\n", identity.UserID)
			fmt.Fprintf(s.errOut, "  Session: %s\n", identity.SessionID)
		}
		fmt.Fprintf(s.errOut, "  Messages: %d\n", len(s.client.Messages()))
		fmt.Fprintln(s.errOut, "")
		return true

	case "/history":
		printHistory(s.out, s.client.Messages())
		return true

	case "/clear", "/c":
		s.client.ClearMessages()
		fmt.Fprintln(s.errOut, dimStyle.Render("History cleared."))
		return true

	case "/reset":
		if err := s.client.Reset(ctx); err != nil {
			fmt.Fprintln(s.errOut, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		identity, _ := s.client.Identity()
		fmt.Fprintf(s.errOut, "New session: %s\n", identity.SessionID)
		return true

	case "/save":
		store, err := newTranscriptStore(s.cfg)
		if err != nil {
			fmt.Fprintln(s.errOut, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		identity, _ := s.client.Identity()
		t := transcript.New(identity, s.client.Messages())
		path, err := store.Save(t)
		if err != nil {
			fmt.Fprintln(s.errOut, errorStyle.Render("Error: "+err.Error()))
			return true
		}
		fmt.Fprintf(s.errOut, "Transcript saved: %s (%s)\n", t.GetShortID(), path)
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(s.errOut, "Goodbye!")
		return false

	default:
		fmt.Fprintf(s.errOut, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

// printHistory writes messages in conversation order
func printHistory(w io.Writer, messages []agentchat.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}
	for i, msg := range messages {
		label := userLabelStyle.Render("You")
		if msg.Role == agentchat.RoleModel {
			label = agentLabelStyle.Render("Agent")
		}
		fmt.Fprintf(w, "\n[%d] %s (%s):\n%s\n",
			i+1,
			label,
			dimStyle.Render(msg.Time().Format("2006-01-02 15:04:05")),
			msg.Text,
		)
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&appName, "app", "a", "", "Backend application name (overrides app_name)")
	startCmd.Flags().StringVarP(&profileName, "profile", "p", "", "Name or path of the agent profile (without .toml extension)")
	startCmd.Flags().StringArrayVar(&argFlags, "arg", []string{}, "Key-value pairs for profile placeholders (format: key:value)")
}
