package cmd

import (
	"fmt"

	"github.com/longkey1/agentchat/internal/adk"
	"github.com/longkey1/agentchat/internal/agentchat/config"
	"github.com/longkey1/agentchat/internal/agentchat/conversation"
	"github.com/longkey1/agentchat/internal/agentchat/profile"
	"github.com/longkey1/agentchat/internal/agentchat/session"
	"github.com/longkey1/agentchat/internal/agentchat/transcript"
	"github.com/rs/zerolog/log"
)

// newConversation wires a conversation client from the configuration.
// profileName and args override the configured profile when set.
func newConversation(cfg *config.Config, profileName string, args []string) (*conversation.Client, error) {
	transport := adk.NewClient(adk.WithLogger(log.Logger))
	manager := session.New(transport, session.WithLogger(log.Logger))

	opts := []conversation.Option{
		conversation.WithLogger(log.Logger),
		conversation.WithSerializedSends(cfg.SerializeSends),
	}

	if profileName == "" {
		profileName = cfg.Profile
	}
	if profileName != "" {
		p, err := profile.Resolve(profileName, cfg.ProfileDirs, args)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		opts = append(opts, conversation.WithProfile(p))
		log.Debug().Str("profile", profileName).Msg("Using agent profile")
	}

	return conversation.New(manager, transport, opts...), nil
}

// newTranscriptStore opens the configured transcript directory
func newTranscriptStore(cfg *config.Config) (*transcript.Store, error) {
	return transcript.NewStore(cfg.TranscriptDir, cfg.TranscriptFormat)
}
