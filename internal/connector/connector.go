// Package connector couples one agent and one user over a presentation
// platform for the duration of a single conversation.
package connector

import (
	"fmt"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// Platform is the slice of the presentation platform the connector needs:
// a sink for utterances to show. Input flows the other way, from the
// platform into the user, and never through the connector.
type Platform interface {
	DisplayAgentUtterance(u *dialogue.AnnotatedUtterance, agentID, userID string) error
	DisplayUserUtterance(u *dialogue.AnnotatedUtterance, userID string) error
}

// Store persists finished dialogues. Implementations append; they never
// overwrite previously exported conversations.
type Store interface {
	Export(d *dialogue.Dialogue, agent, user participant.Info) error
}

// Config wires up a DialogueConnector.
type Config struct {
	Agent    participant.Agent
	User     participant.User
	Platform Platform
	// Store receives the dialogue on Close. Required when
	// SaveDialogueHistory is set.
	Store Store
	// SaveDialogueHistory enables export on Close.
	SaveDialogueHistory bool
	// ConversationID overrides the derived "{agent}-{user}-{unix}" id.
	ConversationID string
}

// DialogueConnector is the single point of coordination between exactly one
// agent, one user and one platform. Every registered utterance is stamped,
// appended to history and displayed before the peer observes it.
type DialogueConnector struct {
	agent       participant.Agent
	user        participant.User
	platform    Platform
	store       Store
	dialogue    *dialogue.Dialogue
	saveHistory bool
	closed      bool
}

// New creates a connector, binds itself to both participants and opens an
// empty dialogue keyed by their ids.
func New(cfg Config) *DialogueConnector {
	var d *dialogue.Dialogue
	if cfg.ConversationID != "" {
		d = dialogue.NewDialogueWithID(cfg.Agent.ID(), cfg.User.ID(), cfg.ConversationID)
	} else {
		d = dialogue.NewDialogue(cfg.Agent.ID(), cfg.User.ID())
	}

	dc := &DialogueConnector{
		agent:       cfg.Agent,
		user:        cfg.User,
		platform:    cfg.Platform,
		store:       cfg.Store,
		dialogue:    d,
		saveHistory: cfg.SaveDialogueHistory,
	}
	cfg.Agent.ConnectDialogueConnector(dc)
	cfg.User.ConnectDialogueConnector(dc)
	return dc
}

// Dialogue exposes the conversation record. The committed history remains
// readable after Close.
func (c *DialogueConnector) Dialogue() *dialogue.Dialogue {
	return c.dialogue
}

// Closed reports whether the conversation has been terminated.
func (c *DialogueConnector) Closed() bool {
	return c.closed
}

// Start opens the conversation; the agent is expected to publish at least one
// utterance from Welcome.
func (c *DialogueConnector) Start() error {
	logx.Debug().
		Str("conversation_id", c.dialogue.ConversationID()).
		Str("agent_id", c.agent.ID()).
		Str("user_id", c.user.ID()).
		Msg("dialogue started")
	return c.agent.Welcome()
}

// RegisterUserUtterance stamps, records and displays a user utterance, then
// forwards it to the agent. Errors from the agent propagate to the publisher;
// the history mutation has already happened by then.
func (c *DialogueConnector) RegisterUserUtterance(u *dialogue.AnnotatedUtterance) error {
	u.AssignParticipant(dialogue.ParticipantUser)
	c.dialogue.AddUtterance(u)
	if err := c.platform.DisplayUserUtterance(u, c.user.ID()); err != nil {
		return fmt.Errorf("display user utterance: %w", err)
	}
	return c.agent.ReceiveUtterance(u)
}

// RegisterAgentUtterance stamps, records and displays an agent utterance.
// When the utterance (or any of its dialogue acts) carries the agent's stop
// intent the dialogue is closed instead of forwarding, so the user never has
// to answer the goodbye.
func (c *DialogueConnector) RegisterAgentUtterance(u *dialogue.AnnotatedUtterance) error {
	u.AssignParticipant(dialogue.ParticipantAgent)
	c.dialogue.AddUtterance(u)
	if err := c.platform.DisplayAgentUtterance(u, c.agent.ID(), c.user.ID()); err != nil {
		return fmt.Errorf("display agent utterance: %w", err)
	}
	if c.carriesStopIntent(u) {
		return c.Close()
	}
	return c.user.ReceiveUtterance(u)
}

func (c *DialogueConnector) carriesStopIntent(u *dialogue.AnnotatedUtterance) bool {
	stop := c.agent.StopIntent()
	if stop.Equal(u.Intent()) {
		return true
	}
	for _, act := range u.DialogueActs() {
		if stop.Equal(act.Intent) {
			return true
		}
	}
	return false
}

// Close terminates the conversation and, when history saving is enabled and
// utterances are pending, exports the dialogue. Export failures are fatal;
// the pending buffer is cleared only after a successful export.
func (c *DialogueConnector) Close() error {
	c.closed = true
	if !c.saveHistory || c.dialogue.PendingCount() == 0 {
		return nil
	}
	if c.store == nil {
		return errx.Fatal(nil, "dialogue history saving enabled without a store")
	}
	if err := c.store.Export(c.dialogue, c.agent.Info(), c.user.Info()); err != nil {
		logx.Error().Err(err).
			Str("conversation_id", c.dialogue.ConversationID()).
			Msg("failed to export dialogue")
		return err
	}
	c.dialogue.ClearPending()
	logx.Info().
		Str("conversation_id", c.dialogue.ConversationID()).
		Int("utterances", c.dialogue.Len()).
		Msg("dialogue exported")
	return nil
}
