package participant

import (
	"github.com/converseworks/convkit/internal/dialogue"
)

// BaseAgent carries the identity, stop intent and connector back-reference
// shared by all agents. Concrete agents embed it and implement Welcome,
// Goodbye and ReceiveUtterance.
type BaseAgent struct {
	id         string
	agentType  AgentType
	stopIntent *dialogue.Intent
	connector  Connector
}

// BaseAgentOption configures a BaseAgent at construction time.
type BaseAgentOption func(*BaseAgent)

// WithStopIntent overrides the default "EXIT" stop intent.
func WithStopIntent(intent *dialogue.Intent) BaseAgentOption {
	return func(b *BaseAgent) { b.stopIntent = intent }
}

// NewBaseAgent creates the embeddable agent base.
func NewBaseAgent(id string, agentType AgentType, opts ...BaseAgentOption) *BaseAgent {
	b := &BaseAgent{
		id:         id,
		agentType:  agentType,
		stopIntent: dialogue.NewIntent(DefaultStopIntentLabel),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BaseAgent) ID() string {
	return b.id
}

func (b *BaseAgent) AgentType() AgentType {
	return b.agentType
}

// StopIntent returns the intent whose publication terminates the dialogue.
func (b *BaseAgent) StopIntent() *dialogue.Intent {
	return b.stopIntent
}

// ConnectDialogueConnector stores the connector back-reference. Called once
// by the connector during construction.
func (b *BaseAgent) ConnectDialogueConnector(c Connector) {
	b.connector = c
}

// Connector returns the connector back-reference, nil before binding.
func (b *BaseAgent) Connector() Connector {
	return b.connector
}

// Publish registers an agent utterance with the connector.
func (b *BaseAgent) Publish(u *dialogue.AnnotatedUtterance) error {
	u.AssignParticipant(dialogue.ParticipantAgent)
	return b.connector.RegisterAgentUtterance(u)
}

func (b *BaseAgent) Info() Info {
	return Info{ID: b.id, Type: string(dialogue.ParticipantAgent)}
}
