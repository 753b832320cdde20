// Package participant defines the contracts agents and users fulfil to take
// part in a dialogue, plus embeddable base types carrying the shared wiring.
package participant

import (
	"github.com/converseworks/convkit/internal/dialogue"
)

// AgentType distinguishes autonomous bots from human-operated wizard-of-oz
// agents.
type AgentType string

const (
	AgentTypeBot AgentType = "BOT"
	AgentTypeWOZ AgentType = "WOZ"
)

// UserType distinguishes human users from simulators.
type UserType string

const (
	UserTypeHuman     UserType = "HUMAN"
	UserTypeSimulator UserType = "SIMULATOR"
)

// DefaultStopIntentLabel terminates a dialogue when the agent publishes an
// utterance carrying it.
const DefaultStopIntentLabel = "EXIT"

// Connector is the narrow slice of the dialogue connector participants hold
// to publish utterances. The reference is non-owning: the connector owns the
// participants for the duration of one conversation.
type Connector interface {
	RegisterAgentUtterance(u *dialogue.AnnotatedUtterance) error
	RegisterUserUtterance(u *dialogue.AnnotatedUtterance) error
}

// Info is the id-only serialized form of a participant, used in dialogue
// exports to avoid cycles.
type Info struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Agent is the conversational counterpart of the user. The connector calls
// Welcome once at dialogue start and ReceiveUtterance for every registered
// user utterance; the agent publishes its own utterances back through the
// connector reference it received via ConnectDialogueConnector.
type Agent interface {
	ID() string
	AgentType() AgentType
	StopIntent() *dialogue.Intent
	ConnectDialogueConnector(c Connector)
	Welcome() error
	Goodbye() error
	ReceiveUtterance(u *dialogue.AnnotatedUtterance) error
	Info() Info
}

// User receives displayed agent utterances and publishes input through the
// connector. Input is gated by a ready latch: it opens after each agent
// utterance and closes again when one user utterance has been published.
type User interface {
	ID() string
	UserType() UserType
	ConnectDialogueConnector(c Connector)
	ReceiveUtterance(u *dialogue.AnnotatedUtterance) error
	Info() Info
}
