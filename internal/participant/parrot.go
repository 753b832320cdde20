package participant

import (
	"strings"

	"github.com/converseworks/convkit/internal/dialogue"
)

const (
	parrotWelcome = "Hello, I'm Parrot. What can I help u with?"
	parrotGoodbye = "It was nice talking to you. Bye"
)

// ParrotAgent echoes every user utterance back. It is the smallest complete
// agent and doubles as the demo agent for the terminal and socket commands.
type ParrotAgent struct {
	*BaseAgent
}

// NewParrotAgent creates a parrot bot with the default stop intent.
func NewParrotAgent(id string) *ParrotAgent {
	return &ParrotAgent{BaseAgent: NewBaseAgent(id, AgentTypeBot)}
}

// Welcome publishes the greeting.
func (a *ParrotAgent) Welcome() error {
	return a.Publish(dialogue.NewAnnotatedUtterance(parrotWelcome,
		dialogue.WithParticipant(dialogue.ParticipantAgent)))
}

// Goodbye publishes the farewell carrying the stop intent.
func (a *ParrotAgent) Goodbye() error {
	return a.Publish(dialogue.NewAnnotatedUtterance(parrotGoodbye,
		dialogue.WithParticipant(dialogue.ParticipantAgent),
		dialogue.WithIntent(a.StopIntent())))
}

// ReceiveUtterance parrots the input back, or says goodbye when the user
// asks to exit.
func (a *ParrotAgent) ReceiveUtterance(u *dialogue.AnnotatedUtterance) error {
	if strings.EqualFold(strings.TrimSpace(u.Text()), DefaultStopIntentLabel) {
		return a.Goodbye()
	}
	return a.Publish(dialogue.NewAnnotatedUtterance("(Parroting) "+u.Text(),
		dialogue.WithParticipant(dialogue.ParticipantAgent)))
}
