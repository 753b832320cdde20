package participant

import (
	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// BaseUser carries the identity, connector back-reference and ready-for-input
// latch shared by all users. Concrete users embed it and implement
// ReceiveUtterance.
type BaseUser struct {
	id        string
	userType  UserType
	connector Connector
	ready     bool
}

// NewBaseUser creates the embeddable user base.
func NewBaseUser(id string, userType UserType) *BaseUser {
	return &BaseUser{id: id, userType: userType}
}

func (b *BaseUser) ID() string {
	return b.id
}

func (b *BaseUser) UserType() UserType {
	return b.userType
}

// ConnectDialogueConnector stores the connector back-reference. Called once
// by the connector during construction.
func (b *BaseUser) ConnectDialogueConnector(c Connector) {
	b.connector = c
}

// ReadyForInput reports whether the latch is open.
func (b *BaseUser) ReadyForInput() bool {
	return b.ready
}

// MarkReady opens the latch. Concrete users call this whenever an agent
// utterance is delivered to them.
func (b *BaseUser) MarkReady() {
	b.ready = true
}

// PublishInput publishes one user utterance when the latch is open, closing
// it again. Input arriving while the latch is closed is dropped and reported
// with accepted=false.
func (b *BaseUser) PublishInput(u *dialogue.AnnotatedUtterance) (accepted bool, err error) {
	if !b.ready || b.connector == nil {
		logx.Debug().Str("user_id", b.id).Msg("input dropped, user not ready")
		return false, nil
	}
	b.ready = false
	u.AssignParticipant(dialogue.ParticipantUser)
	return true, b.connector.RegisterUserUtterance(u)
}

func (b *BaseUser) Info() Info {
	return Info{ID: b.id, Type: string(dialogue.ParticipantUser)}
}

// HumanUser is the user behind an interactive platform: every delivered agent
// utterance opens the input latch, and raw text events from the platform are
// published as user utterances.
type HumanUser struct {
	*BaseUser
}

// NewHumanUser creates an interactive user.
func NewHumanUser(id string) *HumanUser {
	return &HumanUser{BaseUser: NewBaseUser(id, UserTypeHuman)}
}

// ReceiveUtterance opens the latch; display happens on the platform side.
func (u *HumanUser) ReceiveUtterance(_ *dialogue.AnnotatedUtterance) error {
	u.MarkReady()
	return nil
}

// HandleInput publishes one line of raw user input.
func (u *HumanUser) HandleInput(text string) (bool, error) {
	utt := dialogue.NewAnnotatedUtterance(text, dialogue.WithParticipant(dialogue.ParticipantUser))
	return u.PublishInput(utt)
}
