package dialogue

import (
	"fmt"
	"time"
)

// Dialogue is the ordered record of one conversation between an agent and a
// user. Utterances are appended through AddUtterance and never mutated
// afterwards. The committed history stays readable after the conversation is
// closed; exporting clears only the pending counter.
type Dialogue struct {
	agentID        string
	userID         string
	conversationID string
	utterances     []*AnnotatedUtterance
	metadata       map[string]any
	pending        int
}

// NewDialogue creates a dialogue for the given participants with a derived
// conversation id of the form "{agentID}-{userID}-{unixUTCSeconds}".
func NewDialogue(agentID, userID string) *Dialogue {
	id := fmt.Sprintf("%s-%s-%d", agentID, userID, time.Now().UTC().Unix())
	return NewDialogueWithID(agentID, userID, id)
}

// NewDialogueWithID creates a dialogue with an explicit conversation id.
func NewDialogueWithID(agentID, userID, conversationID string) *Dialogue {
	return &Dialogue{
		agentID:        agentID,
		userID:         userID,
		conversationID: conversationID,
	}
}

func (d *Dialogue) AgentID() string {
	return d.agentID
}

func (d *Dialogue) UserID() string {
	return d.userID
}

func (d *Dialogue) ConversationID() string {
	return d.conversationID
}

// AddUtterance appends an utterance to the history. When the utterance has no
// id yet it receives "{conversationID}_{participantID}_{turnIndex}", where the
// participant id is the agent or user id depending on the utterance's
// participant tag and the turn index is the pre-append history length.
func (d *Dialogue) AddUtterance(u *AnnotatedUtterance) {
	participantID := d.userID
	if u.Participant() == ParticipantAgent {
		participantID = d.agentID
	}
	u.AssignID(fmt.Sprintf("%s_%s_%d", d.conversationID, participantID, len(d.utterances)))
	d.utterances = append(d.utterances, u)
	d.pending++
}

// Utterances returns the committed history in publish order.
func (d *Dialogue) Utterances() []*AnnotatedUtterance {
	out := make([]*AnnotatedUtterance, len(d.utterances))
	copy(out, d.utterances)
	return out
}

// Len returns the number of committed utterances.
func (d *Dialogue) Len() int {
	return len(d.utterances)
}

// PendingCount returns how many utterances were appended since the last
// ClearPending.
func (d *Dialogue) PendingCount() int {
	return d.pending
}

// ClearPending resets the pending counter after a successful export. The
// committed history is untouched, so a finished conversation remains
// inspectable.
func (d *Dialogue) ClearPending() {
	d.pending = 0
}

// Metadata returns the dialogue metadata map, creating it on first use.
func (d *Dialogue) Metadata() map[string]any {
	if d.metadata == nil {
		d.metadata = make(map[string]any)
	}
	return d.metadata
}

// SetMetadata stores one metadata entry.
func (d *Dialogue) SetMetadata(key string, value any) {
	d.Metadata()[key] = value
}

// Equal compares participants, conversation id, metadata keys and the ordered
// utterance list by value. Utterance ids are excluded so an imported dialogue
// compares equal to its exported source.
func (d *Dialogue) Equal(other *Dialogue) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.agentID != other.agentID || d.userID != other.userID || d.conversationID != other.conversationID {
		return false
	}
	if len(d.utterances) != len(other.utterances) {
		return false
	}
	if !equalMetadataKeys(d.metadata, other.metadata) {
		return false
	}
	for i := range d.utterances {
		if !d.utterances[i].Equal(&other.utterances[i].Utterance) {
			return false
		}
		if d.utterances[i].Participant() != other.utterances[i].Participant() {
			return false
		}
	}
	return true
}

// equalMetadataKeys compares key sets only. Metadata values change
// representation across a JSON export round trip (ints come back as
// float64), so value comparison would break import/export equality.
func equalMetadataKeys(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
