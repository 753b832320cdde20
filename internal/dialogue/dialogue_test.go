package dialogue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/converseworks/convkit/internal/core/error"
)

func TestNewDialogueDerivesConversationID(t *testing.T) {
	d := NewDialogue("moviebot", "alice")
	assert.Regexp(t, `^moviebot-alice-\d+$`, d.ConversationID())
	assert.Equal(t, "moviebot", d.AgentID())
	assert.Equal(t, "alice", d.UserID())
}

func TestAddUtteranceStampsTurnIndexedIDs(t *testing.T) {
	d := NewDialogueWithID("moviebot", "alice", "conv1")

	texts := []struct {
		text string
		p    Participant
		id   string
	}{
		{"hello", ParticipantAgent, "conv1_moviebot_0"},
		{"hi", ParticipantUser, "conv1_alice_1"},
		{"what next", ParticipantAgent, "conv1_moviebot_2"},
	}
	for _, tc := range texts {
		d.AddUtterance(NewAnnotatedUtterance(tc.text, WithParticipant(tc.p)))
	}

	utts := d.Utterances()
	require.Len(t, utts, 3)
	for i, tc := range texts {
		assert.Equal(t, tc.text, utts[i].Text())
		assert.Equal(t, tc.id, utts[i].ID())
	}
}

func TestAddUtteranceKeepsPresetID(t *testing.T) {
	d := NewDialogueWithID("a", "u", "conv1")
	u := NewAnnotatedUtterance("hello", WithParticipant(ParticipantAgent), WithID("preset"))
	d.AddUtterance(u)
	assert.Equal(t, "preset", u.ID())
}

func TestClearPendingKeepsCommittedHistory(t *testing.T) {
	d := NewDialogueWithID("a", "u", "conv1")
	for i := 0; i < 4; i++ {
		d.AddUtterance(NewAnnotatedUtterance(fmt.Sprintf("turn %d", i), WithParticipant(ParticipantUser)))
	}
	assert.Equal(t, 4, d.PendingCount())

	d.ClearPending()
	assert.Equal(t, 0, d.PendingCount())
	assert.Equal(t, 4, d.Len())

	d.AddUtterance(NewAnnotatedUtterance("late", WithParticipant(ParticipantAgent)))
	assert.Equal(t, 1, d.PendingCount())
	assert.Equal(t, 5, d.Len())
}

func TestDialogueEqualModuloIDs(t *testing.T) {
	a := NewDialogueWithID("bot", "u1", "conv1")
	a.AddUtterance(NewAnnotatedUtterance("hello", WithParticipant(ParticipantAgent)))
	a.AddUtterance(NewAnnotatedUtterance("hi", WithParticipant(ParticipantUser)))

	b := NewDialogueWithID("bot", "u1", "conv1")
	b.AddUtterance(NewAnnotatedUtterance("hello", WithParticipant(ParticipantAgent), WithID("other_id")))
	b.AddUtterance(NewAnnotatedUtterance("hi", WithParticipant(ParticipantUser)))

	assert.True(t, a.Equal(b))

	c := NewDialogueWithID("bot", "u1", "conv1")
	c.AddUtterance(NewAnnotatedUtterance("hello", WithParticipant(ParticipantUser)))
	c.AddUtterance(NewAnnotatedUtterance("hi", WithParticipant(ParticipantAgent)))
	assert.False(t, a.Equal(c))
}

func TestUserPreferencesRange(t *testing.T) {
	p := NewUserPreferences()

	require.NoError(t, p.Set("GENRE", "drama", 0.8))
	require.NoError(t, p.Set("GENRE", "horror", -1))

	err := p.Set("GENRE", "comedy", 1.5)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindInvalidArgument))

	score, ok := p.Get("GENRE", "drama")
	assert.True(t, ok)
	assert.Equal(t, 0.8, score)

	_, ok = p.Get("GENRE", "comedy")
	assert.False(t, ok)
	_, ok = p.Get("YEAR", "1999")
	assert.False(t, ok)
}

func TestDialogueEqualComparesMetadataKeys(t *testing.T) {
	build := func() *Dialogue {
		d := NewDialogueWithID("bot", "u1", "conv1")
		d.AddUtterance(NewAnnotatedUtterance("hello", WithParticipant(ParticipantAgent)))
		return d
	}

	a, b := build(), build()
	a.SetMetadata("domain", "movies")
	assert.False(t, a.Equal(b))

	b.SetMetadata("domain", "movies")
	assert.True(t, a.Equal(b))

	// values may change representation across an export round trip
	c := build()
	c.SetMetadata("domain", 42.0)
	assert.True(t, a.Equal(c))
}
