package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
)

func sampleDialogue() *dialogue.Dialogue {
	d := dialogue.NewDialogueWithID("moviebot", "alice", "conv1")
	d.AddUtterance(dialogue.NewAnnotatedUtterance("Hello, I'm Parrot. What can I help u with?",
		dialogue.WithParticipant(dialogue.ParticipantAgent)))
	d.AddUtterance(dialogue.NewAnnotatedUtterance("something about Dune",
		dialogue.WithParticipant(dialogue.ParticipantUser),
		dialogue.WithIntent(dialogue.NewIntent("REVEAL.EXPAND")),
		dialogue.WithAnnotations(dialogue.NewAnnotation("TITLE", "Dune"))))
	bye := dialogue.NewAnnotatedUtterance("It was nice talking to you. Bye",
		dialogue.WithParticipant(dialogue.ParticipantAgent),
		dialogue.WithIntent(dialogue.NewIntent("EXIT")))
	bye.SetMetadata("satisfaction", float64(4))
	d.AddUtterance(bye)
	return d
}

func infos() (participant.Info, participant.Info) {
	return participant.Info{ID: "moviebot", Type: "AGENT"}, participant.Info{ID: "alice", Type: "USER"}
}

func TestExportThenReloadRoundTrips(t *testing.T) {
	store := NewJSONStore(t.TempDir())
	d := sampleDialogue()
	agent, user := infos()

	require.NoError(t, store.Export(d, agent, user))

	loaded, err := store.Load("moviebot", "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, d.Equal(loaded[0]))

	// Metadata keys ride along with the utterance.
	last := loaded[0].Utterances()[2]
	assert.Equal(t, float64(4), last.Metadata()["satisfaction"])
	assert.Equal(t, "conv1_moviebot_2", last.ID())
}

func TestExportAppendsToExistingFile(t *testing.T) {
	store := NewJSONStore(t.TempDir())
	agent, user := infos()

	require.NoError(t, store.Export(sampleDialogue(), agent, user))
	second := dialogue.NewDialogueWithID("moviebot", "alice", "conv2")
	second.AddUtterance(dialogue.NewAnnotatedUtterance("round two",
		dialogue.WithParticipant(dialogue.ParticipantAgent)))
	require.NoError(t, store.Export(second, agent, user))

	loaded, err := store.Load("moviebot", "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "conv1", loaded[0].ConversationID())
	assert.Equal(t, "conv2", loaded[1].ConversationID())
}

func TestExportRefusesToClobberCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir)
	path := store.FilePath("moviebot", "alice")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	agent, user := infos()
	err := store.Export(sampleDialogue(), agent, user)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindFatal))

	// The corrupt file is untouched.
	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, "{not json", string(data))
}

func TestExportWireFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONStore(dir)
	agent, user := infos()
	require.NoError(t, store.Export(sampleDialogue(), agent, user))

	data, err := os.ReadFile(filepath.Join(dir, "moviebot_alice.json"))
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "conv1", rec["conversation ID"])
	assert.Equal(t, map[string]any{"id": "moviebot", "type": "AGENT"}, rec["agent"])
	assert.Equal(t, map[string]any{"id": "alice", "type": "USER"}, rec["user"])

	conv, ok := rec["conversation"].([]any)
	require.True(t, ok)
	require.Len(t, conv, 3)

	second := conv[1].(map[string]any)
	assert.Equal(t, "USER", second["participant"])
	assert.Equal(t, "something about Dune", second["utterance"])
	assert.Equal(t, "REVEAL.EXPAND", second["intent"])
	assert.Equal(t, []any{[]any{"TITLE", "Dune"}}, second["slot_values"])

	third := conv[2].(map[string]any)
	assert.Equal(t, float64(4), third["satisfaction"])
}

func TestLoadMissingFileIsNotFound(t *testing.T) {
	store := NewJSONStore(t.TempDir())
	_, err := store.Load("nobody", "nothing")
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindNotFound))
}

func TestLoadAllHonoursFilter(t *testing.T) {
	store := NewJSONStore(t.TempDir())
	agent, user := infos()
	require.NoError(t, store.Export(sampleDialogue(), agent, user))

	other := dialogue.NewDialogueWithID("otherbot", "bob", "conv9")
	other.AddUtterance(dialogue.NewAnnotatedUtterance("hi",
		dialogue.WithParticipant(dialogue.ParticipantAgent)))
	require.NoError(t, store.Export(other,
		participant.Info{ID: "otherbot", Type: "AGENT"},
		participant.Info{ID: "bob", Type: "USER"}))

	all, err := store.LoadAll(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyMovie, err := store.LoadAll(Filter{AgentIDs: []string{"moviebot"}})
	require.NoError(t, err)
	require.Len(t, onlyMovie, 1)
	assert.Equal(t, "moviebot", onlyMovie[0].AgentID())
}
