// Package storage persists finished dialogues: a JSON file store with the
// one-file-per-participant-pair layout, and a Redis-backed store for shared
// deployments. Both speak the same record format.
package storage

import (
	"fmt"

	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
)

// Fixed keys of an utterance record; everything else round-trips through the
// utterance metadata map.
const (
	keyParticipant    = "participant"
	keyUtterance      = "utterance"
	keyUtteranceID    = "utterance ID"
	keyIntent         = "intent"
	keySlotValues     = "slot_values"
	keyConversationID = "conversation ID"
	keyConversation   = "conversation"
	keyAgent          = "agent"
	keyUser           = "user"
	keyMetadata       = "metadata"
)

func isFixedUtteranceKey(k string) bool {
	switch k {
	case keyParticipant, keyUtterance, keyUtteranceID, keyIntent, keySlotValues:
		return true
	}
	return false
}

func utteranceToRecord(u *dialogue.AnnotatedUtterance) map[string]any {
	rec := map[string]any{
		keyParticipant: string(u.Participant()),
		keyUtterance:   u.Text(),
		keyUtteranceID: u.ID(),
	}
	if u.Intent() != nil {
		rec[keyIntent] = u.Intent().Label()
	}
	if anns := u.Annotations(); len(anns) > 0 {
		pairs := make([][]string, 0, len(anns))
		for _, a := range anns {
			pairs = append(pairs, []string{a.Slot, a.Value})
		}
		rec[keySlotValues] = pairs
	}
	for k, v := range u.Metadata() {
		if !isFixedUtteranceKey(k) {
			rec[k] = v
		}
	}
	return rec
}

func recordToUtterance(rec map[string]any) (*dialogue.AnnotatedUtterance, error) {
	text, _ := rec[keyUtterance].(string)
	u := dialogue.NewAnnotatedUtterance(text)

	if p, ok := rec[keyParticipant].(string); ok {
		u.AssignParticipant(dialogue.Participant(p))
	}
	if id, ok := rec[keyUtteranceID].(string); ok {
		u.AssignID(id)
	}
	if label, ok := rec[keyIntent].(string); ok && label != "" {
		u.SetIntent(dialogue.NewIntent(label))
	}
	if raw, ok := rec[keySlotValues]; ok {
		pairs, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("slot_values is not an array")
		}
		for _, rawPair := range pairs {
			pair, ok := rawPair.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("slot_values entry is not a [slot, value] pair")
			}
			slot, _ := pair[0].(string)
			value, _ := pair[1].(string)
			u.AddAnnotation(dialogue.NewAnnotation(slot, value))
		}
	}
	for k, v := range rec {
		if !isFixedUtteranceKey(k) {
			u.SetMetadata(k, v)
		}
	}
	return u, nil
}

func dialogueToRecord(d *dialogue.Dialogue, agent, user participant.Info) map[string]any {
	conversation := make([]map[string]any, 0, d.Len())
	for _, u := range d.Utterances() {
		conversation = append(conversation, utteranceToRecord(u))
	}
	rec := map[string]any{
		keyConversationID: d.ConversationID(),
		keyConversation:   conversation,
		keyAgent:          map[string]any{"id": agent.ID, "type": agent.Type},
		keyUser:           map[string]any{"id": user.ID, "type": user.Type},
	}
	if meta := d.Metadata(); len(meta) > 0 {
		rec[keyMetadata] = meta
	}
	return rec
}

func recordToDialogue(rec map[string]any) (*dialogue.Dialogue, error) {
	agentID := participantID(rec[keyAgent])
	userID := participantID(rec[keyUser])
	conversationID, _ := rec[keyConversationID].(string)
	if agentID == "" || userID == "" {
		return nil, fmt.Errorf("dialogue record missing participant ids")
	}

	d := dialogue.NewDialogueWithID(agentID, userID, conversationID)
	if meta, ok := rec[keyMetadata].(map[string]any); ok {
		for k, v := range meta {
			d.SetMetadata(k, v)
		}
	}

	rawConv, _ := rec[keyConversation].([]any)
	for i, rawUtt := range rawConv {
		uttRec, ok := rawUtt.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("utterance %d is not an object", i)
		}
		u, err := recordToUtterance(uttRec)
		if err != nil {
			return nil, fmt.Errorf("utterance %d: %w", i, err)
		}
		d.AddUtterance(u)
	}
	d.ClearPending()
	return d, nil
}

func participantID(raw any) string {
	m, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["id"].(string)
	return id
}
