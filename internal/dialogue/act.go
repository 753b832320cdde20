package dialogue

// DialogueAct bundles an intent with the ordered annotations that qualify it.
// It is the structured meaning of one utterance.
type DialogueAct struct {
	Intent      *Intent
	Annotations []Annotation
}

// NewDialogueAct creates a dialogue act for the given intent and annotations.
func NewDialogueAct(intent *Intent, annotations ...Annotation) DialogueAct {
	return DialogueAct{Intent: intent, Annotations: annotations}
}

// Equal compares both the intent and the ordered annotation list.
func (d DialogueAct) Equal(other DialogueAct) bool {
	if !d.Intent.Equal(other.Intent) {
		return false
	}
	if len(d.Annotations) != len(other.Annotations) {
		return false
	}
	for i, a := range d.Annotations {
		if a != other.Annotations[i] {
			return false
		}
	}
	return true
}
