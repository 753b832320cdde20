package dialogue

// Annotation is a (slot, value) pair extracted from or injected into an
// utterance. Annotations are plain values: comparable with == and usable as
// map keys.
type Annotation struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
}

// NewAnnotation creates an annotation for the given slot and value.
func NewAnnotation(slot, value string) Annotation {
	return Annotation{Slot: slot, Value: value}
}

// SpanUnset marks a SlotValueAnnotation without character offsets.
const SpanUnset = -1

// SlotValueAnnotation is an annotation additionally carrying the character
// offsets of the value within the source text. Offsets are optional; SpanUnset
// on both ends means no span information.
type SlotValueAnnotation struct {
	Annotation
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSlotValueAnnotation creates a slot-value annotation with offsets.
func NewSlotValueAnnotation(slot, value string, start, end int) SlotValueAnnotation {
	return SlotValueAnnotation{Annotation: Annotation{Slot: slot, Value: value}, Start: start, End: end}
}

// NewSlotValue creates a slot-value annotation without span information.
func NewSlotValue(slot, value string) SlotValueAnnotation {
	return SlotValueAnnotation{Annotation: Annotation{Slot: slot, Value: value}, Start: SpanUnset, End: SpanUnset}
}

// HasSpan reports whether the annotation carries character offsets.
func (a SlotValueAnnotation) HasSpan() bool {
	return a.Start != SpanUnset && a.End != SpanUnset
}
