package dialogue

// Participant tags an utterance with the side of the conversation that
// produced it.
type Participant string

const (
	ParticipantAgent Participant = "AGENT"
	ParticipantUser  Participant = "USER"
)

// Utterance is one turn's worth of text. The text is immutable after
// construction; the participant tag and utterance id are assigned once by the
// dialogue connector when the utterance is registered and never change
// afterwards.
type Utterance struct {
	text        string
	intent      *Intent
	annotations []Annotation
	participant Participant
	id          string
}

// UtteranceOption configures an utterance at construction time.
type UtteranceOption func(*Utterance)

// WithIntent attaches an intent.
func WithIntent(intent *Intent) UtteranceOption {
	return func(u *Utterance) { u.intent = intent }
}

// WithAnnotations attaches annotations.
func WithAnnotations(annotations ...Annotation) UtteranceOption {
	return func(u *Utterance) { u.annotations = append(u.annotations, annotations...) }
}

// WithParticipant tags the utterance with its producer.
func WithParticipant(p Participant) UtteranceOption {
	return func(u *Utterance) { u.participant = p }
}

// WithID presets the utterance id. Connector-registered utterances normally
// leave this unset and receive a derived id on append.
func WithID(id string) UtteranceOption {
	return func(u *Utterance) { u.id = id }
}

// NewUtterance creates an utterance with the given text.
func NewUtterance(text string, opts ...UtteranceOption) *Utterance {
	u := &Utterance{text: text}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Utterance) Text() string {
	return u.text
}

func (u *Utterance) Intent() *Intent {
	return u.intent
}

// Annotations returns a copy of the annotation list.
func (u *Utterance) Annotations() []Annotation {
	out := make([]Annotation, len(u.annotations))
	copy(out, u.annotations)
	return out
}

func (u *Utterance) Participant() Participant {
	return u.participant
}

func (u *Utterance) ID() string {
	return u.id
}

// AssignParticipant sets the participant tag when it is still unset.
func (u *Utterance) AssignParticipant(p Participant) {
	if u.participant == "" {
		u.participant = p
	}
}

// AssignID sets the utterance id when it is still unset.
func (u *Utterance) AssignID(id string) {
	if u.id == "" {
		u.id = id
	}
}

// Equal reports value equality: identical text, equal intent and the same
// multiset of annotations. Participant tag and id are excluded, so an
// utterance compares equal to its pre-registration copy.
func (u *Utterance) Equal(other *Utterance) bool {
	if u == nil || other == nil {
		return u == other
	}
	if u.text != other.text {
		return false
	}
	if !u.intent.Equal(other.intent) {
		return false
	}
	if len(u.annotations) != len(other.annotations) {
		return false
	}
	counts := make(map[Annotation]int, len(u.annotations))
	for _, a := range u.annotations {
		counts[a]++
	}
	for _, a := range other.annotations {
		counts[a]--
		if counts[a] < 0 {
			return false
		}
	}
	return true
}

// AnnotatedUtterance extends Utterance with dialogue acts and a free-form
// metadata map (satisfaction scores, timestamps and similar processing
// artefacts).
type AnnotatedUtterance struct {
	Utterance
	acts     []DialogueAct
	metadata map[string]any
}

// NewAnnotatedUtterance creates an annotated utterance with the given text.
func NewAnnotatedUtterance(text string, opts ...UtteranceOption) *AnnotatedUtterance {
	return &AnnotatedUtterance{Utterance: *NewUtterance(text, opts...)}
}

// Annotate wraps a plain utterance into an annotated one.
func Annotate(u *Utterance) *AnnotatedUtterance {
	if u == nil {
		return nil
	}
	return &AnnotatedUtterance{Utterance: *u}
}

// DialogueActs returns a copy of the attached dialogue acts.
func (u *AnnotatedUtterance) DialogueActs() []DialogueAct {
	out := make([]DialogueAct, len(u.acts))
	copy(out, u.acts)
	return out
}

// AddDialogueAct appends one dialogue act.
func (u *AnnotatedUtterance) AddDialogueAct(act DialogueAct) {
	u.acts = append(u.acts, act)
}

// Metadata returns the metadata map, creating it on first use. The map is
// shared, not copied; callers may mutate it directly.
func (u *AnnotatedUtterance) Metadata() map[string]any {
	if u.metadata == nil {
		u.metadata = make(map[string]any)
	}
	return u.metadata
}

// SetMetadata stores one metadata entry.
func (u *AnnotatedUtterance) SetMetadata(key string, value any) {
	u.Metadata()[key] = value
}

// Copy produces an independent deep copy. NLG uses this to instantiate
// templates without mutating the store.
func (u *AnnotatedUtterance) Copy() *AnnotatedUtterance {
	out := &AnnotatedUtterance{
		Utterance: Utterance{
			text:        u.text,
			intent:      u.intent,
			participant: u.participant,
			id:          u.id,
		},
	}
	out.annotations = make([]Annotation, len(u.annotations))
	copy(out.annotations, u.annotations)
	out.acts = make([]DialogueAct, len(u.acts))
	copy(out.acts, u.acts)
	if u.metadata != nil {
		out.metadata = make(map[string]any, len(u.metadata))
		for k, v := range u.metadata {
			out.metadata[k] = v
		}
	}
	return out
}

// ClearAnnotations drops the annotation list. Template instantiation clears a
// template's required-slot list before attaching the supplied values.
func (u *AnnotatedUtterance) ClearAnnotations() {
	u.annotations = nil
}

// AddAnnotation appends one annotation.
func (u *AnnotatedUtterance) AddAnnotation(a Annotation) {
	u.annotations = append(u.annotations, a)
}

// SetText replaces the text. Template instantiation rewrites the text of a
// copied template; utterances already registered in a dialogue are never
// rewritten.
func (u *AnnotatedUtterance) SetText(text string) {
	u.text = text
}

// SetIntent replaces the intent.
func (u *AnnotatedUtterance) SetIntent(intent *Intent) {
	u.intent = intent
}
