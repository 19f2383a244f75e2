package lineage

// ReasoningKind tags the active case of a ReasoningState.
type ReasoningKind string

// Reasoning kinds.
const (
	KindDraft     ReasoningKind = "draft"
	KindCritique  ReasoningKind = "critique"
	KindFinalSpec ReasoningKind = "final_spec"
)

// ReasoningState is the payload of a reasoning step: exactly one of Draft,
// Critique or FinalSpec. Which case a step carries is decided by the arrow
// that produced it, not by the type.
type ReasoningState interface {
	Kind() ReasoningKind
	Text() string
	reasoningState()
}

// Draft is a candidate answer.
type Draft string

// Critique is a review of the latest text on the branch.
type Critique string

// FinalSpec is an answer the caller has accepted.
type FinalSpec string

func (Draft) Kind() ReasoningKind     { return KindDraft }
func (Critique) Kind() ReasoningKind  { return KindCritique }
func (FinalSpec) Kind() ReasoningKind { return KindFinalSpec }

func (d Draft) Text() string     { return string(d) }
func (c Critique) Text() string  { return string(c) }
func (f FinalSpec) Text() string { return string(f) }

func (Draft) reasoningState()     {}
func (Critique) reasoningState()  {}
func (FinalSpec) reasoningState() {}

// NewReasoningState builds the state for kind. Unknown kinds report false.
func NewReasoningState(kind ReasoningKind, text string) (ReasoningState, bool) {
	switch kind {
	case KindDraft:
		return Draft(text), true
	case KindCritique:
		return Critique(text), true
	case KindFinalSpec:
		return FinalSpec(text), true
	default:
		return nil, false
	}
}
