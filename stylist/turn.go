package stylist

type TurnState string

const (
	TurnPending TurnState = "pending"
	TurnFinal   TurnState = "final"
)

// Turn is one entry of the visible transcript. Text of a pending turn only grows.
type Turn struct {
	ID        int          `json:"id"`
	Role      Role         `json:"role"`
	Text      string       `json:"text"`
	Image     string       `json:"image,omitempty"`
	Citations []Citation   `json:"citations,omitempty"`
	State     TurnState    `json:"state"`
	IsError   bool         `json:"is_error,omitempty"`
	Variant   ModelVariant `json:"variant,omitempty"`
}

func (t Turn) clone() Turn {
	if t.Citations != nil {
		cs := make([]Citation, len(t.Citations))
		copy(cs, t.Citations)
		t.Citations = cs
	}
	return t
}

type EventKind string

const (
	EventTurnAdded   EventKind = "turn_added"
	EventTurnUpdated EventKind = "turn_updated"
	EventTurnFinal   EventKind = "turn_final"
)

type TurnEvent struct {
	Kind EventKind `json:"kind"`
	Turn Turn      `json:"turn"`
}

// emitter forwards events to a range-over-func consumer. Once the consumer
// stops, events are dropped but the send still runs to completion so the
// transcript stays whole.
type emitter struct {
	yield   func(TurnEvent) bool
	stopped bool
}

func (e *emitter) emit(kind EventKind, t Turn) {
	if e.stopped {
		return
	}
	if !e.yield(TurnEvent{Kind: kind, Turn: t.clone()}) {
		e.stopped = true
	}
}
