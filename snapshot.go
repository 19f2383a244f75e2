package lineage

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// ErrReplayDivergence is returned when a snapshot cannot be turned back into
// the events it was captured from: an unknown event type, a payload that does
// not decode, or a decoded event that disagrees with its record.
var ErrReplayDivergence = errors.New("replay divergence")

// Snapshot is the persisted form of a branch.
type Snapshot struct {
	Name   string        `json:"name"`
	Events []EventRecord `json:"events"`
}

// EventRecord is one event in a snapshot. Type is the discriminator that
// selects the decoder for Payload.
type EventRecord struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// EventDecoder rebuilds an event from its record.
type EventDecoder func(rec EventRecord) (PipelineEvent, error)

type reasoningPayload struct {
	Kind      ReasoningKind `json:"kind"`
	Text      string        `json:"text"`
	Prompt    string        `json:"prompt"`
	Topic     string        `json:"topic,omitempty"`
	Query     string        `json:"query,omitempty"`
	ToolCalls []ToolCall    `json:"tool_calls,omitempty"`
}

type ingestPayload struct {
	Source string   `json:"source"`
	IDs    []string `json:"ids"`
}

var (
	decodersMu sync.RWMutex
	decoders   = map[string]EventDecoder{
		EventTypeReasoning: decodeReasoning,
		EventTypeIngest:    decodeIngest,
	}
)

// RegisterEventType installs the decoder for a custom event type. Custom
// events are captured with encoding/json, so decode should unmarshal
// rec.Payload into the same type. Registering a built-in tag panics.
func RegisterEventType(tag string, decode EventDecoder) {
	if tag == EventTypeReasoning || tag == EventTypeIngest {
		panic(fmt.Sprintf("lineage: event type %q is built in", tag))
	}
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[tag] = decode
}

// Capture records every event of b in order.
func Capture(b Branch) (Snapshot, error) {
	events := b.view()
	snap := Snapshot{
		Name:   b.Name(),
		Events: make([]EventRecord, 0, len(events)),
	}
	for i, e := range events {
		payload, err := encodePayload(e)
		if err != nil {
			return Snapshot{}, fmt.Errorf("capture event %d (%s): %w", i, e.EventType(), err)
		}
		snap.Events = append(snap.Events, EventRecord{
			Type:      e.EventType(),
			ID:        e.EventID(),
			Timestamp: e.EventTime(),
			Payload:   payload,
		})
	}
	return snap, nil
}

// Restore rebuilds the branch captured in s. Store and source references are
// not part of a snapshot; pass them as options.
func Restore(s Snapshot, opts ...BranchOption) (Branch, error) {
	b := NewBranch(s.Name, opts...)
	if len(s.Events) == 0 {
		return b, nil
	}

	events := make([]PipelineEvent, 0, len(s.Events))
	for i, rec := range s.Events {
		decodersMu.RLock()
		decode, ok := decoders[rec.Type]
		decodersMu.RUnlock()
		if !ok {
			return Branch{}, fmt.Errorf("%w: event %d has unknown type %q", ErrReplayDivergence, i, rec.Type)
		}

		e, err := decode(rec)
		if err != nil {
			return Branch{}, fmt.Errorf("%w: event %d (%s): %v", ErrReplayDivergence, i, rec.Type, err)
		}
		if isNilEvent(e) {
			return Branch{}, fmt.Errorf("%w: event %d (%s) decoded to nil", ErrReplayDivergence, i, rec.Type)
		}
		if e.EventType() != rec.Type || e.EventID() != rec.ID {
			return Branch{}, fmt.Errorf("%w: event %d decoded as %s/%s, recorded as %s/%s",
				ErrReplayDivergence, i, e.EventType(), e.EventID(), rec.Type, rec.ID)
		}
		events = append(events, e)
	}

	b.log = &eventLog{items: events}
	b.n = len(events)
	return b, nil
}

// isNilEvent reports whether e is nil or a nil pointer.
func isNilEvent(e PipelineEvent) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func encodePayload(e PipelineEvent) (json.RawMessage, error) {
	switch ev := e.(type) {
	case ReasoningStep:
		if ev.State == nil {
			return nil, errors.New("reasoning step has no state")
		}
		return json.Marshal(reasoningPayload{
			Kind:      ev.State.Kind(),
			Text:      ev.State.Text(),
			Prompt:    ev.Prompt,
			Topic:     ev.Topic,
			Query:     ev.Query,
			ToolCalls: ev.ToolCalls,
		})
	case IngestBatch:
		return json.Marshal(ingestPayload{Source: ev.Source, IDs: ev.IDs})
	default:
		return json.Marshal(e)
	}
}

func decodeReasoning(rec EventRecord) (PipelineEvent, error) {
	var p reasoningPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, err
	}
	state, ok := NewReasoningState(p.Kind, p.Text)
	if !ok {
		return nil, fmt.Errorf("unknown reasoning kind %q", p.Kind)
	}
	return ReasoningStep{
		ID:        rec.ID,
		Kind:      state.Kind(),
		State:     state,
		Timestamp: rec.Timestamp,
		Prompt:    p.Prompt,
		Topic:     p.Topic,
		Query:     p.Query,
		ToolCalls: p.ToolCalls,
	}, nil
}

func decodeIngest(rec EventRecord) (PipelineEvent, error) {
	var p ingestPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, err
	}
	return IngestBatch{
		ID:        rec.ID,
		Source:    p.Source,
		IDs:       p.IDs,
		Timestamp: rec.Timestamp,
	}, nil
}
