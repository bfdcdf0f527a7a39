// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package campaign

import "sync"

// Stage tags a step of the pipeline. The four outcome stages
// (requires_settings, needs_clarification, complete, error) are terminal.
type Stage string

const (
	StageAnalyzingBrief          Stage = "analyzing_brief"
	StageRequiresSettings        Stage = "requires_settings"
	StageNeedsClarification      Stage = "needs_clarification"
	StageExtractingBrand         Stage = "extracting_brand"
	StageGeneratingImages        Stage = "generating_images"
	StageGeneratingCopy          Stage = "generating_copy"
	StageFetchingRecommendations Stage = "fetching_recommendations"
	StageAssemblingHTML          Stage = "assembling_html"
	StageComplete                Stage = "complete"
	StageError                   Stage = "error"
)

// Event is one progress notification.
type Event struct {
	Stage   Stage           `json:"stage"`
	Message string          `json:"message,omitempty"`
	Data    any             `json:"data,omitempty"`
	Result  *CampaignResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Sink receives progress events of a single run, in order.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// emitter forwards each stage to the sink at most once and nothing after a
// terminal event.
type emitter struct {
	mu       sync.Mutex
	sink     Sink
	seen     map[Stage]bool
	finished bool
}

func newEmitter(sink Sink) *emitter {
	return &emitter{sink: sink, seen: make(map[Stage]bool)}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sink == nil || e.finished || e.seen[ev.Stage] {
		return
	}
	e.seen[ev.Stage] = true
	switch ev.Stage {
	case StageRequiresSettings, StageNeedsClarification, StageComplete, StageError:
		e.finished = true
	}
	e.sink.Emit(ev)
}

func (e *emitter) stage(s Stage, msg string, data any) {
	e.emit(Event{Stage: s, Message: msg, Data: data})
}
