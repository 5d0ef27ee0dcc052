// Package events names the notifications the engine emits and fans them
// out to listeners. Dispatch is single pass: listeners cannot emit.
package events

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/nathoo/mikdash/types"
)

// Event types.
const (
	OfferingBegun       = "offering_begun"
	OfferingAbandoned   = "offering_abandoned"
	OfferingCompleted   = "offering_completed"
	StepCompleted       = "step_completed"
	WrongLocation       = "wrong_location"
	TooFar              = "too_far"
	AchievementUnlocked = "achievement_unlocked"
	Purchase            = "purchase"
	Sale                = "sale"
	InstrumentHeard     = "instrument_heard"
	Lesson              = "lesson"
	PlayerMoved         = "player_moved"
)

// Listener receives dispatched events.
type Listener interface {
	OnEvent(types.Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(types.Event)

func (f ListenerFunc) OnEvent(e types.Event) { f(e) }

// New builds an event. A nil data map is replaced by an empty one.
func New(eventType string, data map[string]any) types.Event {
	if data == nil {
		data = map[string]any{}
	}
	return types.Event{Type: eventType, Data: data}
}

// Dispatch delivers every event to every listener, in order.
func Dispatch(evts []types.Event, listeners []Listener) {
	for _, event := range evts {
		for _, l := range listeners {
			if l == nil {
				continue
			}
			l.OnEvent(event)
		}
	}
}

// Filter returns the events of the given type.
func Filter(evts []types.Event, eventType string) []types.Event {
	var result []types.Event
	for _, e := range evts {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// LogListener writes events to a structured logger at debug level, and
// completions and unlocks at info.
type LogListener struct {
	Logger *slog.Logger
}

func (l LogListener) OnEvent(e types.Event) {
	if l.Logger == nil {
		return
	}
	attrs := make([]any, 0, 2+len(e.Data)*2)
	attrs = append(attrs, "event", e.Type)
	for _, k := range slices.Sorted(maps.Keys(e.Data)) {
		attrs = append(attrs, k, e.Data[k])
	}
	level := slog.LevelDebug
	switch e.Type {
	case OfferingCompleted, AchievementUnlocked, OfferingBegun:
		level = slog.LevelInfo
	}
	l.Logger.Log(context.Background(), level, "game_event", attrs...)
}
