package events

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/nathoo/mikdash/types"
)

type recorder struct {
	got []string
}

func (r *recorder) OnEvent(e types.Event) { r.got = append(r.got, e.Type) }

func TestNew_NilDataIsEmpty(t *testing.T) {
	e := New(Purchase, nil)
	if e.Type != Purchase {
		t.Errorf("type = %q", e.Type)
	}
	if e.Data == nil {
		t.Error("data should never be nil")
	}
}

func TestDispatch_DeliversInOrderToEveryListener(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	evts := []types.Event{
		New(OfferingBegun, nil),
		New(StepCompleted, nil),
		New(OfferingCompleted, nil),
	}

	Dispatch(evts, []Listener{a, nil, b})

	want := []string{OfferingBegun, StepCompleted, OfferingCompleted}
	for _, r := range []*recorder{a, b} {
		if len(r.got) != len(want) {
			t.Fatalf("got %v, want %v", r.got, want)
		}
		for i := range want {
			if r.got[i] != want[i] {
				t.Errorf("event %d = %q, want %q", i, r.got[i], want[i])
			}
		}
	}
}

func TestDispatch_NoListeners(t *testing.T) {
	// Must not panic.
	Dispatch([]types.Event{New(Sale, nil)}, nil)
}

func TestListenerFunc(t *testing.T) {
	count := 0
	Dispatch([]types.Event{New(Lesson, nil), New(Lesson, nil)}, []Listener{
		ListenerFunc(func(types.Event) { count++ }),
	})
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestFilter(t *testing.T) {
	evts := []types.Event{
		New(Purchase, map[string]any{"item": "keves"}),
		New(Sale, nil),
		New(Purchase, map[string]any{"item": "tor"}),
	}
	got := Filter(evts, Purchase)
	if len(got) != 2 || got[1].Data["item"] != "tor" {
		t.Errorf("Filter = %+v", got)
	}
	if Filter(evts, AchievementUnlocked) != nil {
		t.Error("expected nil for no matches")
	}
}

func TestLogListener_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	l := LogListener{Logger: logger}

	l.OnEvent(New(PlayerMoved, map[string]any{"x": 1.0}))
	if buf.Len() != 0 {
		t.Errorf("debug event should be filtered at info: %q", buf.String())
	}

	l.OnEvent(New(OfferingCompleted, map[string]any{"offering": "tamid"}))
	out := buf.String()
	if !strings.Contains(out, "event=offering_completed") || !strings.Contains(out, "offering=tamid") {
		t.Errorf("log line = %q", out)
	}
}

func TestLogListener_SortedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	l := LogListener{Logger: logger}
	e := New(Purchase, map[string]any{"price": 15, "item": "tor", "coins": 35, "amount": 1})

	l.OnEvent(e)
	first := buf.String()
	if !strings.Contains(first, "event=purchase amount=1 coins=35 item=tor price=15") {
		t.Errorf("attrs not sorted: %q", first)
	}
	for range 20 {
		buf.Reset()
		l.OnEvent(e)
		if buf.String() != first {
			t.Fatalf("log line changed between runs:\n%q\n%q", first, buf.String())
		}
	}
}

func TestLogListener_NilLogger(t *testing.T) {
	LogListener{}.OnEvent(New(Sale, nil))
}
