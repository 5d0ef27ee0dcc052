package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nathoo/mikdash/catalog"
	"github.com/nathoo/mikdash/engine"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/loader"
	"github.com/nathoo/mikdash/types"
)

func testDefs(t *testing.T) *state.Defs {
	t.Helper()
	defs, err := loader.LoadFS(catalog.FS, ".")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return defs
}

func newTestCLI(t *testing.T, input string, opts engine.Options) (*CLI, *bytes.Buffer) {
	t.Helper()
	defs := testDefs(t)
	eng := engine.New(defs, nil, opts)
	var out bytes.Buffer
	c := &CLI{
		Engine:    eng,
		Defs:      defs,
		In:        strings.NewReader(input),
		Out:       &out,
		ExportDir: t.TempDir(),
	}
	return c, &out
}

type memStore struct {
	saved map[string]*types.Ledger
	saves int
}

func (m *memStore) Load(_ context.Context, id string) (*types.Ledger, bool, error) {
	l, ok := m.saved[id]
	return l, ok, nil
}

func (m *memStore) Save(_ context.Context, id string, l *types.Ledger) error {
	cp := *l
	m.saved[id] = &cp
	m.saves++
	return nil
}

func TestCLI_IntroAndSurroundings(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n", engine.Options{})
	c.Run()

	output := out.String()
	if !strings.Contains(output, "You stand in the Azara") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "You stand at (0.0, 14.0)") {
		t.Errorf("expected starting position in output:\n%s", output)
	}
}

func TestCLI_BasicGameplay(t *testing.T) {
	c, out := newTestCLI(t, "go to shimon\nbuy keves\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "Bought 🐑 Keves (Lamb)!") {
		t.Errorf("expected purchase in output:\n%s", out.String())
	}
	if c.Engine.Ledger.Coins != 0 {
		t.Errorf("coins = %d", c.Engine.Ledger.Coins)
	}
}

func TestCLI_LessonsShowSource(t *testing.T) {
	c, out := newTestCLI(t, "go to kiyor\ndo\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "📖 Shemot 30:19-21") {
		t.Errorf("expected lesson source:\n%s", out.String())
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n", engine.Options{})
	c.Run()

	output := out.String()
	for _, want := range []string{"/save", "/export", "/import", "/quit", "offer <korban>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_ExportAndImport(t *testing.T) {
	dir := t.TempDir()
	defs := testDefs(t)

	var out bytes.Buffer
	c := &CLI{
		Engine:    engine.New(defs, nil, engine.Options{ProfileID: "p1"}),
		Defs:      defs,
		In:        strings.NewReader("go to shimon\nbuy tor\n/export test\n/quit\n"),
		Out:       &out,
		ExportDir: dir,
	}
	c.Run()
	if !strings.Contains(out.String(), "Ledger exported to test.") {
		t.Fatalf("expected export confirmation:\n%s", out.String())
	}

	var out2 bytes.Buffer
	c2 := &CLI{
		Engine:    engine.New(defs, nil, engine.Options{}),
		Defs:      defs,
		In:        strings.NewReader("/import test\n/quit\n"),
		Out:       &out2,
		ExportDir: dir,
	}
	c2.Run()
	if !strings.Contains(out2.String(), "Ledger imported from test") {
		t.Fatalf("expected import confirmation:\n%s", out2.String())
	}
	if c2.Engine.Ledger.Coins != 35 || c2.Engine.Ledger.Inventory["tor"] != 1 {
		t.Errorf("imported ledger = %+v", c2.Engine.Ledger)
	}
}

func TestCLI_ImportNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/import nonexistent\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "Import failed") {
		t.Error("expected import failure message")
	}
}

func TestCLI_SaveWithoutStore(t *testing.T) {
	c, out := newTestCLI(t, "/save\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "No profile store") {
		t.Error("expected no-store message")
	}
}

func TestCLI_SaveAndFlushOnQuit(t *testing.T) {
	store := &memStore{saved: map[string]*types.Ledger{}}
	c, out := newTestCLI(t, "/save\ngo to shimon\nbuy tor\n/quit\n", engine.Options{Store: store, ProfileID: "p1"})
	c.Run()

	if !strings.Contains(out.String(), "Progress saved.") {
		t.Error("expected save confirmation")
	}
	if store.saves != 2 {
		t.Errorf("saves = %d, want /save plus the flush on quit", store.saves)
	}
	if store.saved["p1"].Coins != 35 {
		t.Errorf("saved coins = %d, want 35", store.saved["p1"].Coins)
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\ngo north\n/trace\n/quit\n", engine.Options{})
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace]   player_moved") {
		t.Errorf("expected traced event:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "/state\n/quit\n", engine.Options{})
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Coins: 50  Level: 1") {
		t.Errorf("expected coins in state output:\n%s", output)
	}
	if !strings.Contains(output, "Position: (0.00, 14.00)") {
		t.Error("expected position in state output")
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	c, out := newTestCLI(t, "\n\n/quit\n", engine.Options{})
	c.Run()

	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines should be silently skipped by CLI")
	}
}

func TestCLI_CommentsSkipped(t *testing.T) {
	c, out := newTestCLI(t, "# buy keves\n/quit\n", engine.Options{})
	c.Run()

	if strings.Contains(out.String(), "Shimon's stall") {
		t.Error("comment lines must not reach the engine")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, out := newTestCLI(t, "status\nagain\ng\n/quit\n", engine.Options{})
	c.Run()

	if n := strings.Count(out.String(), "50 coins"); n != 3 {
		t.Errorf("status shown %d times, want 3", n)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n", engine.Options{})
	c.Run()

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}
