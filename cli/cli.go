// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the Mikdash engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/mikdash/engine"
	"github.com/nathoo/mikdash/engine/save"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	ExportDir string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:    eng,
		Defs:      defs,
		In:        os.Stdin,
		Out:       os.Stdout,
		ExportDir: filepath.Join(home, ".mikdash", "exports"),
	}
}

// Run starts the game loop. It shows the intro and the player's
// surroundings, then loops: prompt → input → dispatch → output. The ledger
// is flushed when the loop ends.
func (c *CLI) Run() {
	defer c.Engine.Flush(context.Background())

	if c.Defs.Game.Intro != "" {
		c.printLine(c.Defs.Game.Intro)
		c.printLine("")
	}
	c.printResult(c.Engine.Step("look"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Shalom.")
		return true

	case "/save":
		c.cmdSave()

	case "/export":
		c.cmdExport(arg)

	case "/import":
		c.cmdImport(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave() {
	if c.Engine.Store == nil {
		c.printSystem("No profile store; use /export instead.")
		return
	}
	if err := c.Engine.Flush(context.Background()); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem("Progress saved.")
}

func (c *CLI) cmdExport(name string) {
	if name == "" {
		name = "ledger"
	}

	data, err := save.Save(c.Engine.ProfileID, c.Engine.Ledger, time.Now())
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.ExportDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	path := filepath.Join(c.ExportDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Ledger exported to %s.", name))
}

func (c *CLI) cmdImport(name string) {
	if name == "" {
		name = "ledger"
	}

	data, err := os.ReadFile(filepath.Join(c.ExportDir, name+".json"))
	if err != nil {
		c.printSystem(fmt.Sprintf("Import failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Import failed: %v", err))
		return
	}
	if c.Engine.Machine.Cancel() {
		c.printSystem("The korban in progress was abandoned.")
	}
	save.ApplySave(c.Engine.Ledger, sd)
	c.printSystem(fmt.Sprintf("Ledger imported from %s (🪙%d, level %d).", name, sd.Ledger.Coins, sd.Ledger.Level))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save           Save progress to your profile",
		"  /export [name]  Write the ledger to a JSON file (default: ledger)",
		"  /import [name]  Replace the ledger from a JSON file",
		"  /quit           Exit (progress is saved)",
		"  /help           Show this help",
		"  /state          Debug: dump the ledger",
		"  /trace          Toggle debug trace output",
		"",
	}
	for _, line := range help {
		c.printLine(line)
	}
	c.printResult(c.Engine.Step("help"))
	c.printLine("  again (g)                            repeat your last command")
}

func (c *CLI) cmdState() {
	l := c.Engine.Ledger
	p := c.Engine.Field.Position()
	c.printSystem(fmt.Sprintf("Profile: %s", c.Engine.ProfileID))
	c.printSystem(fmt.Sprintf("Coins: %d  Level: %d", l.Coins, l.Level))
	c.printSystem(fmt.Sprintf("Position: (%.2f, %.2f) north=%v altar=%.2f",
		p.X, p.Z, c.Engine.Field.InNorthZone(), c.Engine.Field.DistanceToAltar()))
	c.printSystem(fmt.Sprintf("Inventory: %v", l.Inventory))
	c.printSystem(fmt.Sprintf("Earned: %d  Spent: %d  Sources: %d", l.TotalEarned, l.TotalSpent, l.SourcesRead))
	if len(l.Achievements) > 0 {
		c.printSystem(fmt.Sprintf("Achievements: %v", l.Achievements))
	}
	if snap := c.Engine.Machine.Snapshot(); snap.Active {
		c.printSystem(fmt.Sprintf("Session: %s step %d mistakes %d", snap.OfferingID, snap.StepIndex, snap.Mistakes))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
	for _, ls := range result.Lessons {
		c.printLine("")
		c.printLine(ls.Text)
		if ls.Source != "" {
			c.printLine("📖 " + ls.Source)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
