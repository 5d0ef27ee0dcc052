package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/mikdash/engine"
	"github.com/nathoo/mikdash/engine/save"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Options configures the TUI.
type Options struct {
	// Autosave is the interval between background saves. Zero disables
	// them; the ledger is still saved on exit.
	Autosave  time.Duration
	ExportDir string
}

// Model is the Bubble Tea model for the Mikdash TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width     int
	height    int
	ready     bool
	trace     bool
	quitting  bool
	lastCmd   string
	exportDir string
	autosave  time.Duration
	lastSave  time.Time
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	lessons  []types.Lesson
	isSystem bool // true for meta-command output
}

// autosaveMsg fires on every autosave tick.
type autosaveMsg time.Time

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	exportDir := opts.ExportDir
	if exportDir == "" {
		home, _ := os.UserHomeDir()
		exportDir = filepath.Join(home, ".mikdash", "exports")
	}
	return Model{
		engine:    eng,
		defs:      defs,
		input:     ti,
		history:   NewHistory(100),
		exportDir: exportDir,
		autosave:  opts.Autosave,
	}
}

// Run starts the Bubble Tea program and saves the ledger when it exits.
func Run(eng *engine.Engine, defs *state.Defs, opts Options) error {
	m := New(eng, defs, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	_, err := p.Run()
	eng.Flush(context.Background())
	return err
}

// Init returns the initial commands: intro text, cursor blink and the
// first autosave tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput(), m.scheduleAutosave())
}

func (m Model) scheduleAutosave() tea.Cmd {
	if m.autosave <= 0 {
		return nil
	}
	return tea.Tick(m.autosave, func(t time.Time) tea.Msg { return autosaveMsg(t) })
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		g := m.defs.Game
		header := g.Title
		if g.Version != "" {
			header += " v" + g.Version
		}
		if g.Author != "" {
			header += " by " + g.Author
		}
		lines = append(lines, header, "")

		if g.Intro != "" {
			lines = append(lines, g.Intro, "")
		}

		result := m.engine.Step("look")
		lines = append(lines, result.Output...)

		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output,
// autosave ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case autosaveMsg:
		if err := m.engine.Flush(context.Background()); err == nil {
			m.lastSave = time.Time(msg)
		}
		return m, m.scheduleAutosave()

	case tea.BlurMsg:
		// Focus loss is the terminal's visibility change.
		if err := m.engine.Flush(context.Background()); err == nil {
			m.lastSave = m.engine.Now()
		}
		return m, nil

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output, lessons: result.Lessons})
	return m, nil
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	for _, ls := range msg.lessons {
		m.rawLines = append(m.rawLines, rawLine{}, rawLine{text: ls.Text, kind: kindLesson})
		if ls.Source != "" {
			m.rawLines = append(m.rawLines, rawLine{text: "📖 " + ls.Source, kind: kindSource})
		}
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapWidth := width
		if rl.kind == kindLesson {
			wrapWidth = max(width-2, 8) // border and padding
		}
		wrapped := wordWrap(rl.text, wrapWidth)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHint:
		return styleHint.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindAchievement:
		return styleAchievement.Render(line)
	case kindLesson:
		return styleLesson.Render(line)
	case kindSource:
		return styleSource.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Existing newlines are kept as paragraph breaks.
func wordWrap(text string, width int) string {
	if strings.Contains(text, "\n") {
		paras := strings.Split(text, "\n")
		for i, p := range paras {
			paras[i] = wordWrap(p, width)
		}
		return strings.Join(paras, "\n")
	}
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len([]rune(word))

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Shalom."}, true

	case "/save":
		return m.cmdSave(), false

	case "/export":
		return m.cmdExport(arg), false

	case "/import":
		return m.cmdImport(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave() []string {
	if m.engine.Store == nil {
		return []string{"No profile store; use /export instead."}
	}
	if err := m.engine.Flush(context.Background()); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	m.lastSave = time.Now()
	return []string{"Progress saved."}
}

func (m *Model) cmdExport(name string) []string {
	if name == "" {
		name = "ledger"
	}

	data, err := save.Save(m.engine.ProfileID, m.engine.Ledger, time.Now())
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	if err := os.MkdirAll(m.exportDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	path := filepath.Join(m.exportDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}

	return []string{fmt.Sprintf("Ledger exported to %s.", name)}
}

func (m *Model) cmdImport(name string) []string {
	if name == "" {
		name = "ledger"
	}

	data, err := os.ReadFile(filepath.Join(m.exportDir, name+".json"))
	if err != nil {
		return []string{fmt.Sprintf("Import failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Import failed: %v", err)}
	}

	var output []string
	if m.engine.Machine.Cancel() {
		output = append(output, "The korban in progress was abandoned.")
	}
	save.ApplySave(m.engine.Ledger, sd)
	return append(output, fmt.Sprintf("Ledger imported from %s (🪙%d, level %d).", name, sd.Ledger.Coins, sd.Ledger.Level))
}

func (m *Model) cmdHelp() []string {
	output := []string{
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
	output = append(output, m.engine.Step("help").Output...)
	return append(output,
		"  again (g)                            repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	)
}

func (m *Model) cmdState() []string {
	l := m.engine.Ledger
	p := m.engine.Field.Position()
	output := []string{
		fmt.Sprintf("Profile: %s", m.engine.ProfileID),
		fmt.Sprintf("Coins: %d  Level: %d", l.Coins, l.Level),
		fmt.Sprintf("Position: (%.2f, %.2f) north=%v altar=%.2f",
			p.X, p.Z, m.engine.Field.InNorthZone(), m.engine.Field.DistanceToAltar()),
		fmt.Sprintf("Inventory: %v", l.Inventory),
		fmt.Sprintf("Earned: %d  Spent: %d  Sources: %d", l.TotalEarned, l.TotalSpent, l.SourcesRead),
	}
	if len(l.Achievements) > 0 {
		output = append(output, fmt.Sprintf("Achievements: %v", l.Achievements))
	}
	if snap := m.engine.Machine.Snapshot(); snap.Active {
		output = append(output, fmt.Sprintf("Session: %s step %d mistakes %d", snap.OfferingID, snap.StepIndex, snap.Mistakes))
	}
	if !m.lastSave.IsZero() {
		output = append(output, "Last saved: "+m.lastSave.Format(time.Kitchen))
	}
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
