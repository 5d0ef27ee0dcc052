// Package engine provides the Step() orchestrator that turns one player
// command into ledger mutations, Avodah progress, lessons and events.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/mikdash/engine/achievements"
	"github.com/nathoo/mikdash/engine/avodah"
	"github.com/nathoo/mikdash/engine/events"
	"github.com/nathoo/mikdash/engine/ledger"
	"github.com/nathoo/mikdash/engine/parser"
	"github.com/nathoo/mikdash/engine/spatial"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// MoveStep is the distance covered by one "go <direction>".
const MoveStep = 2.0

// SpawnPoint is where the player enters the Azara, south of the Kevesh.
var SpawnPoint = spatial.Position{X: 0, Z: 14}

// Options configures a new Engine. Zero values select defaults.
type Options struct {
	Zones     spatial.Zones
	Store     Store
	ProfileID string
	Logger    *slog.Logger
	Now       func() time.Time
	Listeners []events.Listener
}

// Engine is the session controller: it owns the ledger, the Avodah
// machine and the player's position for one profile.
type Engine struct {
	Defs      *state.Defs
	Ledger    *types.Ledger
	Machine   *avodah.Machine
	Field     *spatial.Field
	Store     Store
	ProfileID string
	Logger    *slog.Logger
	Now       func() time.Time

	listeners      []events.Listener
	anchors        []spatial.Anchor // interaction order: shop, Leviim, lessons, altar
	instruments    []spatial.Anchor
	solids         []spatial.Anchor
	lastLesson     *types.Lesson
	lastCompletion *types.CompletionRecord
}

// New creates an engine. A nil ledger starts a fresh level 1 player.
func New(defs *state.Defs, l *types.Ledger, opts Options) *Engine {
	zones := opts.Zones
	if zones.AltarRadius == 0 {
		zones = spatial.DefaultZones()
	}
	if altar, ok := defs.Landmarks["altar"]; ok {
		zones.Altar = spatial.Position{X: altar.X, Z: altar.Z}
	}
	if l == nil {
		l = state.NewLedger(defs, 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		Defs:      defs,
		Ledger:    l,
		Machine:   avodah.New(defs, zones),
		Store:     opts.Store,
		ProfileID: opts.ProfileID,
		Logger:    logger,
		Now:       now,
	}
	e.buildAnchors()

	obstacles := make([]spatial.Rect, 0, len(e.solids))
	for _, a := range e.solids {
		obstacles = append(obstacles, a.Area)
	}
	e.Field = spatial.NewField(zones, SpawnPoint, obstacles)

	e.listeners = append([]events.Listener{events.LogListener{Logger: logger}}, opts.Listeners...)
	return e
}

// buildAnchors collects interactable landmarks and instruments. Earlier
// anchors win ties in Field.Nearest.
func (e *Engine) buildAnchors() {
	byInteraction := map[string][]spatial.Anchor{}
	for _, id := range sortedLandmarkIDs(e.Defs) {
		lm := e.Defs.Landmarks[id]
		a := spatial.Anchor{
			ID:    id,
			At:    spatial.Position{X: lm.X, Z: lm.Z},
			Area:  spatial.Footprint(lm.X, lm.Z, lm.W, lm.D),
			Solid: lm.Solid,
		}
		if lm.Solid {
			e.solids = append(e.solids, a)
		}
		if lm.Interact != "" {
			byInteraction[lm.Interact] = append(byInteraction[lm.Interact], a)
		}
	}
	for _, in := range state.SortedInstruments(e.Defs) {
		e.instruments = append(e.instruments, spatial.Anchor{ID: in.ID, At: spatial.Position{X: in.X, Z: in.Z}})
	}

	e.anchors = append(e.anchors, byInteraction["shop"]...)
	e.anchors = append(e.anchors, e.instruments...)
	e.anchors = append(e.anchors, byInteraction["lesson"]...)
	e.anchors = append(e.anchors, byInteraction["altar"]...)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var r types.Result

	intent := parser.Parse(input)
	if intent.Verb == "" {
		say(&r, "What do you want to do?")
		return r
	}

	switch intent.Verb {
	case "go":
		e.cmdGo(&r, intent)
	case "buy":
		e.cmdBuy(&r, intent)
	case "sell":
		e.cmdSell(&r, intent)
	case "offer":
		e.cmdOffer(&r, intent)
	case "do":
		e.cmdDo(&r)
	case "abandon":
		e.cmdAbandon(&r)
	case "listen":
		e.cmdListen(&r, intent)
	case "read":
		e.cmdRead(&r, intent)
	case "shir":
		e.cmdShir(&r)
	case "look":
		e.cmdLook(&r)
	case "examine":
		e.cmdExamine(&r, intent)
	case "inventory":
		e.cmdInventory(&r)
	case "status":
		e.cmdStatus(&r)
	case "steps":
		e.cmdSteps(&r)
	case "where":
		e.cmdWhere(&r)
	case "achievements":
		e.cmdAchievements(&r)
	case "shop":
		e.cmdShop(&r)
	case "offerings":
		e.cmdOfferings(&r)
	case "help":
		e.cmdHelp(&r)
	default:
		say(&r, fmt.Sprintf("I don't know how to %q. Type 'help' for commands.", intent.Verb))
	}

	e.settle(&r)
	events.Dispatch(r.Events, e.listeners)
	return r
}

// settle counts delivered lessons and unlocks any achievements the
// command earned. Runs after every command.
func (e *Engine) settle(r *types.Result) {
	for _, ls := range r.Lessons {
		ledger.RecordSourceRead(e.Ledger)
		emit(r, events.Lesson, map[string]any{"source": ls.Source})
	}
	if n := len(r.Lessons); n > 0 {
		last := r.Lessons[n-1]
		e.lastLesson = &last
	}
	e.announce(r, achievements.Apply(e.Defs, e.Ledger))
}

func (e *Engine) announce(r *types.Result, ids []string) {
	for _, id := range ids {
		a, _ := achievements.Lookup(e.Defs, id)
		say(r, fmt.Sprintf("🏆 Achievement: %s!", label(a.Emoji, a.Name)))
		emit(r, events.AchievementUnlocked, map[string]any{"achievement": id})
	}
}

// LastCompletion returns the record of the most recently finished
// offering, or nil.
func (e *Engine) LastCompletion() *types.CompletionRecord {
	return e.lastCompletion
}

// AddListener registers a listener for events from later steps.
func (e *Engine) AddListener(l events.Listener) {
	e.listeners = append(e.listeners, l)
}

func say(r *types.Result, lines ...string) {
	r.Output = append(r.Output, lines...)
}

func emit(r *types.Result, eventType string, data map[string]any) {
	r.Events = append(r.Events, events.New(eventType, data))
}

func teach(r *types.Result, lessons ...types.Lesson) {
	r.Lessons = append(r.Lessons, lessons...)
}

func label(emoji, name string) string {
	if emoji == "" {
		return name
	}
	return emoji + " " + name
}
