package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/mikdash/engine/avodah"
	"github.com/nathoo/mikdash/engine/ledger"
	"github.com/nathoo/mikdash/engine/resolve"
	"github.com/nathoo/mikdash/engine/spatial"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// Prompt returns the contextual hint for the player's position, or ""
// when nothing is in reach.
func (e *Engine) Prompt() string {
	if step, ok := e.Machine.CurrentStep(); ok {
		o := e.Machine.Session().Offering
		hint := "do: " + label(step.Emoji, step.Name)
		switch {
		case step.ID == types.StepShechita && o.SlaughterLocation == types.SlaughterNorth:
			if e.Field.InNorthZone() {
				hint += " ✅ (north zone)"
			} else {
				hint += " ⚠️ (go to the north!)"
			}
		case needsAltar(step.ID, o) && !e.Field.Zones().NearAltar(e.Field.DistanceToAltar()):
			hint += " (walk to the Mizbeach)"
		}
		return hint
	}

	a, _, ok := e.Field.Nearest(e.anchors)
	if !ok {
		return ""
	}
	if inst, ok := e.Defs.Instruments[a.ID]; ok {
		return fmt.Sprintf("do: listen to the %s %s", inst.Name, inst.Emoji)
	}
	lm := e.Defs.Landmarks[a.ID]
	switch lm.Interact {
	case "shop":
		return "do: talk to Shimon 🏪"
	case "lesson":
		return "do: learn at the " + lm.Name
	case "altar":
		if len(state.Animals(e.Ledger, e.Defs)) > 0 {
			return "do: begin the Avodah 🔥"
		}
	}
	return ""
}

func needsAltar(stepID string, o types.OfferingDef) bool {
	switch stepID {
	case types.StepHolacha, types.StepZerika, types.StepHaktarah:
		return true
	case types.StepShechita:
		return o.SlaughterLocation == types.SlaughterOnAltar
	}
	return false
}

func (e *Engine) zoneName() string {
	if e.Field.InNorthZone() {
		return "the north of the Azara"
	}
	return "the Azara"
}

func (e *Engine) cmdLook(r *types.Result) {
	p := e.Field.Position()
	say(r, fmt.Sprintf("You stand at (%.1f, %.1f) in %s.", p.X, p.Z, e.zoneName()))
	say(r, fmt.Sprintf("The Mizbeach is %.1f away.", e.Field.DistanceToAltar()))

	var nearby []string
	for _, id := range sortedLandmarkIDs(e.Defs) {
		lm := e.Defs.Landmarks[id]
		a := spatial.Anchor{At: spatial.Position{X: lm.X, Z: lm.Z}, Area: spatial.Footprint(lm.X, lm.Z, lm.W, lm.D), Solid: lm.Solid}
		if a.DistanceFrom(p) <= 2*e.Field.Zones().InteractRadius {
			nearby = append(nearby, lm.Name)
		}
	}
	for _, in := range state.SortedInstruments(e.Defs) {
		if spatial.Distance(p, spatial.Position{X: in.X, Z: in.Z}) <= e.Field.Zones().InteractRadius {
			nearby = append(nearby, "a Levite with the "+in.Name)
		}
	}
	if len(nearby) > 0 {
		say(r, "Nearby: "+strings.Join(nearby, ", ")+".")
	}
	if hint := e.Prompt(); hint != "" {
		say(r, "→ "+hint)
	}
}

func (e *Engine) cmdExamine(r *types.Result, in types.Intent) {
	if in.Object == "" {
		e.cmdLook(r)
		return
	}
	m, err := resolve.Any(e.Defs, in.Object)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}
	switch m.Kind {
	case resolve.KindItem:
		it := e.Defs.Items[m.ID]
		say(r, fmt.Sprintf("%s  🪙%d (sells for 🪙%d)", label(it.Emoji, it.Name), it.Price, ledger.SellPrice(it)))
		if it.Desc != "" {
			say(r, it.Desc)
		}
		if n := state.Count(e.Ledger, it.ID); n > 0 {
			say(r, fmt.Sprintf("You have %d.", n))
		}
	case resolve.KindOffering:
		e.describeOffering(r, e.Defs.Offerings[m.ID])
	case resolve.KindInstrument:
		inst := e.Defs.Instruments[m.ID]
		say(r, fmt.Sprintf("%s (%s)", label(inst.Emoji, inst.Name), inst.NameHe), inst.Desc)
	case resolve.KindLandmark:
		lm := e.Defs.Landmarks[m.ID]
		say(r, lm.Name)
		if lm.Text != "" {
			say(r, lm.Text)
		}
	}
}

func (e *Engine) describeOffering(r *types.Result, o types.OfferingDef) {
	animal := e.Defs.Items[o.Animal]
	steps, _ := avodah.StepsFor(e.Defs, o.Type)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	say(r,
		fmt.Sprintf("%s (%s)", label(o.Emoji, o.Name), o.NameHe),
		fmt.Sprintf("  Animal: %s", label(animal.Emoji, animal.Name)),
		fmt.Sprintf("  Category: %s, level %d, reward 🪙%d", o.Category, o.LevelRequired, o.CoinReward),
		fmt.Sprintf("  Slaughter: %s", slaughterText(o.SlaughterLocation)),
		fmt.Sprintf("  Eaten by: %s", avodah.FormatEatenBy(o.EatenBy)),
		fmt.Sprintf("  Steps: %s", strings.Join(names, " → ")),
	)
}

func slaughterText(loc string) string {
	switch loc {
	case types.SlaughterNorth:
		return "north of the Mizbeach"
	case types.SlaughterOnAltar:
		return "on the Mizbeach (melika)"
	default:
		return "anywhere in the Azara"
	}
}

func (e *Engine) cmdInventory(r *types.Result) {
	var lines []string
	for _, it := range state.SortedItems(e.Defs) {
		if n := state.Count(e.Ledger, it.ID); n > 0 {
			lines = append(lines, fmt.Sprintf("  %s ×%d", label(it.Emoji, it.Name), n))
		}
	}
	if len(lines) == 0 {
		say(r, "Your inventory is empty.")
		return
	}
	say(r, "You carry:")
	say(r, lines...)
}

func (e *Engine) cmdStatus(r *types.Result) {
	l := e.Ledger
	say(r,
		fmt.Sprintf("🪙 %d coins, level %d", l.Coins, l.Level),
		fmt.Sprintf("Korbanot: %d completed, %d perfect, %d Tamid", l.OfferingsCompleted, l.OfferingsPerfect, l.DailyCount),
		fmt.Sprintf("Achievements: %d/%d, sources read: %d", len(l.Achievements), len(e.Defs.Achievements), l.SourcesRead),
		fmt.Sprintf("Position: (%.1f, %.1f) in %s", e.Field.Position().X, e.Field.Position().Z, e.zoneName()),
	)
	if s := e.Machine.Session(); s != nil {
		say(r, fmt.Sprintf("Performing: %s (step %d/%d, mistakes %d)",
			s.Offering.Name, s.StepIndex+1, len(s.Steps), s.Mistakes))
	}
}

func (e *Engine) cmdSteps(r *types.Result) {
	snap := e.Machine.Snapshot()
	if !snap.Active {
		say(r, "No korban in progress.")
		return
	}
	say(r, snap.OfferingName+":")
	for _, v := range snap.Steps {
		mark := "[ ]"
		switch v.Status {
		case avodah.StatusDone:
			mark = "[x]"
		case avodah.StatusActive:
			mark = "[>]"
		}
		say(r, fmt.Sprintf("  %s %s (%s)", mark, label(v.Step.Emoji, v.Step.Name), v.Step.NameHe))
	}
	if snap.Mistakes > 0 {
		say(r, fmt.Sprintf("Mistakes: %d", snap.Mistakes))
	}
}

// cmdWhere points the player at the next place they need to be.
func (e *Engine) cmdWhere(r *types.Result) {
	if step, ok := e.Machine.CurrentStep(); ok {
		o := e.Machine.Session().Offering
		switch {
		case step.ID == types.StepShechita && o.SlaughterLocation == types.SlaughterNorth:
			if e.Field.InNorthZone() {
				say(r, "You are in the north zone. Perform the Shechita here ('do').")
				return
			}
			e.guide(r, "slaughter")
		case needsAltar(step.ID, o):
			if e.Field.Zones().NearAltar(e.Field.DistanceToAltar()) {
				say(r, fmt.Sprintf("You are close enough to the Mizbeach. Perform the %s ('do').", step.Name))
				return
			}
			e.guide(r, "altar")
		default:
			say(r, fmt.Sprintf("Perform the %s right here ('do').", step.Name))
		}
		return
	}
	if len(state.Animals(e.Ledger, e.Defs)) == 0 {
		e.guide(r, "shimon")
		return
	}
	e.guide(r, "altar")
}

func (e *Engine) guide(r *types.Result, landmarkID string) {
	lm, ok := e.Defs.Landmarks[landmarkID]
	if !ok {
		say(r, "You are on your own here.")
		return
	}
	dir, dist := e.Field.Guide(spatial.Position{X: lm.X, Z: lm.Z})
	if dir == "here" {
		say(r, fmt.Sprintf("You are at %s.", lm.Name))
		return
	}
	say(r, fmt.Sprintf("%s is %.1f to the %s ('go to %s').", lm.Name, dist, dir, landmarkID))
}

func (e *Engine) cmdAchievements(r *types.Result) {
	for _, a := range e.Defs.Achievements {
		mark := "[ ]"
		if state.HasAchievement(e.Ledger, a.ID) {
			mark = "[x]"
		}
		say(r, fmt.Sprintf("%s %s: %s", mark, label(a.Emoji, a.Name), a.Desc))
	}
}

// cmdShop lists what Shimon sells at the player's level.
func (e *Engine) cmdShop(r *types.Result) {
	say(r, fmt.Sprintf("Shimon's stall (you have 🪙%d):", e.Ledger.Coins))
	for _, it := range state.SortedItems(e.Defs) {
		if it.LevelRequired > e.Ledger.Level {
			continue
		}
		say(r, fmt.Sprintf("  %s  🪙%d", label(it.Emoji, it.Name), it.Price))
	}
	say(r, "Type 'buy <item>' to purchase or 'sell <item>' for half price.")
}

func (e *Engine) cmdOfferings(r *types.Result) {
	for _, o := range state.SortedOfferings(e.Defs) {
		if o.LevelRequired > e.Ledger.Level {
			continue
		}
		animal := e.Defs.Items[o.Animal]
		say(r, fmt.Sprintf("  %s [%s]  %s, 🪙%d", label(o.Emoji, o.Name), o.ID, animal.Name, o.CoinReward))
	}
}

func (e *Engine) cmdHelp(r *types.Result) {
	say(r,
		"Commands:",
		"  go <direction> [n] / go to <place>   walk (n, s, e, w, ne, nw, se, sw)",
		"  buy / sell <item> [n]                trade with Shimon",
		"  offer <korban>                       begin a korban",
		"  do                                   perform the next step or interact",
		"  abandon                              give up the current korban",
		"  listen [instrument]                  hear the Leviim",
		"  read [thing]                         read a source (again)",
		"  shir                                 today's Shir shel Yom",
		"  look, examine <thing>, where         find your way",
		"  inventory, status, steps             your progress",
		"  shop, offerings, achievements        catalogs",
	)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
