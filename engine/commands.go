package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/mikdash/engine/avodah"
	"github.com/nathoo/mikdash/engine/events"
	"github.com/nathoo/mikdash/engine/ledger"
	"github.com/nathoo/mikdash/engine/resolve"
	"github.com/nathoo/mikdash/engine/spatial"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

// shirSource is the Mishnah listing the Levites' daily psalms.
const shirSource = "Tamid 7:4"

func (e *Engine) cmdGo(r *types.Result, in types.Intent) {
	place := in.Target
	if place == "" {
		if dir, ok := spatial.Direction(in.Object); ok {
			e.walk(r, in.Object, dir, in.Amount)
			return
		}
		place = in.Object
	}
	if place == "" {
		say(r, "Go where? Try a direction (north, se) or a place ('go to altar').")
		return
	}
	e.walkTo(r, place)
}

func (e *Engine) walk(r *types.Result, name string, dir spatial.Position, n int) {
	n = max(n, 1)
	wasNorth := e.Field.InNorthZone()
	d := MoveStep * float64(n)
	dist, blocked := e.Field.Move(dir.X*d, dir.Z*d)

	switch {
	case blocked && dist == 0:
		say(r, fmt.Sprintf("%s blocks your way.", e.obstacleName()))
	case blocked:
		say(r, fmt.Sprintf("You walk %s until %s blocks your way.", name, e.obstacleName()))
	case dist == 0:
		say(r, "The courtyard wall stops you.")
	default:
		say(r, fmt.Sprintf("You walk %s.", name))
	}
	e.moved(r, wasNorth)
}

func (e *Engine) walkTo(r *types.Result, place string) {
	target, name, err := e.placePosition(place)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}
	wasNorth := e.Field.InNorthZone()
	if _, blocked := e.Field.WalkTo(target); blocked {
		say(r, fmt.Sprintf("You head toward %s but the way is blocked.", name))
	} else {
		say(r, fmt.Sprintf("You walk to %s.", name))
	}
	e.moved(r, wasNorth)
}

// placePosition resolves a landmark, then an instrument, to a position.
func (e *Engine) placePosition(place string) (spatial.Position, string, error) {
	id, err := resolve.Landmark(e.Defs, place)
	if err == nil {
		lm := e.Defs.Landmarks[id]
		return spatial.Position{X: lm.X, Z: lm.Z}, lm.Name, nil
	}
	if _, notFound := err.(*resolve.NotFoundError); !notFound {
		return spatial.Position{}, "", err
	}
	id, ierr := resolve.Instrument(e.Defs, place)
	if ierr != nil {
		return spatial.Position{}, "", err
	}
	in := e.Defs.Instruments[id]
	return spatial.Position{X: in.X, Z: in.Z}, in.Name, nil
}

func (e *Engine) moved(r *types.Result, wasNorth bool) {
	p := e.Field.Position()
	emit(r, events.PlayerMoved, map[string]any{"x": p.X, "z": p.Z})
	switch north := e.Field.InNorthZone(); {
	case north && !wasNorth:
		say(r, "You enter the north zone of the Azara.")
	case !north && wasNorth:
		say(r, "You leave the north zone.")
	}
	if hint := e.Prompt(); hint != "" {
		say(r, "→ "+hint)
	}
}

// obstacleName names the solid landmark closest to the player.
func (e *Engine) obstacleName() string {
	best, bestDist := "Something", -1.0
	for _, a := range e.solids {
		if d := a.DistanceFrom(e.Field.Position()); bestDist < 0 || d < bestDist {
			best, bestDist = e.Defs.Landmarks[a.ID].Name, d
		}
	}
	return best
}

// nearShop reports whether the player stands at a shop landmark.
func (e *Engine) nearShop() bool {
	for _, id := range sortedLandmarkIDs(e.Defs) {
		lm := e.Defs.Landmarks[id]
		if lm.Interact != "shop" {
			continue
		}
		if spatial.Distance(e.Field.Position(), spatial.Position{X: lm.X, Z: lm.Z}) <= e.Field.Zones().InteractRadius {
			return true
		}
	}
	return false
}

func (e *Engine) cmdBuy(r *types.Result, in types.Intent) {
	if in.Object == "" {
		e.cmdShop(r)
		return
	}
	if !e.nearShop() {
		say(r, "Walk to Shimon's stall to trade ('go to shimon').")
		return
	}
	id, err := resolve.Item(e.Defs, in.Object)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}

	item := e.Defs.Items[id]
	n := max(in.Amount, 1)
	bought := 0
	for range n {
		if _, err := ledger.Purchase(e.Ledger, e.Defs, id); err != nil {
			say(r, e.purchaseError(item, err))
			break
		}
		bought++
	}
	if bought == 0 {
		return
	}
	if bought == 1 {
		say(r, fmt.Sprintf("Bought %s!", label(item.Emoji, item.Name)))
	} else {
		say(r, fmt.Sprintf("Bought %d × %s!", bought, label(item.Emoji, item.Name)))
	}
	emit(r, events.Purchase, map[string]any{
		"item": id, "count": bought, "price": item.Price, "coins": e.Ledger.Coins,
	})
}

func (e *Engine) purchaseError(item types.ItemDef, err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fmt.Sprintf("Not enough coins for %s (🪙%d). You have 🪙%d.", item.Name, item.Price, e.Ledger.Coins)
	case errors.Is(err, ledger.ErrLevelTooLow):
		return fmt.Sprintf("Shimon only sells %s to level %d Kohanim.", item.Name, item.LevelRequired)
	default:
		return capitalize(err.Error()) + "."
	}
}

func (e *Engine) cmdSell(r *types.Result, in types.Intent) {
	if in.Object == "" {
		say(r, "Sell what?")
		return
	}
	if !e.nearShop() {
		say(r, "Walk to Shimon's stall to trade ('go to shimon').")
		return
	}
	id, err := resolve.Item(e.Defs, in.Object)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}

	item := e.Defs.Items[id]
	n := max(in.Amount, 1)
	sold, total := 0, 0
	for range n {
		refund, err := ledger.Sell(e.Ledger, e.Defs, id)
		if err != nil {
			break
		}
		sold++
		total += refund
	}
	if sold == 0 {
		say(r, fmt.Sprintf("You don't have any %s.", item.Name))
		return
	}
	if sold == 1 {
		say(r, fmt.Sprintf("Sold %s for 🪙%d.", label(item.Emoji, item.Name), total))
	} else {
		say(r, fmt.Sprintf("Sold %d × %s for 🪙%d.", sold, label(item.Emoji, item.Name), total))
	}
	emit(r, events.Sale, map[string]any{
		"item": id, "count": sold, "refund": total, "coins": e.Ledger.Coins,
	})
}

func (e *Engine) cmdOffer(r *types.Result, in types.Intent) {
	if in.Object == "" {
		animals := state.Animals(e.Ledger, e.Defs)
		if len(animals) == 0 {
			say(r, "Buy an animal from Shimon first!")
			return
		}
		e.offerChoices(r, animals)
		return
	}
	id, err := resolve.Offering(e.Defs, in.Object, e.Ledger.Level)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}
	e.begin(r, id)
}

func (e *Engine) begin(r *types.Result, id string) {
	o := e.Defs.Offerings[id]
	lessons, err := e.Machine.Begin(id, e.Ledger)
	switch {
	case errors.Is(err, ledger.ErrInsufficientInventory):
		animal := e.Defs.Items[o.Animal]
		say(r, fmt.Sprintf("You need a %s! Buy one from Shimon.", label(animal.Emoji, animal.Name)))
		return
	case errors.Is(err, ledger.ErrLevelTooLow):
		say(r, fmt.Sprintf("%s requires level %d.", o.Name, o.LevelRequired))
		return
	case errors.Is(err, avodah.ErrSessionActive):
		say(r, fmt.Sprintf("You are already performing %s. Finish it or 'abandon' it first.",
			e.Machine.Session().Offering.Name))
		return
	case err != nil:
		e.Logger.Error("begin offering", "offering", id, "error", err)
		say(r, capitalize(err.Error())+".")
		return
	}

	if _, fellBack := avodah.StepsFor(e.Defs, o.Type); fellBack {
		e.Logger.Warn("no step template for offering type, using fallback",
			"type", o.Type, "fallback", avodah.FallbackType)
	}
	say(r, fmt.Sprintf("Beginning %s!", label(o.Emoji, o.Name)))
	emit(r, events.OfferingBegun, map[string]any{"offering": id, "animal": o.Animal})
	teach(r, lessons...)
	if hint := e.Prompt(); hint != "" {
		say(r, "→ "+hint)
	}
}

// altar is the Mizbeach interaction: a single unambiguous offering begins
// at once, anything else lists the choices.
func (e *Engine) altar(r *types.Result) {
	animals := state.Animals(e.Ledger, e.Defs)
	if len(animals) == 0 {
		say(r, "Buy an animal from Shimon first!")
		return
	}
	if len(animals) == 1 {
		if opts := state.OfferingsFor(e.Defs, animals[0], e.Ledger.Level); len(opts) == 1 {
			e.begin(r, opts[0].ID)
			return
		}
	}
	e.offerChoices(r, animals)
}

func (e *Engine) offerChoices(r *types.Result, animals []string) {
	say(r, "Choose a korban with 'offer <name>':")
	for _, a := range animals {
		item := e.Defs.Items[a]
		opts := state.OfferingsFor(e.Defs, a, e.Ledger.Level)
		if len(opts) == 0 {
			say(r, fmt.Sprintf("  %s: no korbanot available at your level.", label(item.Emoji, item.Name)))
			continue
		}
		for _, o := range opts {
			say(r, fmt.Sprintf("  %s [%s]  🪙%d", label(o.Emoji, o.Name), o.ID, o.CoinReward))
		}
	}
}

func (e *Engine) cmdDo(r *types.Result) {
	if e.Machine.Active() {
		e.advance(r)
		return
	}
	e.interact(r)
}

func (e *Engine) advance(r *types.Result) {
	offeringID := e.Machine.Session().Offering.ID
	out, err := e.Machine.Advance(e.Field, e.Ledger)
	teach(r, out.Lessons...)

	switch {
	case errors.Is(err, avodah.ErrWrongSlaughterLocation):
		mistakes := e.Machine.Session().Mistakes
		say(r, fmt.Sprintf("⚠️ Wrong location! This korban is slaughtered in the north. (mistakes: %d)", mistakes))
		emit(r, events.WrongLocation, map[string]any{"offering": offeringID, "mistakes": mistakes})
	case errors.Is(err, avodah.ErrTooFarFromAltar):
		say(r, "Walk closer to the Mizbeach!")
		emit(r, events.TooFar, map[string]any{
			"offering": offeringID, "step": out.Step.ID, "distance": e.Field.DistanceToAltar(),
		})
	case err != nil:
		e.Logger.Error("advance offering", "offering", offeringID, "error", err)
		say(r, capitalize(err.Error())+".")
	case out.Advanced:
		say(r, fmt.Sprintf("%s: done!", label(out.Step.Emoji, out.Step.Name)))
		emit(r, events.StepCompleted, map[string]any{
			"offering": offeringID, "step": out.Step.ID, "index": out.StepIndex,
		})
		if out.Finished {
			e.completed(r, out.Completion)
		} else if hint := e.Prompt(); hint != "" {
			say(r, "→ "+hint)
		}
	}
}

func (e *Engine) completed(r *types.Result, rec *types.CompletionRecord) {
	o := e.Defs.Offerings[rec.OfferingID]
	say(r, fmt.Sprintf("Completed %s! +🪙%d", label(o.Emoji, o.Name), rec.TotalReward))
	if rec.Bonus > 0 {
		say(r, fmt.Sprintf("  (includes +%d perfect bonus!)", rec.Bonus))
	}
	if rec.Perfect {
		say(r, "✨ Perfect Service!")
	} else {
		say(r, fmt.Sprintf("Mistakes: %d", rec.Mistakes))
	}
	emit(r, events.OfferingCompleted, map[string]any{
		"offering": rec.OfferingID,
		"reward":   rec.TotalReward,
		"bonus":    rec.Bonus,
		"mistakes": rec.Mistakes,
		"perfect":  rec.Perfect,
	})
	e.announce(r, rec.Unlocked)
	e.lastCompletion = rec
}

// interact performs the nearest landmark or Levite's interaction.
func (e *Engine) interact(r *types.Result) {
	a, _, ok := e.Field.Nearest(e.anchors)
	if !ok {
		say(r, "There is nothing here to interact with. Type 'where' for directions.")
		return
	}
	if _, ok := e.Defs.Instruments[a.ID]; ok {
		e.listen(r, a.ID)
		return
	}
	lm := e.Defs.Landmarks[a.ID]
	switch lm.Interact {
	case "shop":
		say(r, "Shimon: \"Shalom, Kohen! What will you bring today?\"")
		e.cmdShop(r)
	case "lesson":
		teach(r, types.Lesson{Text: lm.Text, Source: lm.Source})
	case "altar":
		e.altar(r)
	}
}

func (e *Engine) cmdAbandon(r *types.Result) {
	s := e.Machine.Session()
	if s == nil {
		say(r, "You are not performing any korban.")
		return
	}
	o := s.Offering
	e.Machine.Cancel()
	say(r, fmt.Sprintf("You abandon the %s. The animal is not returned.", o.Name))
	emit(r, events.OfferingAbandoned, map[string]any{"offering": o.ID})
}

func (e *Engine) cmdListen(r *types.Result, in types.Intent) {
	if in.Object == "" {
		a, _, ok := e.Field.Nearest(e.instruments)
		if !ok {
			say(r, "Listen to what? The Leviim play on the Duchan to the east.")
			return
		}
		e.listen(r, a.ID)
		return
	}
	id, err := resolve.Instrument(e.Defs, in.Object)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}
	inst := e.Defs.Instruments[id]
	if spatial.Distance(e.Field.Position(), spatial.Position{X: inst.X, Z: inst.Z}) > e.Field.Zones().InteractRadius {
		say(r, fmt.Sprintf("Walk closer to the Levite playing the %s ('go to %s').", inst.Name, id))
		return
	}
	e.listen(r, id)
}

func (e *Engine) listen(r *types.Result, id string) {
	inst := e.Defs.Instruments[id]
	first := ledger.RecordInstrument(e.Ledger, id)
	say(r, fmt.Sprintf("%s The Levite plays the %s.", inst.Emoji, inst.Name))
	emit(r, events.InstrumentHeard, map[string]any{"instrument": id, "first": first})
	teach(r, instrumentLesson(inst))
}

func instrumentLesson(inst types.InstrumentDef) types.Lesson {
	return types.Lesson{
		Text:   fmt.Sprintf("%s (%s)\n%s", label(inst.Emoji, inst.Name), inst.NameHe, inst.Desc),
		Source: inst.Source,
	}
}

// cmdRead with no object repeats the last lesson without counting it
// again. With an object it teaches that entry's text.
func (e *Engine) cmdRead(r *types.Result, in types.Intent) {
	if in.Object == "" {
		if e.lastLesson == nil {
			say(r, "There is nothing to read yet.")
			return
		}
		say(r, e.lastLesson.Text)
		if e.lastLesson.Source != "" {
			say(r, "📖 "+e.lastLesson.Source)
		}
		return
	}
	m, err := resolve.Any(e.Defs, in.Object)
	if err != nil {
		say(r, capitalize(err.Error())+".")
		return
	}
	lesson, ok := e.lessonFor(m)
	if !ok {
		say(r, "There is nothing written about that.")
		return
	}
	teach(r, lesson)
}

func (e *Engine) lessonFor(m resolve.Match) (types.Lesson, bool) {
	switch m.Kind {
	case resolve.KindItem:
		it := e.Defs.Items[m.ID]
		return types.Lesson{Text: label(it.Emoji, it.Name) + "\n" + it.Desc}, it.Desc != ""
	case resolve.KindOffering:
		o := e.Defs.Offerings[m.ID]
		source := o.Source
		if o.Mishnah != "" {
			source = o.Source + "; " + o.Mishnah
		}
		return types.Lesson{
			Text:   fmt.Sprintf("%s (%s)\n%s", label(o.Emoji, o.Name), o.NameHe, o.Description),
			Source: source,
		}, o.Description != ""
	case resolve.KindInstrument:
		return instrumentLesson(e.Defs.Instruments[m.ID]), true
	case resolve.KindLandmark:
		lm := e.Defs.Landmarks[m.ID]
		return types.Lesson{Text: lm.Text, Source: lm.Source}, lm.Text != ""
	}
	return types.Lesson{}, false
}

func (e *Engine) cmdShir(r *types.Result) {
	wd := int(e.Now().Weekday())
	for _, s := range e.Defs.Shir {
		if s.Weekday != wd {
			continue
		}
		teach(r, types.Lesson{
			Text:   fmt.Sprintf("Today is %s. The Leviim sing Tehillim %d:\n%s", s.Day, s.Tehillim, s.Text),
			Source: shirSource,
		})
		return
	}
	say(r, "The Leviim have no Shir for today.")
}

func sortedLandmarkIDs(defs *state.Defs) []string {
	ids := make([]string, 0, len(defs.Landmarks))
	for id := range defs.Landmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
