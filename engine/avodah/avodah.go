// Package avodah walks a player through the ordered steps of one offering,
// checking where the player stands at each step, counting mistakes, and
// paying out on completion.
//
// The machine has two states. Idle has no session; InProgress holds one
// session whose StepIndex tracks progress through the step template.
package avodah

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/mikdash/engine/achievements"
	"github.com/nathoo/mikdash/engine/ledger"
	"github.com/nathoo/mikdash/engine/spatial"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

var (
	ErrUnknownOffering        = errors.New("unknown offering")
	ErrWrongSlaughterLocation = errors.New("wrong slaughter location")
	ErrTooFarFromAltar        = errors.New("too far from altar")
	ErrSessionActive          = errors.New("an offering is already in progress")
)

// PerfectBonusRate is the share of the base reward added for a service
// with no mistakes.
const PerfectBonusRate = 0.5

// FallbackType is the offering type whose steps are used when an
// offering's own type has no template.
const FallbackType = types.OfferingBurnt

// Outcome reports what one Advance call did.
type Outcome struct {
	Step       types.StepDef // the step just attempted
	StepIndex  int           // index of Step in the template
	Advanced   bool
	Finished   bool
	Completion *types.CompletionRecord // set when Finished
	Lessons    []types.Lesson
}

// Machine is the Avodah state machine. It owns at most one session.
type Machine struct {
	defs    *state.Defs
	zones   spatial.Zones
	session *types.Session
}

// New creates an idle machine.
func New(defs *state.Defs, zones spatial.Zones) *Machine {
	return &Machine{defs: defs, zones: zones}
}

// Active reports whether a session is in progress.
func (m *Machine) Active() bool {
	return m.session != nil && m.session.Active
}

// Session returns the session in progress, or nil when idle.
func (m *Machine) Session() *types.Session {
	if !m.Active() {
		return nil
	}
	return m.session
}

// CurrentStep returns the step the player must perform next.
func (m *Machine) CurrentStep() (types.StepDef, bool) {
	s := m.Session()
	if s == nil || s.StepIndex >= len(s.Steps) {
		return types.StepDef{}, false
	}
	return s.Steps[s.StepIndex], true
}

// StepsFor resolves the step template for an offering type. When the type
// has no template the burnt-offering template is used and fellBack is true.
func StepsFor(defs *state.Defs, offeringType string) (steps []types.StepDef, fellBack bool) {
	if steps, ok := defs.Steps[offeringType]; ok && len(steps) > 0 {
		return steps, false
	}
	return defs.Steps[FallbackType], true
}

// Begin starts an offering. Every precondition is checked before the
// ledger is touched; on success exactly one unit of the required animal is
// consumed and is never refunded, even if the session is abandoned.
func (m *Machine) Begin(offeringID string, l *types.Ledger) ([]types.Lesson, error) {
	if m.Active() {
		return nil, ErrSessionActive
	}
	offering, ok := m.defs.Offerings[offeringID]
	if !ok {
		return nil, fmt.Errorf("begin %q: %w", offeringID, ErrUnknownOffering)
	}
	if state.Count(l, offering.Animal) < 1 {
		return nil, fmt.Errorf("begin %q needs %q: %w", offeringID, offering.Animal, ledger.ErrInsufficientInventory)
	}
	if offering.LevelRequired > l.Level {
		return nil, fmt.Errorf("begin %q needs level %d: %w", offeringID, offering.LevelRequired, ledger.ErrLevelTooLow)
	}
	steps, _ := StepsFor(m.defs, offering.Type)
	if len(steps) == 0 {
		return nil, fmt.Errorf("begin %q: no steps for type %q", offeringID, offering.Type)
	}
	if err := ledger.ConsumeAnimal(l, offering.Animal); err != nil {
		return nil, err
	}
	m.session = &types.Session{
		Offering: offering,
		Steps:    steps,
		Active:   true,
	}
	return []types.Lesson{introLesson(offering, l.Level)}, nil
}

// Advance attempts the current step from the player's position. With no
// session it is a no-op. A failed check leaves the step index where it
// was; only a wrong slaughter location counts as a mistake.
func (m *Machine) Advance(q spatial.Query, l *types.Ledger) (Outcome, error) {
	s := m.Session()
	if s == nil || s.StepIndex >= len(s.Steps) {
		return Outcome{}, nil
	}
	step := s.Steps[s.StepIndex]
	out := Outcome{Step: step, StepIndex: s.StepIndex}
	offering := s.Offering

	switch step.ID {
	case types.StepShechita:
		switch offering.SlaughterLocation {
		case types.SlaughterNorth:
			if !q.InNorthZone() {
				s.Mistakes++
				out.Lessons = append(out.Lessons, wrongLocationLesson(offering))
				return out, ErrWrongSlaughterLocation
			}
		case types.SlaughterOnAltar:
			if !m.zones.NearAltar(q.DistanceToAltar()) {
				return out, ErrTooFarFromAltar
			}
		case types.SlaughterAnywhere:
			out.Lessons = append(out.Lessons, anywhereLesson(offering))
		}

	case types.StepHolacha, types.StepZerika, types.StepHaktarah:
		if !m.zones.NearAltar(q.DistanceToAltar()) {
			return out, ErrTooFarFromAltar
		}
	}

	switch step.ID {
	case types.StepZerika:
		ledger.RecordBloodMethod(l, offering.BloodService)
		out.Lessons = append(out.Lessons, bloodLesson(offering))
	case types.StepHaktarah:
		out.Lessons = append(out.Lessons, burnLesson(offering))
	}

	s.StepIndex++
	out.Advanced = true

	if s.StepIndex >= len(s.Steps) {
		rec, err := m.complete(l)
		if err != nil {
			return out, err
		}
		out.Finished = true
		out.Completion = rec
		out.Lessons = append(out.Lessons, summaryLesson(offering))
	}
	return out, nil
}

// Reward computes the payout for an offering.
func Reward(offering types.OfferingDef, perfect bool) (bonus, total int) {
	if perfect {
		bonus = int(math.Round(float64(offering.CoinReward) * PerfectBonusRate))
	}
	return bonus, offering.CoinReward + bonus
}

func (m *Machine) complete(l *types.Ledger) (*types.CompletionRecord, error) {
	s := m.session
	perfect := s.Mistakes == 0
	bonus, total := Reward(s.Offering, perfect)
	if err := ledger.RecordCompletion(l, s.Offering, total, perfect); err != nil {
		return nil, err
	}
	unlocked := achievements.Apply(m.defs, l)
	rec := &types.CompletionRecord{
		OfferingID:   s.Offering.ID,
		OfferingName: s.Offering.Name,
		BaseReward:   s.Offering.CoinReward,
		Bonus:        bonus,
		TotalReward:  total,
		Mistakes:     s.Mistakes,
		Perfect:      perfect,
		Unlocked:     unlocked,
	}
	m.session = nil
	return rec, nil
}

// Cancel abandons the session in progress. The consumed animal is not
// returned. Returns false when there was nothing to cancel.
func (m *Machine) Cancel() bool {
	if !m.Active() {
		return false
	}
	m.session = nil
	return true
}
