package avodah

import "github.com/nathoo/mikdash/types"

// StepStatus is the display state of one step in the session.
type StepStatus string

const (
	StatusDone    StepStatus = "done"
	StatusActive  StepStatus = "active"
	StatusPending StepStatus = "pending"
)

// StepView pairs a step with its status.
type StepView struct {
	Step   types.StepDef
	Status StepStatus
}

// Snapshot is a read-only view of the session for the UI.
type Snapshot struct {
	Active       bool
	OfferingID   string
	OfferingName string
	Slaughter    string
	StepIndex    int
	Mistakes     int
	Steps        []StepView
}

// Snapshot returns the current session view. Idle machines return a zero
// Snapshot with Active false.
func (m *Machine) Snapshot() Snapshot {
	s := m.Session()
	if s == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Active:       true,
		OfferingID:   s.Offering.ID,
		OfferingName: s.Offering.Name,
		Slaughter:    s.Offering.SlaughterLocation,
		StepIndex:    s.StepIndex,
		Mistakes:     s.Mistakes,
		Steps:        make([]StepView, len(s.Steps)),
	}
	for i, step := range s.Steps {
		status := StatusPending
		switch {
		case i < s.StepIndex:
			status = StatusDone
		case i == s.StepIndex:
			status = StatusActive
		}
		snap.Steps[i] = StepView{Step: step, Status: status}
	}
	return snap
}
