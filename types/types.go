// Package types defines the shared data structures for the mikdash engine.
// This package contains only type definitions, with no logic and no methods.
package types

import "time"

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
	Amount int    // optional numeric argument ("go north 3")
}

// Event is emitted after the engine mutates state.
type Event struct {
	Type string
	Data map[string]any
}

// Lesson is an educational popup shown to the player. Every lesson
// delivered counts toward the sources-read counter.
type Lesson struct {
	Text   string
	Source string
}

// Result is the output of a single engine step.
type Result struct {
	Events  []Event
	Lessons []Lesson
	Output  []string
}

// Condition is a predicate over the ledger, used by achievements.
type Condition struct {
	Type   string         // "counter_at_least", "has_all", "not", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// Offering types.
const (
	OfferingBurnt = "olah"
	OfferingSin   = "chatat"
	OfferingPeace = "shelamim"
)

// Slaughter location classes.
const (
	SlaughterNorth    = "north"
	SlaughterAnywhere = "anywhere"
	SlaughterOnAltar  = "on_altar"
)

// Blood application methods.
const (
	BloodTwoThatAreFour = "two_that_are_four"
	BloodFourCorners    = "four_corners"
	BloodSqueezeOnWall  = "squeeze_on_wall"
)

// Step identifiers.
const (
	StepShechita = "shechita"
	StepKabbalah = "kabbalah"
	StepHolacha  = "holacha"
	StepZerika   = "zerika"
	StepHaktarah = "haktarah"
)

// Item categories.
const (
	CategoryAnimal = "animal"
	CategoryMincha = "mincha"
)

// GameDef holds catalog metadata from Lua.
type GameDef struct {
	Title         string
	Author        string
	Version       string
	Intro         string
	StartingCoins int
}

// ItemDef is a shop item.
type ItemDef struct {
	ID            string
	Name          string
	Emoji         string
	Price         int
	Category      string
	LevelRequired int
	Desc          string
}

// OfferingDef is an immutable offering (korban) definition.
type OfferingDef struct {
	ID                string
	Name              string
	NameHe            string
	Emoji             string
	Animal            string
	Type              string
	Category          string
	SlaughterLocation string
	BloodService      string
	EatenBy           string
	EatingLocation    string
	EatingTimeLimit   string
	Description       string
	Source            string
	Mishnah           string
	LevelRequired     int
	CoinReward        int
	Daily             bool // the Tamid
	SourceOrder       int
}

// StepDef is one named stage of an offering's procedure.
type StepDef struct {
	ID     string
	Name   string
	NameHe string
	Emoji  string
	Desc   string
}

// AchievementDef is an unlockable achievement with its thresholds.
type AchievementDef struct {
	ID          string
	Name        string
	Emoji       string
	Desc        string
	Requires    []Condition
	SourceOrder int
}

// InstrumentDef is a Levite instrument stationed at a position.
type InstrumentDef struct {
	ID     string
	Name   string
	NameHe string
	Emoji  string
	Desc   string
	Source string
	X, Z   float64
}

// LandmarkDef is a named place in the courtyard.
type LandmarkDef struct {
	ID       string
	Name     string
	X, Z     float64
	Solid    bool    // blocks movement
	W, D     float64 // footprint when solid
	Interact string  // "shop", "lesson", "altar", ""
	Text     string
	Source   string
}

// ShirDef is the Levites' psalm for a day of the week.
type ShirDef struct {
	Weekday  int // 0 = Sunday, 6 = Shabbat
	Day      string
	Tehillim int
	Text     string
}

// Ledger is the player's persistent economic and progress state.
type Ledger struct {
	Coins              int            `json:"coins"`
	Level              int            `json:"level"`
	Inventory          map[string]int `json:"inventory"`
	TotalEarned        int            `json:"total_earned"`
	TotalSpent         int            `json:"total_spent"`
	Achievements       []string       `json:"achievements"`
	OfferingsCompleted int            `json:"offerings_completed"`
	OfferingsPerfect   int            `json:"offerings_perfect"`
	DailyCount         int            `json:"daily_count"`
	BloodMethods       []string       `json:"blood_methods"`
	InstrumentsHeard   []string       `json:"instruments_heard"`
	SourcesRead        int            `json:"sources_read"`
}

// Session is the transient state of one offering in progress.
type Session struct {
	Offering  OfferingDef
	Steps     []StepDef
	StepIndex int
	Mistakes  int
	Active    bool
}

// CompletionRecord is the sole externally observable completion artifact.
type CompletionRecord struct {
	OfferingID   string
	OfferingName string
	BaseReward   int
	Bonus        int
	TotalReward  int
	Mistakes     int
	Perfect      bool
	Unlocked     []string
}

// Profile is the summary row for a saved player.
type Profile struct {
	ID        string
	Name      string
	Level     int
	Coins     int
	Offerings int
	CreatedAt time.Time
	UpdatedAt time.Time
}
