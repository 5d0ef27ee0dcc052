package loader

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/mikdash/types"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileGame(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		return {
			title = "Test Catalog",
			author = "Author",
			version = "1.0",
			starting_coins = 75,
			intro = "Welcome!"
		}
	`); err != nil {
		t.Fatal(err)
	}

	game := compileGame(L.CheckTable(-1))
	if game.Title != "Test Catalog" {
		t.Errorf("Title = %q, want %q", game.Title, "Test Catalog")
	}
	if game.Author != "Author" {
		t.Errorf("Author = %q, want %q", game.Author, "Author")
	}
	if game.StartingCoins != 75 {
		t.Errorf("StartingCoins = %d, want 75", game.StartingCoins)
	}
	if game.Intro != "Welcome!" {
		t.Errorf("Intro = %q, want %q", game.Intro, "Welcome!")
	}
}

func TestCompileItem_LevelDefault(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "keves" { name = "Keves", price = 50, category = "animal" }
		Item "solet" { name = "Solet", price = 10, category = "mincha", level = 2 }
	`); err != nil {
		t.Fatal(err)
	}
	if len(coll.items) != 2 {
		t.Fatalf("items = %d, want 2", len(coll.items))
	}
	keves := compileItem(coll.items[0])
	if keves.LevelRequired != 1 || keves.Price != 50 || keves.Category != types.CategoryAnimal {
		t.Errorf("keves = %+v", keves)
	}
	solet := compileItem(coll.items[1])
	if solet.LevelRequired != 2 {
		t.Errorf("solet level = %d, want 2", solet.LevelRequired)
	}
}

func TestCompileOffering_AllFields(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Offering "chatat_ez" {
			name = "Chatat Ez", name_he = "חטאת עז", emoji = "🐐",
			animal = "ez", type = "chatat", category = "kodshei_kodashim",
			slaughter = "north", blood = "four_corners",
			eaten_by = "male_kohanim", eating_location = "the Azara",
			eating_time_limit = "Day and night, until midnight",
			description = "A goat sin offering.",
			source = "Vayikra 4:28-31", mishnah = "Zevachim 5:3",
			level = 2, reward = 40,
		}
	`); err != nil {
		t.Fatal(err)
	}

	o := compileOffering(coll.offerings[0])
	want := types.OfferingDef{
		ID: "chatat_ez", Name: "Chatat Ez", NameHe: "חטאת עז", Emoji: "🐐",
		Animal: "ez", Type: types.OfferingSin, Category: "kodshei_kodashim",
		SlaughterLocation: types.SlaughterNorth, BloodService: types.BloodFourCorners,
		EatenBy: "male_kohanim", EatingLocation: "the Azara",
		EatingTimeLimit: "Day and night, until midnight",
		Description:     "A goat sin offering.",
		Source:          "Vayikra 4:28-31", Mishnah: "Zevachim 5:3",
		LevelRequired: 2, CoinReward: 40, SourceOrder: 1,
	}
	if o != want {
		t.Errorf("offering =\n%+v\nwant\n%+v", o, want)
	}
}

func TestCompileSteps(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Steps "olah" {
			{ id = "shechita", name = "Shechita", name_he = "שחיטה", emoji = "🔪", desc = "Slaughter." },
			{ id = "kabbalah", name = "Kabbalah" },
		}
	`); err != nil {
		t.Fatal(err)
	}
	steps, err := compileSteps(coll.steps[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].ID != "shechita" || steps[0].NameHe != "שחיטה" || steps[0].Desc != "Slaughter." {
		t.Errorf("step 0 = %+v", steps[0])
	}
}

func TestCompileSteps_NonTableEntry(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`Steps "olah" { "shechita" }`); err != nil {
		t.Fatal(err)
	}
	if _, err := compileSteps(coll.steps[0]); err == nil {
		t.Fatal("expected error for string step")
	}
}

func TestCompileConditions_AllTypes(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Achievement "everything" {
			name = "Everything",
			requires = {
				CounterAtLeast("offerings_completed", 1),
				CounterGt("coins", 100),
				CounterLt("total_spent", 5),
				HasAll("blood_methods", { "two_that_are_four", "four_corners" }),
				HasAllInstruments(),
				HasAchievement("first_avodah"),
				Not(HasAchievement("kohen_rising")),
			},
		}
	`); err != nil {
		t.Fatal(err)
	}

	a, err := compileAchievement(coll.achievements[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Requires) != 7 {
		t.Fatalf("requires = %d, want 7", len(a.Requires))
	}

	wantTypes := []string{
		"counter_at_least", "counter_gt", "counter_lt", "has_all",
		"has_all_instruments", "has_achievement", "not",
	}
	for i, want := range wantTypes {
		if a.Requires[i].Type != want {
			t.Errorf("requires[%d].Type = %q, want %q", i, a.Requires[i].Type, want)
		}
	}

	c := a.Requires[0]
	if c.Params["counter"] != "offerings_completed" || c.Params["value"] != 1 {
		t.Errorf("counter params = %v", c.Params)
	}
	vals, ok := a.Requires[3].Params["values"].([]any)
	if !ok || len(vals) != 2 || vals[1] != "four_corners" {
		t.Errorf("has_all values = %#v", a.Requires[3].Params["values"])
	}
	not := a.Requires[6]
	if !not.Negate || not.Inner == nil || not.Inner.Params["id"] != "kohen_rising" {
		t.Errorf("not = %+v", not)
	}
}

func TestCompileLandmarkAndInstrument(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Landmark "altar" { name = "Mizbeach", x = 0, z = 0, solid = true, w = 8, d = 8, interact = "altar" }
		Instrument "kinor" { name = "Kinor", x = 7, z = -4, source = "Arachin 2:3" }
	`); err != nil {
		t.Fatal(err)
	}
	lm := compileLandmark(coll.landmarks[0])
	if !lm.Solid || lm.W != 8 || lm.Interact != "altar" {
		t.Errorf("landmark = %+v", lm)
	}
	in := compileInstrument(coll.instruments[0])
	if in.X != 7 || in.Z != -4 || in.Source != "Arachin 2:3" {
		t.Errorf("instrument = %+v", in)
	}
}

func TestCompile_ShirSortedByWeekday(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Game { title = "T" }
		Shir { weekday = 6, day = "Shabbat", tehillim = 92 }
		Shir { weekday = 0, day = "Sunday", tehillim = 24 }
	`); err != nil {
		t.Fatal(err)
	}
	defs, err := compile(coll)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs.Shir) != 2 || defs.Shir[0].Tehillim != 24 || defs.Shir[1].Day != "Shabbat" {
		t.Errorf("shir = %+v", defs.Shir)
	}
}

func TestSourceOrder_AutoIncrement(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Offering "a" { name = "A" }
		Item "x" { name = "X" }
		Offering "b" { name = "B" }
	`); err != nil {
		t.Fatal(err)
	}
	a := compileOffering(coll.offerings[0])
	b := compileOffering(coll.offerings[1])
	if a.SourceOrder >= b.SourceOrder {
		t.Errorf("source order a=%d b=%d, want a < b", a.SourceOrder, b.SourceOrder)
	}
}
