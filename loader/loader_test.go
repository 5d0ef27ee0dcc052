package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nathoo/mikdash/types"
)

const minimalGame = `
Game { title = "Minimal Test Catalog", starting_coins = 40 }

Item "keves" { name = "Keves (Lamb)", price = 50, category = "animal" }

Offering "tamid" {
  name = "Korban Tamid", animal = "keves", type = "olah",
  slaughter = "north", blood = "two_that_are_four",
  level = 1, reward = 25, daily = true,
}

Steps "olah" {
  { id = "shechita", name = "Shechita" },
  { id = "kabbalah", name = "Kabbalah" },
  { id = "holacha", name = "Holacha" },
  { id = "zerika", name = "Zerika" },
  { id = "haktarah", name = "Haktarah" },
}

Landmark "altar" { name = "Mizbeach", x = 0, z = 0, solid = true, w = 8, d = 8, interact = "altar" }
`

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "game.lua"), []byte(minimalGame), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	defs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Game.Title != "Minimal Test Catalog" {
		t.Errorf("Title = %q", defs.Game.Title)
	}
	if defs.Game.StartingCoins != 40 {
		t.Errorf("StartingCoins = %d, want 40", defs.Game.StartingCoins)
	}
	tamid, ok := defs.Offerings["tamid"]
	if !ok {
		t.Fatal("offering 'tamid' not found")
	}
	if !tamid.Daily || tamid.CoinReward != 25 || tamid.SlaughterLocation != types.SlaughterNorth {
		t.Errorf("tamid = %+v", tamid)
	}
	if len(defs.Steps["olah"]) != 5 {
		t.Errorf("olah steps = %d, want 5", len(defs.Steps["olah"]))
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadFS_NoLuaFiles(t *testing.T) {
	_, err := LoadFS(mapFS(map[string]string{"notes.txt": "x"}), ".")
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("expected no-lua error, got %v", err)
	}
}

func TestLoadFS_MultipleFiles(t *testing.T) {
	// Offerings declared in a file that sorts before the items it uses;
	// validation runs after every file has executed.
	fsys := mapFS(map[string]string{
		"game.lua": `Game { title = "Split" }`,
		"a_offerings.lua": `
Offering "olah_tor" { name = "Olat Ha'of", animal = "tor", type = "olah",
  slaughter = "on_altar", blood = "squeeze_on_wall", reward = 15 }`,
		"b_items.lua": `Item "tor" { name = "Tor", price = 15, category = "animal" }`,
		"c_rest.lua": `
Steps "olah" { { id = "shechita" }, { id = "haktarah" } }
Landmark "altar" { name = "Mizbeach", interact = "altar" }`,
	})
	defs, err := LoadFS(fsys, ".")
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if defs.Offerings["olah_tor"].SlaughterLocation != types.SlaughterOnAltar {
		t.Errorf("slaughter = %q", defs.Offerings["olah_tor"].SlaughterLocation)
	}
	// Level defaults to 1.
	if defs.Offerings["olah_tor"].LevelRequired != 1 {
		t.Errorf("level = %d, want 1", defs.Offerings["olah_tor"].LevelRequired)
	}
}

func TestLoadFS_BadLuaSyntax_Fails(t *testing.T) {
	_, err := LoadFS(mapFS(map[string]string{"game.lua": `Game { title = `}), ".")
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !strings.Contains(err.Error(), "game.lua") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoadFS_NoGameDef_Fails(t *testing.T) {
	_, err := LoadFS(mapFS(map[string]string{"items.lua": `Item "keves" { price = 50, category = "animal" }`}), ".")
	if err == nil || !strings.Contains(err.Error(), "Game{}") {
		t.Fatalf("expected missing Game error, got %v", err)
	}
}

func TestLoadFS_SandboxEnforced(t *testing.T) {
	tests := []string{
		`os.exit(1)`,
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`require("os")`,
		`math.random(1, 6)`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := LoadFS(mapFS(map[string]string{"game.lua": minimalGame + "\n" + src}), ".")
			if err == nil {
				t.Fatalf("expected sandbox to reject %q", src)
			}
		})
	}
}

func TestLoadFS_InvalidRefs_Fails(t *testing.T) {
	src := strings.Replace(minimalGame, `animal = "keves"`, `animal = "camel"`, 1)
	_, err := LoadFS(mapFS(map[string]string{"game.lua": src}), ".")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Error(), "camel") {
		t.Errorf("error should mention camel: %v", ve)
	}
}

func TestLoadFS_DuplicateIDs_Fails(t *testing.T) {
	src := minimalGame + `
Item "keves" { name = "Another Lamb", price = 60, category = "animal" }`
	_, err := LoadFS(mapFS(map[string]string{"game.lua": src}), ".")
	if err == nil || !strings.Contains(err.Error(), `duplicate item "keves"`) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zeta.lua", "game.lua", "alpha.lua"})
	want := []string{"game.lua", "alpha.lua", "zeta.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedLuaFiles = %v, want %v", got, want)
		}
	}
}
