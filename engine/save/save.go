// Package save implements the JSON blob format for a profile's ledger.
package save

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nathoo/mikdash/types"
)

// FormatVersion is written into every blob.
const FormatVersion = "1"

//go:embed save.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("save.schema.json", schemaJSON)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version string       `json:"version"`
	Profile string       `json:"profile"`
	SavedAt time.Time    `json:"saved_at"`
	Ledger  types.Ledger `json:"ledger"`
}

// Save serializes a ledger to JSON bytes.
func Save(profileID string, l *types.Ledger, now time.Time) ([]byte, error) {
	data := SaveData{
		Version: FormatVersion,
		Profile: profileID,
		SavedAt: now.UTC(),
		Ledger:  *l,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load validates and deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("save blob: %w", err)
	}
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure maps and sets are never nil after load.
	if sd.Ledger.Inventory == nil {
		sd.Ledger.Inventory = map[string]int{}
	}
	for id, n := range sd.Ledger.Inventory {
		if n <= 0 {
			delete(sd.Ledger.Inventory, id)
		}
	}
	if sd.Ledger.Achievements == nil {
		sd.Ledger.Achievements = []string{}
	}
	if sd.Ledger.BloodMethods == nil {
		sd.Ledger.BloodMethods = []string{}
	}
	if sd.Ledger.InstrumentsHeard == nil {
		sd.Ledger.InstrumentsHeard = []string{}
	}
	if sd.Ledger.Level < 1 {
		sd.Ledger.Level = 1
	}
	return &sd, nil
}

// ApplySave copies loaded ledger fields onto an existing ledger.
func ApplySave(l *types.Ledger, sd *SaveData) {
	*l = sd.Ledger
}
