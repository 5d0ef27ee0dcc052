// Package ledger implements every mutation of the player's economy and
// progress counters. Each operation either fully applies or leaves the
// ledger untouched.
package ledger

import (
	"errors"
	"fmt"

	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidItem           = errors.New("invalid item")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrLevelTooLow           = errors.New("level too low")
)

// Credit adds coins to the balance.
func Credit(l *types.Ledger, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	l.Coins += amount
	return nil
}

// Debit removes coins from the balance. The balance never goes negative.
func Debit(l *types.Ledger, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	if amount > l.Coins {
		return fmt.Errorf("debit %d from %d: %w", amount, l.Coins, ErrInsufficientFunds)
	}
	l.Coins -= amount
	return nil
}

// Purchase buys one unit of a shop item.
func Purchase(l *types.Ledger, defs *state.Defs, itemID string) (types.ItemDef, error) {
	item, ok := defs.Items[itemID]
	if !ok {
		return types.ItemDef{}, fmt.Errorf("purchase %q: %w", itemID, ErrInvalidItem)
	}
	if item.LevelRequired > l.Level {
		return item, fmt.Errorf("purchase %q needs level %d: %w", itemID, item.LevelRequired, ErrLevelTooLow)
	}
	if err := Debit(l, item.Price); err != nil {
		return item, fmt.Errorf("purchase %q: %w", itemID, err)
	}
	ensureInventory(l)
	l.Inventory[itemID]++
	l.TotalSpent += item.Price
	return item, nil
}

// SellPrice is what the seller pays back for one unit: half the price,
// rounded down.
func SellPrice(item types.ItemDef) int {
	return item.Price / 2
}

// Sell returns one unit of an item to the seller for half its price.
func Sell(l *types.Ledger, defs *state.Defs, itemID string) (int, error) {
	item, ok := defs.Items[itemID]
	if !ok {
		return 0, fmt.Errorf("sell %q: %w", itemID, ErrInvalidItem)
	}
	if l.Inventory[itemID] < 1 {
		return 0, fmt.Errorf("sell %q: none held: %w", itemID, ErrInvalidItem)
	}
	refund := SellPrice(item)
	removeOne(l, itemID)
	l.Coins += refund
	return refund, nil
}

// ConsumeAnimal removes exactly one unit of an animal from inventory.
// There is no refund path.
func ConsumeAnimal(l *types.Ledger, animalID string) error {
	if l.Inventory[animalID] < 1 {
		return fmt.Errorf("consume %q: %w", animalID, ErrInsufficientInventory)
	}
	removeOne(l, animalID)
	return nil
}

// RecordCompletion credits the reward of a finished offering and bumps
// the completion counters.
func RecordCompletion(l *types.Ledger, offering types.OfferingDef, totalReward int, perfect bool) error {
	if err := Credit(l, totalReward); err != nil {
		return err
	}
	l.TotalEarned += totalReward
	l.OfferingsCompleted++
	if perfect {
		l.OfferingsPerfect++
	}
	if offering.Daily {
		l.DailyCount++
	}
	return nil
}

// RecordBloodMethod adds a blood-application method to the performed set.
// Returns false if it was already there.
func RecordBloodMethod(l *types.Ledger, method string) bool {
	if method == "" || state.SetHas(l, "blood_methods", method) {
		return false
	}
	l.BloodMethods = append(l.BloodMethods, method)
	return true
}

// RecordInstrument adds an instrument to the heard set. Returns false if
// it was already there.
func RecordInstrument(l *types.Ledger, instrumentID string) bool {
	if state.SetHas(l, "instruments_heard", instrumentID) {
		return false
	}
	l.InstrumentsHeard = append(l.InstrumentsHeard, instrumentID)
	return true
}

// RecordSourceRead counts one educational popup viewed.
func RecordSourceRead(l *types.Ledger) {
	l.SourcesRead++
}

func removeOne(l *types.Ledger, itemID string) {
	l.Inventory[itemID]--
	if l.Inventory[itemID] <= 0 {
		delete(l.Inventory, itemID)
	}
}

func ensureInventory(l *types.Ledger) {
	if l.Inventory == nil {
		l.Inventory = map[string]int{}
	}
}
