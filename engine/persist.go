package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/mikdash/types"
)

// Store is the persistence collaborator for one profile's ledger.
type Store interface {
	Load(ctx context.Context, profileID string) (*types.Ledger, bool, error)
	Save(ctx context.Context, profileID string, l *types.Ledger) error
}

// Restore replaces the ledger with the profile's saved one. It reports
// false when the profile has no save yet.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	if e.Store == nil {
		return false, nil
	}
	l, ok, err := e.Store.Load(ctx, e.ProfileID)
	if err != nil {
		return false, fmt.Errorf("restore profile %s: %w", e.ProfileID, err)
	}
	if !ok {
		return false, nil
	}
	e.Ledger = l
	return true, nil
}

// Flush saves the ledger. Failures are logged and returned but never
// affect the game state.
func (e *Engine) Flush(ctx context.Context) error {
	if e.Store == nil {
		return nil
	}
	if err := e.Store.Save(ctx, e.ProfileID, e.Ledger); err != nil {
		e.Logger.Warn("save failed", "profile", e.ProfileID, "error", err)
		return err
	}
	e.Logger.Debug("saved", "profile", e.ProfileID, "coins", e.Ledger.Coins)
	return nil
}
