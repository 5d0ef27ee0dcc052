package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/mikdash/engine/save"
	"github.com/nathoo/mikdash/types"
)

// DefaultMaxProfiles caps how many profiles one database holds.
const DefaultMaxProfiles = 10

var (
	ErrNotFound        = errors.New("profile not found")
	ErrTooManyProfiles = errors.New("too many profiles")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Options tunes a SQLite store.
type Options struct {
	MaxProfiles int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// SQLite implements profile and save persistence on a SQLite database.
type SQLite struct {
	db          *sql.DB
	maxProfiles int
	now         func() time.Time
}

// NewSQLite creates a store over an opened database.
func NewSQLite(db *sql.DB, opts Options) *SQLite {
	if opts.MaxProfiles <= 0 {
		opts.MaxProfiles = DefaultMaxProfiles
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SQLite{db: db, maxProfiles: opts.MaxProfiles, now: opts.Now}
}

// Create inserts a new profile at the given level (1 or 2) holding the
// given starting coins.
func (s *SQLite) Create(ctx context.Context, name string, level, coins int) (*types.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if level < 1 || level > 2 {
		return nil, fmt.Errorf("%w: level must be 1 or 2, got %d", ErrInvalidProfile, level)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	count, err := countProfiles(ctx, tx)
	if err != nil {
		return nil, err
	}
	if count >= s.maxProfiles {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyProfiles, s.maxProfiles)
	}

	now := s.now().UTC()
	p := &types.Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Level:     level,
		Coins:     coins,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, name, level, coins, offerings, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		p.ID, p.Name, p.Level, p.Coins,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	committed = true
	return p, nil
}

// Get returns one profile summary.
func (s *SQLite) Get(ctx context.Context, id string) (*types.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, level, coins, offerings, created_at, updated_at
		FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// List returns every profile, most recently played first.
func (s *SQLite) List(ctx context.Context) ([]*types.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, level, coins, offerings, created_at, updated_at
		FROM profiles ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Delete removes a profile and its save.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Load returns the saved ledger for a profile. The bool is false when the
// profile exists but has never been saved.
func (s *SQLite) Load(ctx context.Context, profileID string) (*types.Ledger, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM saves WHERE profile_id = ?`, profileID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.Get(ctx, profileID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading save: %w", err)
	}

	sd, err := save.Load([]byte(blob))
	if err != nil {
		return nil, false, fmt.Errorf("decoding save for %s: %w", profileID, err)
	}
	l := sd.Ledger
	return &l, true, nil
}

// Save writes the ledger blob and refreshes the profile summary columns.
func (s *SQLite) Save(ctx context.Context, profileID string, l *types.Ledger) error {
	now := s.now().UTC()
	blob, err := save.Save(profileID, l, now)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET level = ?, coins = ?, offerings = ?, updated_at = ? WHERE id = ?`,
		max(l.Level, 1), l.Coins, l.OfferingsCompleted, now.Format(time.RFC3339), profileID)
	if err != nil {
		return fmt.Errorf("updating profile summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, profileID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO saves (profile_id, blob, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET blob = excluded.blob, saved_at = excluded.saved_at`,
		profileID, string(blob), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	committed = true
	return nil
}

func countProfiles(ctx context.Context, q DBTX) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	return count, nil
}

// Count returns the number of stored profiles.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	return countProfiles(ctx, s.db)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*types.Profile, error) {
	var p types.Profile
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Level, &p.Coins, &p.Offerings, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &p, nil
}
