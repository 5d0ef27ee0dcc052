package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/mikdash/types"
)

func newTestStore(t *testing.T, opts Options) *SQLite {
	t.Helper()
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		database.Close()
	})
	return NewSQLite(database, opts)
}

func testLedger() *types.Ledger {
	return &types.Ledger{
		Coins:              95,
		Level:              2,
		Inventory:          map[string]int{"keves": 2, "tor": 1},
		TotalEarned:        75,
		TotalSpent:         150,
		Achievements:       []string{"first_avodah"},
		OfferingsCompleted: 3,
		OfferingsPerfect:   2,
		DailyCount:         1,
		BloodMethods:       []string{"two_that_are_four"},
		InstrumentsHeard:   []string{"kinor", "nevel"},
		SourcesRead:        9,
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	p, err := s.Create(ctx, "  Pinchas  ", 1, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Pinchas", p.Name)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 50, p.Coins)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Pinchas", got.Name)
	assert.Equal(t, 50, got.Coins)
	assert.Equal(t, 0, got.Offerings)
}

func TestSQLite_CreateRejectsBadInput(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	_, err := s.Create(ctx, "   ", 1, 50)
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = s.Create(ctx, "Eli", 3, 50)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestSQLite_ProfileCap(t *testing.T) {
	s := newTestStore(t, Options{MaxProfiles: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, fmt.Sprintf("Kohen %d", i), 1, 50)
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "One too many", 1, 50)
	assert.ErrorIs(t, err, ErrTooManyProfiles)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLite_DefaultCapIsTen(t *testing.T) {
	s := newTestStore(t, Options{})
	assert.Equal(t, DefaultMaxProfiles, s.maxProfiles)
	assert.Equal(t, 10, DefaultMaxProfiles)
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestStore(t, Options{})
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_LoadBeforeFirstSave(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	p, err := s.Create(ctx, "Aharon", 2, 50)
	require.NoError(t, err)

	l, ok, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, l)

	_, _, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	p, err := s.Create(ctx, "Aharon", 2, 50)
	require.NoError(t, err)

	want := testLedger()
	require.NoError(t, s.Save(ctx, p.ID, want))

	got, ok, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Summary columns follow the ledger.
	summary, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, summary.Coins)
	assert.Equal(t, 3, summary.Offerings)
	assert.Equal(t, 2, summary.Level)
}

func TestSQLite_SaveOverwrites(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	p, err := s.Create(ctx, "Aharon", 1, 50)
	require.NoError(t, err)

	l := testLedger()
	require.NoError(t, s.Save(ctx, p.ID, l))
	l.Coins = 10
	require.NoError(t, s.Save(ctx, p.ID, l))

	got, ok, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, got.Coins)
}

func TestSQLite_SaveMissingProfile(t *testing.T) {
	s := newTestStore(t, Options{})
	err := s.Save(context.Background(), "ghost", testLedger())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListOrdersByLastPlayed(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestStore(t, Options{Now: func() time.Time { return clock }})
	ctx := context.Background()

	first, err := s.Create(ctx, "First", 1, 50)
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = s.Create(ctx, "Second", 1, 50)
	require.NoError(t, err)

	// Saving the first profile later moves it to the top.
	clock = clock.Add(time.Minute)
	require.NoError(t, s.Save(ctx, first.ID, testLedger()))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)
	assert.Equal(t, clock, list[0].UpdatedAt)
}

func TestSQLite_DeleteCascadesSave(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	p, err := s.Create(ctx, "Aharon", 1, 50)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, p.ID, testLedger()))

	require.NoError(t, s.Delete(ctx, p.ID))
	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM saves`).Scan(&n))
	assert.Equal(t, 0, n)

	assert.ErrorIs(t, s.Delete(ctx, p.ID), ErrNotFound)
}

func TestOpenDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mikdash.db")
	database, err := OpenDB(path)
	require.NoError(t, err)
	defer database.Close()

	// Migrations are idempotent.
	require.NoError(t, Migrate(database))
}
