package ledger

import (
	"errors"
	"testing"

	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Items: map[string]types.ItemDef{
			"keves": {ID: "keves", Price: 50, Category: types.CategoryAnimal, LevelRequired: 1},
			"tor":   {ID: "tor", Price: 15, Category: types.CategoryAnimal, LevelRequired: 1},
			"solet": {ID: "solet", Price: 10, Category: types.CategoryMincha, LevelRequired: 2},
		},
	}
}

func newLedger(coins int) *types.Ledger {
	return &types.Ledger{Coins: coins, Level: 1, Inventory: map[string]int{}}
}

func TestCreditDebit(t *testing.T) {
	l := newLedger(10)
	if err := Credit(l, 5); err != nil {
		t.Fatal(err)
	}
	if err := Debit(l, 15); err != nil {
		t.Fatal(err)
	}
	if l.Coins != 0 {
		t.Errorf("coins = %d, want 0", l.Coins)
	}
}

func TestDebit_InsufficientFunds(t *testing.T) {
	l := newLedger(10)
	err := Debit(l, 11)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if l.Coins != 10 {
		t.Errorf("coins = %d, balance must be untouched", l.Coins)
	}
}

func TestNegativeAmounts(t *testing.T) {
	l := newLedger(10)
	if err := Credit(l, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("credit err = %v", err)
	}
	if err := Debit(l, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("debit err = %v", err)
	}
	if l.Coins != 10 {
		t.Errorf("coins = %d, want 10", l.Coins)
	}
}

func TestPurchase(t *testing.T) {
	l := newLedger(60)
	item, err := Purchase(l, testDefs(), "keves")
	if err != nil {
		t.Fatal(err)
	}
	if item.Price != 50 {
		t.Errorf("price = %d", item.Price)
	}
	if l.Coins != 10 || l.Inventory["keves"] != 1 || l.TotalSpent != 50 {
		t.Errorf("ledger = %+v", l)
	}
}

func TestPurchase_Failures(t *testing.T) {
	tests := []struct {
		name  string
		coins int
		item  string
		want  error
	}{
		{"unknown item", 100, "camel", ErrInvalidItem},
		{"too poor", 49, "keves", ErrInsufficientFunds},
		{"level gated", 100, "solet", ErrLevelTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(tt.coins)
			_, err := Purchase(l, testDefs(), tt.item)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if l.Coins != tt.coins || len(l.Inventory) != 0 || l.TotalSpent != 0 {
				t.Errorf("ledger mutated on failure: %+v", l)
			}
		})
	}
}

func TestSellAfterPurchase(t *testing.T) {
	defs := testDefs()
	for _, id := range []string{"keves", "tor"} {
		t.Run(id, func(t *testing.T) {
			l := newLedger(100)
			price := defs.Items[id].Price
			if _, err := Purchase(l, defs, id); err != nil {
				t.Fatal(err)
			}
			refund, err := Sell(l, defs, id)
			if err != nil {
				t.Fatal(err)
			}
			if refund != price/2 {
				t.Errorf("refund = %d, want %d", refund, price/2)
			}
			if l.Coins != 100-price+price/2 {
				t.Errorf("coins = %d", l.Coins)
			}
			if _, ok := l.Inventory[id]; ok {
				t.Error("zero-count entry should be removed")
			}
		})
	}
}

func TestSell_BeyondZeroFails(t *testing.T) {
	l := newLedger(0)
	_, err := Sell(l, testDefs(), "keves")
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("err = %v, want ErrInvalidItem", err)
	}
	if l.Coins != 0 || l.Inventory["keves"] != 0 {
		t.Errorf("ledger = %+v", l)
	}
}

func TestSell_DoesNotCountAsEarned(t *testing.T) {
	l := newLedger(0)
	l.Inventory["tor"] = 1
	if _, err := Sell(l, testDefs(), "tor"); err != nil {
		t.Fatal(err)
	}
	if l.TotalEarned != 0 {
		t.Errorf("total earned = %d, want 0", l.TotalEarned)
	}
	if l.Coins != 7 {
		t.Errorf("coins = %d, want 7", l.Coins)
	}
}

func TestConsumeAnimal(t *testing.T) {
	l := newLedger(0)
	l.Inventory["keves"] = 2
	if err := ConsumeAnimal(l, "keves"); err != nil {
		t.Fatal(err)
	}
	if l.Inventory["keves"] != 1 {
		t.Errorf("keves = %d, want 1", l.Inventory["keves"])
	}
	if err := ConsumeAnimal(l, "tor"); !errors.Is(err, ErrInsufficientInventory) {
		t.Errorf("err = %v", err)
	}
}

func TestRecordCompletion(t *testing.T) {
	l := newLedger(0)
	tamid := types.OfferingDef{ID: "tamid", CoinReward: 25, Daily: true}
	if err := RecordCompletion(l, tamid, 37, true); err != nil {
		t.Fatal(err)
	}
	if err := RecordCompletion(l, types.OfferingDef{ID: "olah_tor", CoinReward: 15}, 15, false); err != nil {
		t.Fatal(err)
	}
	if l.Coins != 52 || l.TotalEarned != 52 {
		t.Errorf("coins=%d earned=%d, want 52/52", l.Coins, l.TotalEarned)
	}
	if l.OfferingsCompleted != 2 || l.OfferingsPerfect != 1 || l.DailyCount != 1 {
		t.Errorf("counters = %+v", l)
	}
}

func TestRecordBloodMethod_Idempotent(t *testing.T) {
	l := newLedger(0)
	if !RecordBloodMethod(l, types.BloodFourCorners) {
		t.Error("first record should report true")
	}
	if RecordBloodMethod(l, types.BloodFourCorners) {
		t.Error("second record should report false")
	}
	if RecordBloodMethod(l, "") {
		t.Error("empty method should be ignored")
	}
	if len(l.BloodMethods) != 1 {
		t.Errorf("blood methods = %v", l.BloodMethods)
	}
}

func TestRecordInstrumentAndSource(t *testing.T) {
	l := newLedger(0)
	RecordInstrument(l, "kinor")
	RecordInstrument(l, "kinor")
	RecordInstrument(l, "nevel")
	if len(l.InstrumentsHeard) != 2 {
		t.Errorf("instruments = %v", l.InstrumentsHeard)
	}
	RecordSourceRead(l)
	RecordSourceRead(l)
	if l.SourcesRead != 2 {
		t.Errorf("sources read = %d", l.SourcesRead)
	}
}
