package calc

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"a": Some(1.5), "b": None()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1.5,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var v Value
	if err := json.Unmarshal([]byte("null"), &v); err != nil || v.Valid {
		t.Errorf("expected undefined from null, got %v (%v)", v, err)
	}
}

func TestNaNIsAbsent(t *testing.T) {
	items := LineItems{ItemInventory: math.NaN()}
	if items.Lookup(ItemInventory).Valid {
		t.Errorf("NaN line item should be absent")
	}
	table := StatementTable{fy22: items}
	if table.Reports(ItemInventory) {
		t.Errorf("NaN-only column should not count as reported")
	}
}

func TestLineItemsNullIsAbsent(t *testing.T) {
	var table StatementTable
	data := `{"2022-12-31": {"Current Assets": 600, "Inventory": null}}`
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	items := table[MustParsePeriod("2022-12-31")]
	if _, ok := items[ItemInventory]; ok {
		t.Errorf("null inventory should not be stored, got %v", items)
	}
	if table.Reports(ItemInventory) {
		t.Errorf("null inventory should not count as reported")
	}
	if got := items.Lookup(ItemCurrentAssets); !got.Valid || got.Float != 600 {
		t.Errorf("Current Assets = %v, want 600", got)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2023-09-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.String() != "2023-09-30" || p.Year() != 2023 {
		t.Errorf("unexpected period %s", p)
	}
	if _, err := ParsePeriod("09/30/2023"); err == nil {
		t.Errorf("expected error for malformed date")
	}

	var decoded map[Period]float64
	if err := json.Unmarshal([]byte(`{"2023-09-30": 1}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[p] != 1 {
		t.Errorf("period key did not round trip")
	}
}

func TestParseGroup(t *testing.T) {
	g, err := ParseGroup("leverage")
	if err != nil || g != GroupLeverage {
		t.Errorf("expected leverage, got %q (%v)", g, err)
	}
	if _, err := ParseGroup("Leverage Ratios"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("expected ErrUnknownGroup, got %v", err)
	}
}
