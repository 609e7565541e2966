package report

import (
	"testing"
	"time"
)

func TestCoerceUSD(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{5762.19, 5762.19, true},
		{float32(2), 2, true},
		{42, 42, true},
		{int64(7), 7, true},
		{"$5,762.19", 5762.19, true},
		{"1234.5", 1234.5, true},
		{" $1,000 ", 1000, true},
		{"n/a", 0, false},
		{nil, 0, false},
		{[]string{"x"}, 0, false},
	}
	for _, c := range cases {
		got, ok := CoerceUSD(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("CoerceUSD(%v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestRowAliases(t *testing.T) {
	row := Row{"Chain": "ethereum", "liquidated_usd": "$1,500.00"}
	if got := row.String(ChainAliases...); got != "ethereum" {
		t.Errorf("String(ChainAliases) = %q", got)
	}
	if got := row.Float("liquidated_usd"); got != 1500 {
		t.Errorf("Float = %v, want 1500", got)
	}
	if got := row.Float("missing_col"); got != 0 {
		t.Errorf("Float on missing column = %v, want 0", got)
	}
}

func TestRowTimeFormats(t *testing.T) {
	cases := []string{
		"2025-06-02 09:00:00.000 UTC",
		"2025-06-02 09:00:00 UTC",
		"2025-06-02 09:00:00",
		"2025-06-02T09:00:00Z",
		"2025-06-02",
	}
	for _, s := range cases {
		row := Row{"hour": s}
		got, ok := row.Time("hour")
		if !ok {
			t.Errorf("Time(%q) not parsed", s)
			continue
		}
		if got.Year() != 2025 || got.Month() != time.June || got.Day() != 2 {
			t.Errorf("Time(%q) = %v", s, got)
		}
	}
	if _, ok := (Row{"hour": "not a date"}).Time("hour"); ok {
		t.Error("Time should reject garbage")
	}
}

func TestDataTableNeverNil(t *testing.T) {
	d := NewData()
	if got := d.Table("absent"); got == nil {
		t.Error("Table should return an empty table, not nil")
	}
	if !d.Table("absent").Empty() {
		t.Error("unknown key should be empty")
	}
}

func TestNormalizePreformattedAmounts(t *testing.T) {
	d := NewData()
	d.Tables[KeyUnrealizedBadDebt] = Table{
		{"Market": "wstETH/USDC", "Unrealized Bad Debt": "$12,345.67", "Total Supply": "$1,000,000.00"},
	}
	d.normalize()
	row := d.Table(KeyUnrealizedBadDebt).First()
	if got, ok := row["unrealized_bad_debt"].(float64); !ok || got != 12345.67 {
		t.Errorf("unrealized_bad_debt = %v", row["unrealized_bad_debt"])
	}
	if got, ok := row["total_supply"].(float64); !ok || got != 1000000 {
		t.Errorf("total_supply = %v", row["total_supply"])
	}
}

func TestSummaryFromEmptyTable(t *testing.T) {
	d := NewData()
	s := d.Summary()
	if s.TotalLiquidatedUSD != 0 || s.TotalBadDebtUSD != 0 || s.Positions != 0 {
		t.Errorf("empty summary should be all zeros: %+v", s)
	}
}
