package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"risk-insight/charts"
	"risk-insight/config"
	"risk-insight/report"
)

func testInput(t *testing.T) Input {
	t.Helper()
	rcfg := &config.ReportConfig{
		Vaults: config.VaultGroups{
			Bluechip: []config.Vault{{Name: "Core USDC", Chain: "ethereum", QueryID: 1}},
			LongTail: []config.Vault{{Name: "Frontier ALT", Chain: "base", QueryID: 2}},
		},
		ChainColors: map[string]string{"ethereum": "#627EEA", "base": "#0052FF"},
	}
	vaults := rcfg.AllVaults()

	source := report.NewSampleSource()
	data, err := source.FetchAll(vaults)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	set, err := charts.GenerateAll(data, vaults, rcfg, t.TempDir())
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	return Input{
		Data:      data,
		Charts:    set,
		Config:    rcfg,
		Vaults:    vaults,
		Generated: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestWriteHTMLZeroBadDebtBranch(t *testing.T) {
	in := testInput(t)
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTML(in, path); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	html := string(raw)
	if !strings.Contains(html, "zero realized bad debt") {
		t.Error("zero bad debt branch text missing")
	}
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Error("charts are not inlined")
	}
	if !strings.Contains(html, "Bluechip Vaults") || !strings.Contains(html, "Long-Tail Vaults") {
		t.Error("vault sections missing")
	}
}

func TestWritePDF(t *testing.T) {
	in := testInput(t)
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDF(in, path); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() < 10*1024 {
		t.Errorf("pdf suspiciously small: %d bytes", info.Size())
	}
}

func TestWriteXLSX(t *testing.T) {
	in := testInput(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(in, path); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat output: %v", err)
	}
}

func TestTLDRBranches(t *testing.T) {
	in := testInput(t)
	if !strings.Contains(in.TLDR(), "zero realized bad debt") {
		t.Errorf("TLDR = %q, want zero bad debt wording", in.TLDR())
	}

	in.Data.Tables[report.KeyWeeklySummary] = report.Table{
		{"total_liquidated_usd": 2850000.0, "total_bad_debt_usd": 125000.0,
			"total_positions_liquidated": 1247.0, "total_markets": 12.0, "total_chains": 4.0},
	}
	got := in.TLDR()
	if !strings.Contains(got, "$125.0K of realized bad debt") {
		t.Errorf("TLDR = %q, want realized bad debt amount", got)
	}
}

func TestSheetNameTruncation(t *testing.T) {
	long := "Vault With An Exceptionally Long Name Indeed"
	if got := sheetName(long); len(got) != 31 {
		t.Errorf("sheetName length = %d, want 31", len(got))
	}
}
