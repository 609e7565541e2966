package document

import (
	"fmt"
	"sort"

	"github.com/tealeg/xlsx/v3"

	"risk-insight/report"
)

// Feuilles dans l'ordre du classeur, noms lisibles (31 caractères max,
// limite du format).
var xlsxSheets = []struct {
	key   string
	title string
}{
	{report.KeyWeeklySummary, "Weekly Summary"},
	{report.KeyDailyLiquidations, "Daily Liquidations"},
	{report.KeyLiquidationsByChain, "Liquidations by Chain"},
	{report.KeyBadDebtByChain, "Bad Debt by Chain"},
	{report.KeyLiquidationStats24h, "Liquidation Stats 24h"},
	{report.KeyBadDebtStats24h, "Bad Debt Stats 24h"},
	{report.KeyUnrealizedBadDebt, "Unrealized Bad Debt"},
	{report.KeyBadDebtEvents24h, "Bad Debt Events 24h"},
}

// WriteXLSX exporte les données brutes : une feuille par dataset plus
// une feuille par vault.
func WriteXLSX(in Input, path string) error {
	file := xlsx.NewFile()

	for _, def := range xlsxSheets {
		if err := addTableSheet(file, def.title, in.Data.Table(def.key)); err != nil {
			return err
		}
	}
	for _, v := range in.Vaults {
		title := sheetName("Vault " + v.Name)
		if err := addTableSheet(file, title, in.Data.VaultLiquidity[v.Name]); err != nil {
			return err
		}
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func addTableSheet(file *xlsx.File, title string, t report.Table) error {
	sheet, err := file.AddSheet(sheetName(title))
	if err != nil {
		return fmt.Errorf("sheet %s: %w", title, err)
	}

	cols := tableColumns(t)
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c)
	}
	if t.Empty() {
		if len(cols) == 0 {
			sheet.AddRow().AddCell().SetString("No data available for this period")
		}
		return nil
	}
	for _, row := range t {
		xr := sheet.AddRow()
		for _, c := range cols {
			cell := xr.AddCell()
			switch v := row[c].(type) {
			case nil:
				cell.SetString("")
			case float64:
				cell.SetFloat(v)
			case int:
				cell.SetInt(v)
			case string:
				cell.SetString(v)
			default:
				cell.SetString(fmt.Sprintf("%v", v))
			}
		}
	}
	return nil
}

// tableColumns retourne l'union triée des colonnes de la table.
func tableColumns(t report.Table) []string {
	set := make(map[string]bool)
	for _, row := range t {
		for k := range row {
			set[k] = true
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// sheetName tronque à la limite de 31 caractères du format XLSX.
func sheetName(name string) string {
	if len(name) <= 31 {
		return name
	}
	return name[:31]
}
