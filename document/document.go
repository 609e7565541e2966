// Package document écrit le rapport final à partir des données et des
// graphiques rendus. Trois sorties : PDF, HTML autonome (images
// inlinées en base64) et classeur XLSX.
package document

import (
	"fmt"
	"time"

	"risk-insight/charts"
	"risk-insight/config"
	"risk-insight/report"
)

const reportTitle = "DeFi Lending Risk Report"

// Input rassemble tout ce dont un rendu a besoin.
type Input struct {
	Data      *report.Data
	Charts    *charts.Set
	Config    *config.ReportConfig
	Vaults    []config.Vault
	Generated time.Time
}

// VaultSection sépare les vaults sélectionnés suivant la config.
type VaultSection struct {
	Title  string
	Vaults []config.Vault
}

// Sections retourne les groupes de vaults dans l'ordre d'affichage,
// groupes vides omis.
func (in Input) Sections() []VaultSection {
	bluechip := make(map[string]bool, len(in.Config.Vaults.Bluechip))
	for _, v := range in.Config.Vaults.Bluechip {
		bluechip[v.Name] = true
	}
	var blue, long []config.Vault
	for _, v := range in.Vaults {
		if bluechip[v.Name] {
			blue = append(blue, v)
		} else {
			long = append(long, v)
		}
	}
	var sections []VaultSection
	if len(blue) > 0 {
		sections = append(sections, VaultSection{Title: "Bluechip Vaults", Vaults: blue})
	}
	if len(long) > 0 {
		sections = append(sections, VaultSection{Title: "Long-Tail Vaults", Vaults: long})
	}
	return sections
}

// TLDR compose le résumé d'ouverture, avec la branche bad debt nulle
// ou non.
func (in Input) TLDR() string {
	s := in.Data.Summary()
	base := fmt.Sprintf(
		"Over the past 7 days, %s was liquidated across %s positions, spanning %d markets on %d chains.",
		report.FormatUSD(s.TotalLiquidatedUSD),
		report.FormatCount(s.Positions),
		s.Markets, s.Chains,
	)
	if s.TotalBadDebtUSD <= 0 {
		return base + " The protocol accrued zero realized bad debt over the period."
	}
	return base + fmt.Sprintf(
		" The protocol accrued %s of realized bad debt over the period.",
		report.FormatUSD(s.TotalBadDebtUSD),
	)
}

// KPI est une carte métrique de l'en-tête du rapport.
type KPI struct {
	Label string
	Value string
}

func (in Input) KPIs() []KPI {
	s := in.Data.Summary()
	return []KPI{
		{Label: "Total Liquidated (7d)", Value: report.FormatUSD(s.TotalLiquidatedUSD)},
		{Label: "Positions Liquidated", Value: report.FormatCount(s.Positions)},
		{Label: "Realized Bad Debt (7d)", Value: report.FormatUSD(s.TotalBadDebtUSD)},
		{Label: "Markets / Chains", Value: fmt.Sprintf("%d / %d", s.Markets, s.Chains)},
	}
}

// Takeaways liste les points clés de clôture.
func (in Input) Takeaways() []string {
	s := in.Data.Summary()
	items := []string{
		fmt.Sprintf("Liquidation volume over the week totaled %s across %s positions.",
			report.FormatUSD(s.TotalLiquidatedUSD), report.FormatCount(s.Positions)),
	}
	if s.TotalBadDebtUSD <= 0 {
		items = append(items, "No realized bad debt was accrued this week; liquidations cleared at or above outstanding debt.")
	} else {
		items = append(items, fmt.Sprintf("Realized bad debt reached %s; the affected markets are detailed above.",
			report.FormatUSD(s.TotalBadDebtUSD)))
	}
	unrealized := in.Data.Table(report.KeyUnrealizedBadDebt)
	if !unrealized.Empty() {
		var total float64
		for _, row := range unrealized {
			total += row.Float(report.UnrealizedDebtAliases...)
		}
		items = append(items, fmt.Sprintf("Unrealized bad debt currently stands at %s across %d markets.",
			report.FormatUSD(total), len(unrealized)))
	}
	items = append(items, "Vault liquidity remained the first line of defense; the per-vault charts above show the buffer over time.")
	return items
}

// DataSources liste les origines des données pour la dernière page.
func (in Input) DataSources() []string {
	return []string{
		"Liquidation and bad debt figures: Dune Analytics, protocol event tables, trailing 7 days.",
		"24h statistics: Dune Analytics saved queries, trailing 24 hours.",
		"Vault liquidity series: hourly snapshots per vault, trailing 7 days.",
		"All USD values use the oracle price at event time.",
	}
}

// ChainRow est une ligne du tableau par chaîne, pré-formatée.
type ChainRow struct {
	Chain      string
	Liquidated string
	Positions  string
	Share      string
}

func (in Input) ChainRows() []ChainRow {
	table := in.Data.Table(report.KeyLiquidationsByChain)
	var total float64
	for _, row := range table {
		total += row.Float(report.AmountAliases...)
	}
	rows := make([]ChainRow, 0, len(table))
	for _, row := range table {
		amount := row.Float(report.AmountAliases...)
		share := 0.0
		if total > 0 {
			share = amount / total * 100
		}
		rows = append(rows, ChainRow{
			Chain:      row.String(report.ChainAliases...),
			Liquidated: report.FormatUSD(amount),
			Positions:  report.FormatCount(row.Int(report.PositionAliases...)),
			Share:      fmt.Sprintf("%.1f%%", share),
		})
	}
	return rows
}

// UnrealizedRow est une ligne du tableau de bad debt latente.
type UnrealizedRow struct {
	Market      string
	BadDebt     string
	TotalSupply string
	Ratio       string
}

func (in Input) UnrealizedRows() []UnrealizedRow {
	table := in.Data.Table(report.KeyUnrealizedBadDebt)
	rows := make([]UnrealizedRow, 0, len(table))
	for _, row := range table {
		debt := row.Float(report.UnrealizedDebtAliases...)
		supply := row.Float(report.TotalSupplyAliases...)
		ratio := 0.0
		if supply > 0 {
			ratio = debt / supply * 100
		}
		rows = append(rows, UnrealizedRow{
			Market:      row.String(report.MarketAliases...),
			BadDebt:     report.FormatUSD(debt),
			TotalSupply: report.FormatUSD(supply),
			Ratio:       fmt.Sprintf("%.2f%%", ratio),
		})
	}
	return rows
}

// Stats24h résume l'activité des dernières 24 heures.
type Stats24h struct {
	Liquidated string
	Positions  string
	BadDebt    string
	Events     int
}

func (in Input) Stats24h() Stats24h {
	liq := in.Data.Table(report.KeyLiquidationStats24h).First()
	bad := in.Data.Table(report.KeyBadDebtStats24h).First()
	return Stats24h{
		Liquidated: report.FormatUSD(liq.Float(report.AmountAliases...)),
		Positions:  report.FormatCount(liq.Int(report.PositionAliases...)),
		BadDebt:    report.FormatUSD(bad.Float(report.BadDebtAliases...)),
		Events:     len(in.Data.Table(report.KeyBadDebtEvents24h)),
	}
}

// HasBadDebt pilote la branche d'affichage de la section bad debt.
func (in Input) HasBadDebt() bool {
	return in.Data.Summary().TotalBadDebtUSD > 0 && in.Charts.BadDebt != ""
}
