package report

import (
	"strconv"
	"strings"
	"time"
)

// Clés de datasets consommées par les graphiques et le document.
// Après le fetch, chacune est TOUJOURS présente (table vide au pire).
const (
	KeyWeeklySummary       = "weekly_summary"
	KeyDailyLiquidations   = "daily_liquidations"
	KeyLiquidationsByChain = "liquidations_by_chain"
	KeyBadDebtByChain      = "bad_debt_by_chain"
	KeyLiquidationStats24h = "liquidation_stats_24h"
	KeyBadDebtStats24h     = "bad_debt_stats_24h"
	KeyUnrealizedBadDebt   = "unrealized_bad_debt"
	KeyBadDebtEvents24h    = "bad_debt_events_24h"
)

var DatasetKeys = []string{
	KeyWeeklySummary,
	KeyDailyLiquidations,
	KeyLiquidationsByChain,
	KeyBadDebtByChain,
	KeyLiquidationStats24h,
	KeyBadDebtStats24h,
	KeyUnrealizedBadDebt,
	KeyBadDebtEvents24h,
}

// Alias de colonnes tolérés (les dashboards Dune ne sont pas toujours
// cohérents sur la casse). L'ordre est l'ordre d'essai.
var (
	MarketAliases         = []string{"market", "Market"}
	ChainAliases          = []string{"chain", "Chain", "blockchain"}
	UnrealizedDebtAliases = []string{"unrealized_bad_debt", "Unrealized Bad Debt"}
	TotalSupplyAliases    = []string{"total_supply", "Total Supply"}
	AmountAliases         = []string{"liquidated_usd", "total_liquidated_usd", "total_liquidated", "amount_usd", "total_usd"}
	PositionAliases       = []string{"positions", "num_liquidations", "positions_liquidated", "liquidation_count", "count"}
	BadDebtAliases        = []string{"bad_debt_usd", "total_bad_debt_amount", "total_bad_debt_usd"}
	DayAliases            = []string{"day", "date", "block_date"}
	HourAliases           = []string{"hour", "time", "block_time"}
)

type Row map[string]interface{}

type Table []Row

func (t Table) Empty() bool {
	return len(t) == 0
}

// First retourne la première ligne, ou une ligne vide si la table l'est.
func (t Table) First() Row {
	if len(t) == 0 {
		return Row{}
	}
	return t[0]
}

// Value retourne la première colonne présente parmi les alias.
func (r Row) Value(aliases ...string) (interface{}, bool) {
	for _, a := range aliases {
		if v, ok := r[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Float lit une valeur numérique, en tolérant les montants préformatés
// type "$5,762.19". La normalisation définitive se fait à l'ingestion
// (voir Data.normalize) ; ceci reste le point de coercition unique.
func (r Row) Float(aliases ...string) float64 {
	v, ok := r.Value(aliases...)
	if !ok {
		return 0
	}
	f, _ := CoerceUSD(v)
	return f
}

func (r Row) Int(aliases ...string) int {
	return int(r.Float(aliases...))
}

func (r Row) String(aliases ...string) string {
	v, ok := r.Value(aliases...)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	f, ok := CoerceUSD(v)
	if ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.000 UTC",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Time parse un horodatage Dune (plusieurs formats observés).
func (r Row) Time(aliases ...string) (time.Time, bool) {
	v, ok := r.Value(aliases...)
	if !ok {
		return time.Time{}, false
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceUSD convertit un montant, numérique ou préformaté ("$1,234.56"),
// en float64. Retourne false si la valeur n'est pas convertible.
func CoerceUSD(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Data regroupe tout ce que le rapport consomme : tables nommées +
// séries de liquidité par vault (clé = nom du vault).
type Data struct {
	Tables         map[string]Table
	VaultLiquidity map[string]Table
}

func NewData() *Data {
	return &Data{
		Tables:         make(map[string]Table),
		VaultLiquidity: make(map[string]Table),
	}
}

// Table retourne la table demandée, jamais nil.
func (d *Data) Table(key string) Table {
	if t, ok := d.Tables[key]; ok {
		return t
	}
	return Table{}
}

// normalize résout une fois pour toutes les montants préformatés en
// float64, pour que le rendu n'ait plus jamais à brancher sur le type.
func (d *Data) normalize() {
	for _, row := range d.Table(KeyUnrealizedBadDebt) {
		if v, ok := row.Value(UnrealizedDebtAliases...); ok {
			if f, ok := CoerceUSD(v); ok {
				row["unrealized_bad_debt"] = f
			}
		}
		if v, ok := row.Value(TotalSupplyAliases...); ok {
			if f, ok := CoerceUSD(v); ok {
				row["total_supply"] = f
			}
		}
	}
}

// Summary, les métriques agrégées de la semaine. Valeurs à zéro si la
// table weekly_summary est vide (même branche d'affichage qu'un bad
// debt nul, comportement voulu).
type Summary struct {
	TotalLiquidatedUSD float64
	TotalBadDebtUSD    float64
	Positions          int
	Markets            int
	Chains             int
}

func (d *Data) Summary() Summary {
	row := d.Table(KeyWeeklySummary).First()
	return Summary{
		TotalLiquidatedUSD: row.Float("total_liquidated_usd"),
		TotalBadDebtUSD:    row.Float("total_bad_debt_usd"),
		Positions:          row.Int("total_positions_liquidated"),
		Markets:            row.Int("total_markets"),
		Chains:             row.Int("total_chains"),
	}
}
