package report

import (
	"math/rand"
	"time"

	"risk-insight/config"
)

var sampleChains = []string{"ethereum", "base", "polygon", "arbitrum", "optimism", "hyperevm"}

// SampleSource synthétise des tables de forme réaliste, sans appel
// externe. Pratique pour tester le rendu sans clé API.
type SampleSource struct {
	rng *rand.Rand
	now func() time.Time
}

func NewSampleSource() *SampleSource {
	return &SampleSource{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

func (s *SampleSource) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *SampleSource) intn(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo)
}

// FetchAll remplit toutes les clés attendues, plus une série de
// liquidité horaire par vault sélectionné.
func (s *SampleSource) FetchAll(vaults []config.Vault) (*Data, error) {
	now := s.now()
	d := NewData()

	d.Tables[KeyWeeklySummary] = Table{{
		"total_liquidated_usd":       2_847_321.45,
		"total_bad_debt_usd":         0.0,
		"total_positions_liquidated": 1247,
		"total_markets":              89,
		"total_chains":               11,
	}}

	var daily Table
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -(6 - i))
		for _, chain := range sampleChains {
			amount := s.uniform(5_000, 80_000)
			if chain == "ethereum" || chain == "base" {
				amount = s.uniform(30_000, 400_000)
			}
			daily = append(daily, Row{
				"day":                  day.Format("2006-01-02") + " 00:00:00",
				"blockchain":           chain,
				"total_liquidated_usd": amount,
				"num_liquidations":     s.intn(10, 200),
			})
		}
	}
	d.Tables[KeyDailyLiquidations] = daily

	var byChain Table
	for _, chain := range sampleChains {
		total := s.uniform(10_000, 200_000)
		if chain == "ethereum" || chain == "base" {
			total = s.uniform(100_000, 1_200_000)
		}
		byChain = append(byChain, Row{
			"blockchain":           chain,
			"total_liquidated_usd": total,
			"num_liquidations":     s.intn(50, 600),
			"markets_affected":     s.intn(5, 40),
		})
	}
	sortByFloatDesc(byChain, "total_liquidated_usd")
	d.Tables[KeyLiquidationsByChain] = byChain

	// Pas de bad debt réalisé dans l'échantillon (cas nominal du protocole)
	d.Tables[KeyBadDebtByChain] = Table{}

	d.Tables[KeyLiquidationStats24h] = Table{{
		"total_liquidated":     60173,
		"positions_liquidated": 285,
		"markets_liquidated":   18,
		"chains_liquidated":    6,
	}}
	d.Tables[KeyBadDebtStats24h] = Table{{
		"total_bad_debt_amount": 0,
		"markets_with_bad_debt": 0,
		"chains_with_bad_debt":  0,
	}}
	d.Tables[KeyUnrealizedBadDebt] = Table{
		{"market": "deUSD/USDC(86.0%)", "chain": "ethereum", "unrealized_bad_debt": 5762.19, "total_supply": 10004.95},
		{"market": "UNKNOWN/lvlUSD(91.5%)", "chain": "ethereum", "unrealized_bad_debt": 5261.65, "total_supply": 5267.03},
		{"market": "wbCOIN/USDC(86.0%)", "chain": "base", "unrealized_bad_debt": 3647.55, "total_supply": 21853.78},
	}
	d.Tables[KeyBadDebtEvents24h] = Table{}

	for _, v := range vaults {
		d.VaultLiquidity[v.Name] = s.sampleVaultSeries(now)
	}

	d.normalize()
	return d, nil
}

// sampleVaultSeries : une semaine de points toutes les 6 heures.
func (s *SampleSource) sampleVaultSeries(now time.Time) Table {
	var series Table
	assets := s.uniform(50_000_000, 400_000_000)
	for i := 0; i < 28; i++ {
		h := now.Add(-time.Duration(27-i) * 6 * time.Hour)
		assets += s.uniform(-0.01, 0.01) * assets
		liquidity := assets * s.uniform(0.10, 0.30)
		series = append(series, Row{
			"hour":             h.Format("2006-01-02 15:04:05"),
			"liquidity_usd":    liquidity,
			"total_assets_usd": assets,
		})
	}
	return series
}

func sortByFloatDesc(t Table, col string) {
	for i := 1; i < len(t); i++ {
		for j := i; j > 0 && t[j].Float(col) > t[j-1].Float(col); j-- {
			t[j], t[j-1] = t[j-1], t[j]
		}
	}
}
