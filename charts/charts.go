// Package charts rend les graphiques PNG du rapport à partir des
// tables collectées. Chaque fonction écrit un fichier dans le dossier
// fourni et retourne son chemin ; une table vide produit un graphique
// de substitution plutôt qu'une erreur.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"risk-insight/config"
	"risk-insight/report"
)

const (
	chartWidth  = 900
	chartHeight = 420
)

// Set regroupe les chemins des PNG générés. Un champ vide signifie
// que le graphique n'a pas lieu d'être (bad debt nulle par exemple).
type Set struct {
	Daily   string
	ByChain string
	BadDebt string
	Vaults  map[string]string // nom de vault -> chemin PNG
}

// GenerateAll rend tous les graphiques du rapport dans dir.
func GenerateAll(data *report.Data, vaults []config.Vault, rcfg *config.ReportConfig, dir string) (*Set, error) {
	set := &Set{Vaults: make(map[string]string)}

	path, err := renderDaily(data.Table(report.KeyDailyLiquidations), dir)
	if err != nil {
		return nil, err
	}
	set.Daily = path

	path, err = renderByChain(data.Table(report.KeyLiquidationsByChain), rcfg, dir)
	if err != nil {
		return nil, err
	}
	set.ByChain = path

	path, err = renderBadDebt(data.Table(report.KeyBadDebtByChain), rcfg, dir)
	if err != nil {
		return nil, err
	}
	set.BadDebt = path

	for _, v := range vaults {
		path, err = renderVault(v, data.VaultLiquidity[v.Name], dir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			set.Vaults[v.Name] = path
		}
	}
	return set, nil
}

// renderDaily trace le total liquidé par jour sur la semaine. La
// table arrive en lignes jour x chaîne, on agrège par jour.
func renderDaily(t report.Table, dir string) (string, error) {
	out := filepath.Join(dir, "daily_liquidations.png")
	if t.Empty() {
		return out, renderPlaceholder("Daily Liquidations (7d)", out)
	}

	var order []string
	totals := make(map[string]float64)
	for _, row := range t {
		label := row.String(report.DayAliases...)
		if day, ok := row.Time(report.DayAliases...); ok {
			label = day.Format("Jan 02")
		}
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += row.Float(report.AmountAliases...)
	}

	bars := make([]chart.Value, 0, len(order))
	for _, label := range order {
		bars = append(bars, chart.Value{
			Value: totals[label],
			Label: label,
			Style: chart.Style{FillColor: drawing.ColorFromHex("E74C3C"), StrokeWidth: 0},
		})
	}

	graph := chart.BarChart{
		Title:    "Daily Liquidations (7d)",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		Bars:     bars,
		YAxis: chart.YAxis{
			ValueFormatter: usdFormatter,
		},
	}
	return out, renderTo("Daily Liquidations (7d)", out, graph.Render)
}

// renderByChain trace le volume liquidé par chaîne, couleurs de la
// config.
func renderByChain(t report.Table, rcfg *config.ReportConfig, dir string) (string, error) {
	out := filepath.Join(dir, "liquidations_by_chain.png")
	if t.Empty() {
		return out, renderPlaceholder("Liquidations by Chain (7d)", out)
	}

	bars := make([]chart.Value, 0, len(t))
	for _, row := range t {
		name := row.String(report.ChainAliases...)
		bars = append(bars, chart.Value{
			Value: row.Float(report.AmountAliases...),
			Label: name,
			Style: chart.Style{FillColor: hexColor(rcfg.ChainColor(name)), StrokeWidth: 0},
		})
	}

	graph := chart.BarChart{
		Title:    "Liquidations by Chain (7d)",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 56,
		Bars:     bars,
		YAxis: chart.YAxis{
			ValueFormatter: usdFormatter,
		},
	}
	return out, renderTo("Liquidations by Chain (7d)", out, graph.Render)
}

// renderBadDebt trace la répartition de la bad debt par chaîne.
// Retourne un chemin vide quand tout est à zéro : le document rend
// alors la branche texte.
func renderBadDebt(t report.Table, rcfg *config.ReportConfig, dir string) (string, error) {
	values := make([]chart.Value, 0, len(t))
	for _, row := range t {
		amount := row.Float(report.BadDebtAliases...)
		if amount <= 0 {
			continue
		}
		name := row.String(report.ChainAliases...)
		values = append(values, chart.Value{
			Value: amount,
			Label: name,
			Style: chart.Style{FillColor: hexColor(rcfg.ChainColor(name)), StrokeWidth: 0},
		})
	}
	if len(values) == 0 {
		return "", nil
	}
	sort.SliceStable(values, func(i, j int) bool { return values[i].Value > values[j].Value })

	out := filepath.Join(dir, "bad_debt_by_chain.png")
	graph := chart.DonutChart{
		Title:  "Bad Debt by Chain (7d)",
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
	return out, renderTo("Bad Debt by Chain (7d)", out, graph.Render)
}

// renderVault trace la série horaire d'un vault : pourcentage de
// liquidité en axe principal, total des actifs en axe secondaire.
func renderVault(v config.Vault, t report.Table, dir string) (string, error) {
	out := filepath.Join(dir, vaultFileName(v.Name))
	if t.Empty() {
		return out, renderPlaceholder(v.Name, out)
	}

	times := make([]time.Time, 0, len(t))
	pcts := make([]float64, 0, len(t))
	assets := make([]float64, 0, len(t))
	var pctSum, lastAssets float64
	for _, row := range t {
		ts, ok := row.Time(report.HourAliases...)
		if !ok {
			continue
		}
		liq := row.Float("liquidity_usd")
		tot := row.Float("total_assets_usd")
		denom := tot
		if denom < 1 {
			denom = 1
		}
		pct := liq / denom * 100
		times = append(times, ts)
		pcts = append(pcts, pct)
		assets = append(assets, tot)
		pctSum += pct
		lastAssets = tot
	}
	if len(pcts) == 0 {
		return out, renderPlaceholder(v.Name, out)
	}
	avgPct := pctSum / float64(len(pcts))

	title := fmt.Sprintf("%s | Avg Liquidity: %.1f%% | Assets: %s",
		v.Name, avgPct, report.FormatUSD(lastAssets))

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		YAxis: chart.YAxis{
			Name:           "Liquidity %",
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f%%", v.(float64)) },
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Total Assets",
			ValueFormatter: usdFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Liquidity %",
				XValues: times,
				YValues: pcts,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2E86DE"),
					StrokeWidth: 2,
					FillColor:   drawing.ColorFromHex("2E86DE").WithAlpha(60),
				},
			},
			chart.TimeSeries{
				Name:    "Total Assets",
				XValues: times,
				YValues: assets,
				YAxis:   chart.YAxisSecondary,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("7F8C8D"),
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{4, 3},
				},
			},
		},
	}
	return out, renderTo(title, out, graph.Render)
}

// renderPlaceholder produit le visuel de substitution affiché quand
// une table est vide.
func renderPlaceholder(title, out string) error {
	graph := placeholderChart(title)
	return renderTo(title, out, graph.Render)
}

func placeholderChart(title string) chart.Chart {
	return chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Style: chart.Hidden()},
		YAxis:  chart.YAxis{Style: chart.Hidden()},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: 0.5, YValue: 0.5, Label: "No data available for this period"},
				},
			},
		},
	}
}

// renderTo rend d'abord en mémoire : une série dégénérée (un seul
// point, plage de valeurs toute nulle) fait échouer go-chart alors que
// la donnée est valide, on retombe alors sur le visuel de
// substitution. Seule l'écriture du fichier reste fatale.
func renderTo(title, path string, render func(chart.RendererProvider, io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		buf.Reset()
		fallback := placeholderChart(title)
		if err := fallback.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("chart %s: %w", filepath.Base(path), err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

func vaultFileName(name string) string {
	slug := strings.ToLower(name)
	slug = strings.NewReplacer(" ", "_", "/", "_", ".", "_").Replace(slug)
	return "vault_" + slug + ".png"
}

func usdFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return report.FormatUSD(f)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
