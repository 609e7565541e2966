package document

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
)

// htmlReport est le gabarit du rapport autonome. Les images sont
// inlinées en data URI, le fichier s'ouvre sans aucune ressource
// externe.
var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; color: #212529; max-width: 960px; margin: 0 auto; padding: 24px; }
h1 { font-size: 28px; margin-bottom: 2px; }
h2 { font-size: 18px; border-bottom: 2px solid #2E86DE; padding-bottom: 4px; margin-top: 32px; }
.generated { color: #6E757C; font-size: 13px; }
.kpis { display: flex; gap: 12px; margin: 18px 0; }
.kpi { flex: 1; background: #F4F6F8; border: 1px solid #DEE2E6; border-radius: 6px; padding: 10px; text-align: center; }
.kpi .label { color: #6E757C; font-size: 11px; }
.kpi .value { font-size: 20px; font-weight: bold; margin-top: 4px; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th { background: #2E86DE; color: #fff; text-align: left; padding: 6px 8px; }
td { padding: 5px 8px; border-bottom: 1px solid #DEE2E6; }
tr:nth-child(even) td { background: #F4F6F8; }
img.chart { width: 100%; height: auto; margin: 8px 0; }
img.donut { width: 50%; display: block; margin: 8px auto; }
.good { color: #27AE60; font-weight: bold; }
.bad { color: #E74C3C; font-weight: bold; }
.sources { color: #6E757C; font-size: 12px; }
ul.takeaways li { margin-bottom: 6px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="generated">Generated {{.Generated}}</p>

<h2>TL;DR</h2>
<p>{{.TLDR}}</p>

<div class="kpis">
{{range .KPIs}}<div class="kpi"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>

{{if .DailyChart}}<h2>Daily Liquidations</h2>
<img class="chart" src="{{.DailyChart}}" alt="Daily liquidations">{{end}}

{{if .ByChainChart}}<h2>Liquidations by Chain</h2>
<img class="chart" src="{{.ByChainChart}}" alt="Liquidations by chain">{{end}}

{{if .ChainRows}}<table>
<tr><th>Chain</th><th>Liquidated</th><th>Positions</th><th>Share</th></tr>
{{range .ChainRows}}<tr><td>{{.Chain}}</td><td>{{.Liquidated}}</td><td>{{.Positions}}</td><td>{{.Share}}</td></tr>
{{end}}</table>{{end}}

<h2>Realized Bad Debt</h2>
{{if .HasBadDebt}}<p class="bad">Realized bad debt was accrued this week.</p>
{{if .BadDebtChart}}<img class="donut" src="{{.BadDebtChart}}" alt="Bad debt by chain">{{end}}
{{else}}<p class="good">$0 - zero realized bad debt this week.</p>
<p>Every liquidation over the period recovered at least the outstanding debt.</p>{{end}}

<h2>Last 24 Hours</h2>
<p>{{.Stats24h.Liquidated}} liquidated across {{.Stats24h.Positions}} positions.
Realized bad debt: {{.Stats24h.BadDebt}} ({{.Stats24h.Events}} events).</p>

{{if .UnrealizedRows}}<h2>Unrealized Bad Debt</h2>
<table>
<tr><th>Market</th><th>Bad Debt</th><th>Total Supply</th><th>Ratio</th></tr>
{{range .UnrealizedRows}}<tr><td>{{.Market}}</td><td>{{.BadDebt}}</td><td>{{.TotalSupply}}</td><td>{{.Ratio}}</td></tr>
{{end}}</table>{{end}}

{{range .Sections}}<h2>{{.Title}}</h2>
{{range .Charts}}<img class="chart" src="{{.}}" alt="Vault liquidity">
{{end}}{{end}}

<h2>Key Takeaways</h2>
<ul class="takeaways">
{{range .Takeaways}}<li>{{.}}</li>
{{end}}</ul>

<h2>Data Sources</h2>
<div class="sources">
{{range .DataSources}}<p>{{.}}</p>
{{end}}</div>
</body>
</html>
`))

type htmlSection struct {
	Title  string
	Charts []template.URL
}

type htmlView struct {
	Title          string
	Generated      string
	TLDR           string
	KPIs           []KPI
	DailyChart     template.URL
	ByChainChart   template.URL
	BadDebtChart   template.URL
	ChainRows      []ChainRow
	HasBadDebt     bool
	Stats24h       Stats24h
	UnrealizedRows []UnrealizedRow
	Sections       []htmlSection
	Takeaways      []string
	DataSources    []string
}

// WriteHTML rend le rapport en un seul fichier HTML autonome.
func WriteHTML(in Input, path string) error {
	view := htmlView{
		Title:          reportTitle,
		Generated:      in.Generated.Format("January 2, 2006 15:04 MST"),
		TLDR:           in.TLDR(),
		KPIs:           in.KPIs(),
		ChainRows:      in.ChainRows(),
		HasBadDebt:     in.HasBadDebt(),
		Stats24h:       in.Stats24h(),
		UnrealizedRows: in.UnrealizedRows(),
		Takeaways:      in.Takeaways(),
		DataSources:    in.DataSources(),
	}

	var err error
	if view.DailyChart, err = inlinePNG(in.Charts.Daily); err != nil {
		return err
	}
	if view.ByChainChart, err = inlinePNG(in.Charts.ByChain); err != nil {
		return err
	}
	if view.BadDebtChart, err = inlinePNG(in.Charts.BadDebt); err != nil {
		return err
	}
	for _, section := range in.Sections() {
		hs := htmlSection{Title: section.Title}
		for _, v := range section.Vaults {
			uri, err := inlinePNG(in.Charts.Vaults[v.Name])
			if err != nil {
				return err
			}
			if uri != "" {
				hs.Charts = append(hs.Charts, uri)
			}
		}
		view.Sections = append(view.Sections, hs)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	defer f.Close()
	if err := htmlReport.Execute(f, view); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// inlinePNG encode un PNG en data URI. Chemin vide = URI vide.
func inlinePNG(path string) (template.URL, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("inline chart %s: %w", path, err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)), nil
}
