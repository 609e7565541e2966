// Package pipeline enchaîne les trois étapes d'une génération de
// rapport : collecte des données, rendu des graphiques, écriture du
// document final.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"risk-insight/charts"
	"risk-insight/config"
	"risk-insight/document"
	"risk-insight/logging"
	"risk-insight/report"
)

// Request décrit une génération de rapport.
type Request struct {
	Sample     bool
	APIKey     string
	Vaults     []string // noms ; vide = tous les vaults configurés
	Format     string   // pdf, html ou xlsx
	OutputPath string   // vide = chemin horodaté dans outputDir
}

// Result décrit le fichier produit.
type Result struct {
	Path string
	Size int64
}

// Run exécute le pipeline complet. progress peut être nil ; chaque
// étape franchie y est annoncée.
func Run(req Request, rcfg *config.ReportConfig, outputDir string, logger *logging.Logger, progress func(string)) (*Result, error) {
	step := func(msg string) {
		if progress != nil {
			progress(msg)
		}
		logger.Writef("[INFO] %s", msg)
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = "pdf"
	}
	switch format {
	case "pdf", "html", "xlsx":
	default:
		return nil, fmt.Errorf("unsupported format %q", req.Format)
	}

	vaults := rcfg.SelectVaults(req.Vaults)

	var source report.DataSource
	if req.Sample {
		source = report.NewSampleSource()
		step("Using sample data")
	} else {
		src, err := report.NewDuneSource(req.APIKey, rcfg, logger)
		if err != nil {
			return nil, err
		}
		source = src
		step("Fetching data from Dune")
	}

	data, err := source.FetchAll(vaults)
	if err != nil {
		return nil, err
	}
	step("Data ready")

	chartDir, err := os.MkdirTemp("", "risk-insight-charts-")
	if err != nil {
		return nil, fmt.Errorf("chart dir: %w", err)
	}
	defer os.RemoveAll(chartDir)

	set, err := charts.GenerateAll(data, vaults, rcfg, chartDir)
	if err != nil {
		return nil, err
	}
	step("Charts rendered")

	outPath := req.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath(outputDir, format, time.Now())
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("output dir: %w", err)
		}
	}

	doc := document.Input{
		Data:      data,
		Charts:    set,
		Config:    rcfg,
		Vaults:    vaults,
		Generated: time.Now(),
	}

	switch format {
	case "pdf":
		err = document.WritePDF(doc, outPath)
	case "html":
		err = document.WriteHTML(doc, outPath)
	case "xlsx":
		err = document.WriteXLSX(doc, outPath)
	}
	if err != nil {
		return nil, err
	}
	step("Document written")

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}
	return &Result{Path: outPath, Size: info.Size()}, nil
}

// DefaultOutputPath construit un nom de fichier horodaté dans outputDir.
func DefaultOutputPath(outputDir, format string, now time.Time) string {
	name := fmt.Sprintf("lending_risk_report_%s.%s", now.Format("2006-01-02"), format)
	return filepath.Join(outputDir, name)
}
