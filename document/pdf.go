package document

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Palette du rapport.
var (
	colorInk    = rgb{33, 37, 41}
	colorMuted  = rgb{110, 117, 124}
	colorAccent = rgb{46, 134, 222}
	colorGood   = rgb{39, 174, 96}
	colorBad    = rgb{231, 76, 60}
	colorCard   = rgb{244, 246, 248}
	colorLine   = rgb{222, 226, 230}
)

type rgb struct{ r, g, b int }

const pageWidth = 215.9 // Letter, mm
const marginX = 14.0
const contentWidth = pageWidth - 2*marginX

// WritePDF rend le rapport complet au format PDF.
func WritePDF(in Input, path string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(marginX, 16, marginX)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 6, reportTitle, "", 1, "L", false, 0, "")
		setDraw(pdf, colorLine)
		pdf.Line(marginX, 14, pageWidth-marginX, 14)
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeTitle(pdf, in)
	writeTLDR(pdf, in)
	writeKPIs(pdf, in)
	writeChart(pdf, "Daily Liquidations", in.Charts.Daily)
	writeChart(pdf, "Liquidations by Chain", in.Charts.ByChain)
	writeChainTable(pdf, in)
	writeBadDebt(pdf, in)
	write24h(pdf, in)
	writeUnrealized(pdf, in)
	writeVaults(pdf, in)
	writeTakeaways(pdf, in)
	writeDataSources(pdf, in)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	setText(pdf, colorInk)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	setDraw(pdf, colorAccent)
	pdf.SetLineWidth(0.6)
	pdf.Line(marginX, pdf.GetY(), marginX+24, pdf.GetY())
	pdf.SetLineWidth(0.2)
	pdf.Ln(3)
}

func writeTitle(pdf *fpdf.Fpdf, in Input) {
	pdf.SetFont("Helvetica", "B", 22)
	setText(pdf, colorInk)
	pdf.CellFormat(0, 11, reportTitle, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorMuted)
	pdf.CellFormat(0, 6, "Generated "+in.Generated.Format("January 2, 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeTLDR(pdf *fpdf.Fpdf, in Input) {
	sectionHeading(pdf, "TL;DR")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorInk)
	pdf.MultiCell(contentWidth, 5.4, in.TLDR(), "", "L", false)
	pdf.Ln(2)
}

func writeKPIs(pdf *fpdf.Fpdf, in Input) {
	kpis := in.KPIs()
	gap := 4.0
	w := (contentWidth - gap*float64(len(kpis)-1)) / float64(len(kpis))
	h := 18.0
	y := pdf.GetY()
	x := marginX
	for _, k := range kpis {
		setFill(pdf, colorCard)
		setDraw(pdf, colorLine)
		pdf.Rect(x, y, w, h, "FD")
		pdf.SetXY(x, y+3)
		pdf.SetFont("Helvetica", "", 7.5)
		setText(pdf, colorMuted)
		pdf.CellFormat(w, 4, k.Label, "", 2, "C", false, 0, "")
		pdf.SetX(x)
		pdf.SetFont("Helvetica", "B", 13)
		setText(pdf, colorInk)
		pdf.CellFormat(w, 8, k.Value, "", 0, "C", false, 0, "")
		x += w + gap
	}
	pdf.SetY(y + h + 5)
}

func writeChart(pdf *fpdf.Fpdf, title, imgPath string) {
	if imgPath == "" {
		return
	}
	sectionHeading(pdf, title)
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.ImageOptions(imgPath, marginX, pdf.GetY(), contentWidth, 0, true, opts, 0, "")
	pdf.Ln(4)
}

func writeChainTable(pdf *fpdf.Fpdf, in Input) {
	rows := in.ChainRows()
	if len(rows) == 0 {
		return
	}
	widths := []float64{contentWidth * 0.34, contentWidth * 0.26, contentWidth * 0.22, contentWidth * 0.18}
	headers := []string{"Chain", "Liquidated", "Positions", "Share"}

	pdf.SetFont("Helvetica", "B", 9)
	setFill(pdf, colorAccent)
	pdf.SetTextColor(255, 255, 255)
	for i, hd := range headers {
		pdf.CellFormat(widths[i], 7, hd, "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorInk)
	for i, row := range rows {
		fill := i%2 == 1
		setFill(pdf, colorCard)
		cells := []string{row.Chain, row.Liquidated, row.Positions, row.Share}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 6.4, cell, "", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func writeBadDebt(pdf *fpdf.Fpdf, in Input) {
	sectionHeading(pdf, "Realized Bad Debt")
	if !in.HasBadDebt() {
		pdf.SetFont("Helvetica", "B", 11)
		setText(pdf, colorGood)
		pdf.CellFormat(0, 7, "$0 - zero realized bad debt this week.", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9.5)
		setText(pdf, colorMuted)
		pdf.MultiCell(contentWidth, 5,
			"Every liquidation over the period recovered at least the outstanding debt.", "", "L", false)
		pdf.Ln(2)
		return
	}
	setText(pdf, colorBad)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Realized bad debt was accrued this week.", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.ImageOptions(in.Charts.BadDebt, marginX+contentWidth/4, pdf.GetY(), contentWidth/2, 0, true, opts, 0, "")
	pdf.Ln(4)
}

func write24h(pdf *fpdf.Fpdf, in Input) {
	s := in.Stats24h()
	sectionHeading(pdf, "Last 24 Hours")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorInk)
	pdf.MultiCell(contentWidth, 5.4, fmt.Sprintf(
		"%s liquidated across %s positions. Realized bad debt: %s (%d events).",
		s.Liquidated, s.Positions, s.BadDebt, s.Events), "", "L", false)
	pdf.Ln(2)
}

func writeUnrealized(pdf *fpdf.Fpdf, in Input) {
	rows := in.UnrealizedRows()
	if len(rows) == 0 {
		return
	}
	sectionHeading(pdf, "Unrealized Bad Debt")
	widths := []float64{contentWidth * 0.40, contentWidth * 0.20, contentWidth * 0.22, contentWidth * 0.18}
	headers := []string{"Market", "Bad Debt", "Total Supply", "Ratio"}

	pdf.SetFont("Helvetica", "B", 9)
	setFill(pdf, colorAccent)
	pdf.SetTextColor(255, 255, 255)
	for i, hd := range headers {
		pdf.CellFormat(widths[i], 7, hd, "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, colorInk)
	for i, row := range rows {
		fill := i%2 == 1
		setFill(pdf, colorCard)
		cells := []string{row.Market, row.BadDebt, row.TotalSupply, row.Ratio}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 6.4, cell, "", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func writeVaults(pdf *fpdf.Fpdf, in Input) {
	for _, section := range in.Sections() {
		sectionHeading(pdf, section.Title)
		for _, v := range section.Vaults {
			img := in.Charts.Vaults[v.Name]
			if img == "" {
				continue
			}
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			pdf.ImageOptions(img, marginX, pdf.GetY(), contentWidth, 0, true, opts, 0, "")
			pdf.Ln(3)
		}
	}
}

func writeTakeaways(pdf *fpdf.Fpdf, in Input) {
	sectionHeading(pdf, "Key Takeaways")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorInk)
	for _, item := range in.Takeaways() {
		pdf.CellFormat(5, 5.4, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(contentWidth-5, 5.4, item, "", "L", false)
		pdf.Ln(0.6)
	}
	pdf.Ln(1)
}

func writeDataSources(pdf *fpdf.Fpdf, in Input) {
	sectionHeading(pdf, "Data Sources")
	pdf.SetFont("Helvetica", "", 8.5)
	setText(pdf, colorMuted)
	for _, src := range in.DataSources() {
		pdf.MultiCell(contentWidth, 4.6, src, "", "L", false)
	}
}
