// Package export renders sales reports as printable documents.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

const (
	margin     = 10.0
	lineHeight = 5.0
	cellPad    = 1.0
	fontFamily = "Helvetica"
)

var (
	columnTitles = []string{"#", "Date", "Sales Person", "Items", "Total"}
	columnWidths = []float64{16, 32, 38, 74, 30}
	columnAligns = []string{"L", "L", "L", "L", "R"}
)

// SalesReport is one page of sales ready for rendering
type SalesReport struct {
	Title       string
	Sales       []models.Sale
	GeneratedAt time.Time
	Location    *time.Location
	Currency    string
}

// GrandTotal sums the sales on the report
func (r SalesReport) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Sales {
		total = total.Add(r.Sales[i].Total())
	}
	return total
}

// FormatMoney renders an amount with two decimals behind the currency symbol
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// RenderSalesPDF writes the report as an A4 table: one row per sale with its
// itemised lines, and a footer row with the report total
func RenderSalesPDF(w io.Writer, report SalesReport) error {
	loc := report.Location
	if loc == nil {
		loc = time.Local
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(report.Title, true)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 16)
		pdf.CellFormat(0, 10, tr(report.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont(fontFamily, "B", 10)
		pdf.SetFillColor(238, 238, 238)
		for i, title := range columnTitles {
			pdf.CellFormat(columnWidths[i], 7, title, "1", 0, columnAligns[i], true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 9)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		text := fmt.Sprintf("Generated: %s    Page %d", report.GeneratedAt.In(loc).Format("2006-01-02 15:04"), pdf.PageNo())
		pdf.CellFormat(0, 6, tr(text), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	top := pdf.GetY()

	for i := range report.Sales {
		sale := &report.Sales[i]
		cells := []string{
			fmt.Sprintf("%d", sale.ID),
			sale.SaleDate.In(loc).Format("2006-01-02 15:04"),
			sale.SalesPerson,
			itemsText(sale, report.Currency),
			FormatMoney(report.Currency, sale.Total()),
		}
		drawRow(pdf, tr, top, cells)
	}

	drawTotalRow(pdf, tr, FormatMoney(report.Currency, report.GrandTotal()))

	return pdf.Output(w)
}

func itemsText(sale *models.Sale, currency string) string {
	items := make([]string, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		items = append(items, fmt.Sprintf("%d x %s (%s)", l.Quantity, l.ServiceName, FormatMoney(currency, l.UnitPrice)))
	}
	return strings.Join(items, "\n")
}

// drawRow draws one table row tall enough for its longest wrapped cell. A row
// that fits on a fresh page starts a new page when it would not fit here; a
// taller one is continued across pages. top is where rows start below the
// page header.
func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, top float64, cells []string) {
	wrapped := make([][]string, len(cells))
	lines := 1
	for i, text := range cells {
		for _, line := range pdf.SplitLines([]byte(tr(text)), columnWidths[i]-2*cellPad) {
			wrapped[i] = append(wrapped[i], string(line))
		}
		if n := len(wrapped[i]); n > lines {
			lines = n
		}
	}

	perPage := linesThatFit(pageBottom(pdf) - top)
	if perPage < 1 {
		perPage = 1
	}
	if lines <= perPage {
		ensureSpace(pdf, float64(lines)*lineHeight+2*cellPad)
	}

	for from := 0; from < lines; {
		room := linesThatFit(pageBottom(pdf) - pdf.GetY())
		if room < 1 {
			pdf.AddPage()
			room = perPage
		}
		to := from + room
		if to > lines {
			to = lines
		}
		drawRowPart(pdf, wrapped, from, to)
		from = to
		if from < lines {
			pdf.AddPage()
		}
	}
}

// drawRowPart draws wrapped lines [from, to) of every cell as one boxed band
func drawRowPart(pdf *gofpdf.Fpdf, wrapped [][]string, from, to int) {
	height := float64(to-from)*lineHeight + 2*cellPad

	x, y := pdf.GetXY()
	for i, cell := range wrapped {
		pdf.Rect(x, y, columnWidths[i], height, "D")
		pdf.SetXY(x+cellPad, y+cellPad)
		pdf.MultiCell(columnWidths[i]-2*cellPad, lineHeight, strings.Join(window(cell, from, to), "\n"), "", columnAligns[i], false)
		x += columnWidths[i]
	}
	pdf.SetXY(margin, y+height)
}

// linesThatFit is how many wrapped lines a band of the given height can hold
func linesThatFit(height float64) int {
	return int((height - 2*cellPad) / lineHeight)
}

func window(lines []string, from, to int) []string {
	if from > len(lines) {
		from = len(lines)
	}
	if to > len(lines) {
		to = len(lines)
	}
	return lines[from:to]
}

func drawTotalRow(pdf *gofpdf.Fpdf, tr func(string) string, total string) {
	height := lineHeight + 2*cellPad
	ensureSpace(pdf, height)

	labelWidth := 0.0
	for _, w := range columnWidths[:len(columnWidths)-1] {
		labelWidth += w
	}

	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(labelWidth, height, tr("Total of current sales:"), "1", 0, "R", false, 0, "")
	pdf.SetFont(fontFamily, "B", 9)
	pdf.CellFormat(columnWidths[len(columnWidths)-1], height, tr(total), "1", 1, "R", false, 0, "")
}

// ensureSpace breaks the page when height would run into the footer area
func ensureSpace(pdf *gofpdf.Fpdf, height float64) {
	if pdf.GetY()+height > pageBottom(pdf) {
		pdf.AddPage()
	}
}

// pageBottom is the lowest y a row may reach above the footer
func pageBottom(pdf *gofpdf.Fpdf) float64 {
	_, pageHeight := pdf.GetPageSize()
	return pageHeight - margin - 12
}
