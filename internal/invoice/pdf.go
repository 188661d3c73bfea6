package invoice

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type Seller struct {
	Name    string
	Address []string
	Email   string
	GSTIN   string
}

func money(d decimal.Decimal) string { return "Rs. " + d.StringFixed(2) }

// RenderPDF writes a single-page tax invoice.
func RenderPDF(w io.Writer, inv Invoice, seller Seller) error {
	return renderPDF(w, inv, seller, true)
}

func renderPDF(w io.Writer, inv Invoice, seller Seller, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreationDate(inv.Date)
	pdf.SetModificationDate(inv.Date)
	pdf.SetTitle("Tax Invoice "+inv.Number, true)
	pdf.SetAuthor(seller.Name, true)
	// core fonts are cp1252; free text goes through the translator
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, tr(seller.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range seller.Address {
		pdf.CellFormat(0, 5, tr(l), "", 1, "L", false, 0, "")
	}
	if seller.Email != "" {
		pdf.CellFormat(0, 5, tr("Email: "+seller.Email), "", 1, "L", false, 0, "")
	}
	if seller.GSTIN != "" {
		pdf.CellFormat(0, 5, tr("GSTIN: "+seller.GSTIN), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.CellFormat(95, 5, tr("Invoice No: "+inv.Number), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 5, "Date: "+inv.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 5, tr("Order: "+inv.OrderID), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 5, tr("Payment: "+inv.PaymentMethod), "", 1, "R", false, 0, "")
	if a := inv.ShipTo; a != nil {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Ship to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(a.AddressLine), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(joinNonEmpty(", ", a.City, a.State, a.ZipCode, a.Country)), "", 1, "L", false, 0, "")
		if a.PhoneNumber != "" {
			pdf.CellFormat(0, 5, tr("Phone: "+a.PhoneNumber), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Item", 58, "L"}, {"HSN", 18, "C"}, {"Qty", 12, "R"}, {"Rate", 24, "R"},
		{"Taxable", 26, "R"}, {"GST %", 14, "R"}, {"Tax", 18, "R"}, {"Total", 20, "R"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range inv.Lines {
		cells := []string{
			tr(l.Name), tr(l.HSNCode), fmt.Sprint(l.Quantity), l.UnitPrice.StringFixed(2),
			l.Taxable.StringFixed(2), l.Rate.StringFixed(2), l.Tax.StringFixed(2), l.Total.StringFixed(2),
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 6, "Tax breakdown", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, g := range inv.Breakdown {
		pdf.CellFormat(40, 5, "GST "+g.Rate.StringFixed(2)+"%", "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 5, "Taxable "+money(g.Taxable), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 5, "Tax "+money(g.Tax), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", money(inv.Subtotal)},
		{"Total tax", money(inv.TotalTax)},
		{"Shipping", money(inv.Shipping)},
		{"Grand total", money(inv.GrandTotal)},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 10)
		}
		pdf.CellFormat(150, 6, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, t[1], "", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return pdf.Output(w)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
