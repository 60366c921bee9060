package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// FormField is one labelled value on a printable form.
type FormField struct {
	Label string
	Value string
}

// FormDocument describes a printable single-record form with signature boxes.
type FormDocument struct {
	Title      string
	Subtitle   string
	Fields     []FormField
	Signatures []string
	Footer     string
}

// PDFExporter renders datasets and forms with gofpdf core fonts.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape table document with an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(latin(strings.ToUpper(title))), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 9)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(latin(header)), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, value := range data.Record(row) {
			pdf.CellFormat(colWidth, 7, tr(truncate(pdf, latin(value), colWidth-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderForm lays out fields top to bottom followed by a row of signature boxes.
func (e *PDFExporter) RenderForm(doc FormDocument) ([]byte, error) {
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("form requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(latin(doc.Title)), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(latin(doc.Subtitle)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(latin(field.Label)), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(latin(field.Value)), "B", "", false)
		pdf.Ln(3)
	}

	if len(doc.Signatures) > 0 {
		pdf.Ln(12)
		pageWidth, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		gap := 6.0
		boxWidth := (pageWidth - left - right - gap*float64(len(doc.Signatures)-1)) / float64(len(doc.Signatures))
		y := pdf.GetY()
		for i, label := range doc.Signatures {
			x := left + float64(i)*(boxWidth+gap)
			pdf.Rect(x, y, boxWidth, 25, "D")
			pdf.SetXY(x, y+26)
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(boxWidth, 5, tr(latin(label)), "", 0, "C", false, 0, "")
		}
		pdf.SetY(y + 35)
	}

	if doc.Footer != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, tr(latin(doc.Footer)), "", 1, "C", false, 0, "")
	}

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// latin swaps the rupee sign, which core fonts cannot draw.
func latin(s string) string {
	return strings.ReplaceAll(s, "₹", "Rs.")
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
