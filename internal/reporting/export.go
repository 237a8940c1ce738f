package reporting

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/lexpro/backoffice/pkg/format"
	"github.com/lexpro/backoffice/pkg/models"
)

const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Table is one titled grid of a document. Cells hold string, int or
// decimal.Decimal values; money stays numeric in spreadsheets.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]any
	Foot    []any
}

type Document struct {
	Kind     string // ranking, lawyer, finances
	Title    string
	Subtitle string
	Tables   []Table
}

// Export is a rendered document ready to stream or upload.
type Export struct {
	Kind        string
	Format      string
	Filename    string
	ContentType string
	Body        []byte
}

/* ============================== Documents =============================== */

var rankingHeaders = []string{"#", "Profesional", "Casos", "Contratado", "Comisiones", "Com. Pagadas", "Cobrado Neto"}

func RankingDocument(rows []RankingRow, from, to time.Time) Document {
	t := Table{Headers: rankingHeaders, Rows: make([][]any, 0, len(rows))}
	for i, r := range rows {
		t.Rows = append(t.Rows, []any{i + 1, r.Name, r.CasesCount, r.Contracted, r.Commissions, r.CommissionsPaid, r.CobradoNeto})
	}
	tot := RankingTotals(rows)
	t.Foot = []any{"", tot.Name, tot.CasesCount, tot.Contracted, tot.Commissions, tot.CommissionsPaid, tot.CobradoNeto}

	return Document{
		Kind:     "ranking",
		Title:    "Ranking de Profesionales",
		Subtitle: periodLabel(from, to),
		Tables:   []Table{t},
	}
}

func LawyerDocument(row RankingRow, lines []LedgerLine, from, to time.Time) Document {
	summary := Table{
		Title:   "Resumen",
		Headers: []string{"Casos", "Contratado", "Comisiones", "Com. Pagadas", "Cobrado Neto"},
		Rows:    [][]any{{row.CasesCount, row.Contracted, row.Commissions, row.CommissionsPaid, row.CobradoNeto}},
	}
	detail := Table{
		Title:   "Casos",
		Headers: []string{"Caso", "Cliente", "Monto Caso", "Tipo", "Comisión", "Estado"},
	}
	for _, l := range lines {
		detail.Rows = append(detail.Rows, []any{l.CaseNumber, l.ClientName, l.TotalAmount, ruleLabel(l.CommissionType, l.CommissionPercentage), l.CommissionAmount, paidLabel(l.CommissionPaid)})
	}
	return Document{
		Kind:     "lawyer",
		Title:    "Reporte de " + row.Name,
		Subtitle: periodLabel(from, to),
		Tables:   []Table{summary, detail},
	}
}

func FinancesDocument(s Summary, l Ledger) Document {
	pending, paid := l.Split()

	summary := Table{
		Title:   "Resumen",
		Headers: []string{"Concepto", "Monto"},
		Rows: [][]any{
			{"Monto Contratado", s.TotalContracted},
			{"Comisiones Pagadas", s.TotalCommissionsPaid},
			{"Comisiones Pendientes", s.PendingCommissions},
			{"Monto Neto", s.NetRemainder},
		},
	}
	pend := Table{
		Title:   "Comisiones Pendientes",
		Headers: []string{"Caso", "Profesional", "Cliente", "Tipo", "Comisión"},
		Foot:    []any{"", "", "", "Total", l.TotalPending},
	}
	for _, x := range pending {
		pend.Rows = append(pend.Rows, []any{x.CaseNumber, x.LawyerName, x.ClientName, ruleLabel(x.CommissionType, x.CommissionPercentage), x.CommissionAmount})
	}
	tables := []Table{summary, pend}
	if len(paid) > 0 {
		pt := Table{
			Title:   "Comisiones Pagadas",
			Headers: []string{"Caso", "Profesional", "Cliente", "Comisión"},
			Foot:    []any{"", "", "Total", l.TotalPaid},
		}
		for _, x := range paid {
			pt.Rows = append(pt.Rows, []any{x.CaseNumber, x.LawyerName, x.ClientName, x.CommissionAmount})
		}
		tables = append(tables, pt)
	}
	return Document{Kind: "finances", Title: "Control Financiero", Tables: tables}
}

func periodLabel(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "Todos los periodos"
	case to.IsZero():
		return "Desde " + from.Format("2006-01-02")
	case from.IsZero():
		return "Hasta " + to.Format("2006-01-02")
	default:
		return from.Format("2006-01-02") + " a " + to.Format("2006-01-02")
	}
}

func ruleLabel(t models.CommissionType, pct decimal.Decimal) string {
	if t == models.CommissionPercentage {
		return format.Percent(pct)
	}
	return "Fijo"
}

func paidLabel(paid bool) string {
	if paid {
		return "Pagada"
	}
	return "Pendiente"
}

/* ============================== Rendering =============================== */

// Render produces the document in the requested format.
func Render(doc Document, fmtName string) (Export, error) {
	stamp := time.Now().Format("20060102-150405")
	switch fmtName {
	case FormatXLSX:
		b, err := RenderXLSX(doc)
		if err != nil {
			return Export{}, err
		}
		return Export{Kind: doc.Kind, Format: FormatXLSX, Filename: fmt.Sprintf("%s-%s.xlsx", doc.Kind, stamp), ContentType: contentTypeXLSX, Body: b}, nil
	case FormatPDF, "":
		b, err := RenderPDF(doc)
		if err != nil {
			return Export{}, err
		}
		return Export{Kind: doc.Kind, Format: FormatPDF, Filename: fmt.Sprintf("%s-%s.pdf", doc.Kind, stamp), ContentType: contentTypePDF, Body: b}, nil
	default:
		return Export{}, fmt.Errorf("unsupported format %q", fmtName)
	}
}

func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	put := func(col int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, xlsxValue(v))
	}
	boldRow := func(cols int) error {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(cols, row)
		return f.SetCellStyle(sheet, first, last, bold)
	}

	if err := put(1, doc.Title); err != nil {
		return nil, err
	}
	if err := boldRow(1); err != nil {
		return nil, err
	}
	row++
	if doc.Subtitle != "" {
		if err := put(1, doc.Subtitle); err != nil {
			return nil, err
		}
		row++
	}

	for _, t := range doc.Tables {
		row++
		if t.Title != "" {
			if err := put(1, t.Title); err != nil {
				return nil, err
			}
			if err := boldRow(1); err != nil {
				return nil, err
			}
			row++
		}
		for i, h := range t.Headers {
			if err := put(i+1, h); err != nil {
				return nil, err
			}
		}
		if err := boldRow(len(t.Headers)); err != nil {
			return nil, err
		}
		row++
		for _, r := range t.Rows {
			for i, v := range r {
				if err := put(i+1, v); err != nil {
					return nil, err
				}
			}
			row++
		}
		if len(t.Foot) > 0 {
			for i, v := range t.Foot {
				if err := put(i+1, v); err != nil {
					return nil, err
				}
			}
			if err := boldRow(len(t.Foot)); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}

func pdfText(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return format.Currency(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, tr("Generado el "+time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	for _, t := range doc.Tables {
		pdf.Ln(4)
		if t.Title != "" {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 8, tr(t.Title), "", 1, "L", false, 0, "")
		}
		if len(t.Headers) == 0 {
			continue
		}
		w := usable / float64(len(t.Headers))

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(30, 58, 95)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range t.Headers {
			pdf.CellFormat(w, 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, r := range t.Rows {
			for _, v := range r {
				pdf.CellFormat(w, 6, tr(pdfText(v)), "1", 0, align(v), false, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(t.Foot) > 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(230, 230, 230)
			for _, v := range t.Foot {
				pdf.CellFormat(w, 7, tr(pdfText(v)), "1", 0, align(v), true, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func align(v any) string {
	switch v.(type) {
	case decimal.Decimal, int:
		return "R"
	default:
		return "L"
	}
}
