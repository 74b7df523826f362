package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/hrsuite/payroll-engine/internal/domain"
)

// pdfRenderer renders payslips as PDF files under a configured directory.
type pdfRenderer struct {
	dir string
}

func NewPDFRenderer(dir string) DocumentRenderer {
	return &pdfRenderer{dir: dir}
}

func (r *pdfRenderer) RenderPayslip(_ context.Context, payslip *domain.Payslip, employee *domain.Employee) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "PAYSLIP", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Employee: "+employee.FullName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s",
		payslip.PayPeriodStart.Format("2006-01-02"),
		payslip.PayPeriodEnd.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Pay date: "+payslip.PayDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	r.section(pdf, "EARNINGS")
	r.line(pdf, "Gross salary", payslip.GrossSalary)
	for _, earning := range payslip.Earnings {
		r.line(pdf, earning.Description, earning.Amount)
	}

	r.section(pdf, "DEDUCTIONS")
	for _, deduction := range payslip.Deductions {
		r.line(pdf, deduction.Description, deduction.Amount.Neg())
	}

	r.section(pdf, "EMPLOYER CONTRIBUTIONS")
	for _, contribution := range payslip.Contributions {
		r.line(pdf, contribution.Description, contribution.Amount)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	r.line(pdf, "NET PAY", payslip.NetPay)

	path := filepath.Join(r.dir, fmt.Sprintf("payslip-%s.pdf", payslip.ID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}

	return path, nil
}

func (r *pdfRenderer) section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 6, title, "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func (r *pdfRenderer) line(pdf *fpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(140, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, amount.StringFixed(2), "", 1, "R", false, 0, "")
}
