package statement

import (
	"fmt"
	"time"

	paymentdomain "github.com/smallbiznis/agrimarket/internal/payment/domain"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Payments"
	dateLayout = "2006-01-02 15:04"
)

var headers = []string{
	"Date",
	"Bulk purchase",
	"Crop",
	"Quantity (t)",
	"Price per ton",
	"Amount",
	"Status",
	"Paid at",
}

// Render writes payments, newest first, and the summary block to an XLSX
// workbook.
func Render(payments []paymentdomain.JoinedDistribution, summary paymentdomain.Summary, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, p := range paymentdomain.SortNewestFirst(payments) {
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.UTC().Format(dateLayout)
		}
		values := []any{
			p.CreatedAt.UTC().Format(dateLayout),
			p.Purchase.Reference,
			p.Listing.CropType,
			p.QuantityTons.InexactFloat64(),
			p.PricePerTon.InexactFloat64(),
			p.PaymentAmount.InexactFloat64(),
			string(p.PaymentStatus),
			paidAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
		row++
	}

	row++
	totals := [][]any{
		{"Total paid", summary.TotalPaid.InexactFloat64()},
		{"Total pending", summary.TotalPending.InexactFloat64()},
		{"Transactions", summary.TransactionCount},
		{"Average per transaction", summary.AveragePerTransaction.InexactFloat64()},
		{"Generated at", generatedAt.UTC().Format(dateLayout)},
	}
	for _, values := range totals {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "A", "H", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
