// Export of filtered chargeback records for offline analysis
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/flashcart/insights/internal/types"
)

// Format represents the export format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format query parameter; empty defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatExcel:
		return FormatExcel, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

var header = []string{
	"chargeback_id", "date", "merchant_id", "merchant_name", "merchant_category",
	"product_name", "country", "reason_category", "reason_code",
	"payment_method", "processor", "amount_usd", "currency",
}

// Write streams the records to w in the requested format.
func Write(w io.Writer, format Format, records []types.ChargebackRecord) error {
	switch format {
	case FormatExcel:
		return writeExcel(w, records)
	case FormatJSON:
		return writeJSON(w, records)
	default:
		return writeCSV(w, records)
	}
}

func recordRow(r types.ChargebackRecord) []string {
	return []string{
		r.ChargebackID,
		types.FormatDate(r.Date),
		r.MerchantID,
		r.MerchantName,
		r.MerchantCategory,
		r.ProductName,
		r.Country,
		r.ReasonCategory,
		r.ReasonCode,
		r.PaymentMethod,
		r.Processor,
		r.AmountUSD.StringFixed(2),
		r.Currency,
	}
}

func writeCSV(w io.Writer, records []types.ChargebackRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ChargebackID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, records []types.ChargebackRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

const sheetName = "Chargebacks"

func writeExcel(w io.Writer, records []types.ChargebackRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, r := range records {
		row := recordRow(r)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			// Keep amount numeric so spreadsheet sums work
			if header[col] == "amount_usd" {
				amount, convErr := strconv.ParseFloat(value, 64)
				if convErr == nil {
					if err := f.SetCellValue(sheetName, cell, amount); err != nil {
						return err
					}
					continue
				}
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
