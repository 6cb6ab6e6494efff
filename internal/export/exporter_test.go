package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/flashcart/insights/internal/types"
)

func testRecords() []types.ChargebackRecord {
	return []types.ChargebackRecord{
		{
			ChargebackID:     "cb-01",
			Date:             time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			MerchantID:       "M001",
			MerchantName:     "TechZone PH",
			MerchantCategory: "electronics",
			ProductName:      "Samsung Galaxy S24",
			Country:          "PH",
			ReasonCategory:   "fraud",
			ReasonCode:       "10.4",
			PaymentMethod:    "visa",
			Processor:        "Adyen",
			AmountUSD:        decimal.RequireFromString("45.5"),
			Currency:         "USD",
		},
		{
			ChargebackID:   "cb-02",
			Date:           time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
			MerchantID:     "M002",
			MerchantName:   "GadgetHub ID",
			Country:        "ID",
			ReasonCategory: "product_not_received",
			PaymentMethod:  "gopay",
			Processor:      "Midtrans",
			AmountUSD:      decimal.RequireFromString("12.50"),
			Currency:       "USD",
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Run("Empty Defaults To CSV", func(t *testing.T) {
		f, err := ParseFormat("")
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, f)
	})

	t.Run("Known Formats", func(t *testing.T) {
		for _, s := range []string{"csv", "xlsx", "json"} {
			f, err := ParseFormat(s)
			require.NoError(t, err)
			assert.Equal(t, s, f.Extension())
		}
	})

	t.Run("Unknown Format Fails", func(t *testing.T) {
		_, err := ParseFormat("pdf")
		assert.Error(t, err)
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, testRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, "cb-01", rows[1][0])
	assert.Equal(t, "2026-06-01", rows[1][1])
	assert.Equal(t, "45.50", rows[1][11]) // amounts always carry two decimals
	assert.Equal(t, "cb-02", rows[2][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testRecords()))

	var decoded []types.ChargebackRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "cb-01", decoded[0].ChargebackID)
	assert.Equal(t, "M002", decoded[1].MerchantID)
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatExcel, testRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "chargeback_id", rows[0][0])
	assert.Equal(t, "cb-01", rows[1][0])

	// Amount cells must be numeric for spreadsheet aggregation
	value, err := f.GetCellValue(sheetName, "L2")
	require.NoError(t, err)
	assert.Equal(t, "45.5", value)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
