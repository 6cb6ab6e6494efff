package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashcart/insights/internal/types"
)

const chargebacksCSV = `chargeback_id,chargeback_date,merchant_id,merchant_name,merchant_category,product_name,amount,currency,country,payment_method,processor,reason_code,category
cb-01,2026-06-01T14:22:31,M001,TechZone PH,electronics,Samsung Galaxy S24,45.00,USD,PH,visa,Adyen,10.4,fraud
cb-02,2026-06-03,M002,GadgetHub ID,accessories,Slim Phone Case,12.50,USD,ID,gopay,Midtrans,13.1,product_not_received
`

const transactionsCSV = `date,merchant_id,country,payment_method,processor,transactions_count,transactions_amount
2026-06-01,M001,PH,visa,Adyen,420,18900.00
2026-06-03,M002,ID,gopay,Midtrans,310,13950.50
`

func writeTestCSVs(t *testing.T, chargebacks, transactions string) *Store {
	t.Helper()
	dir := t.TempDir()

	cbPath := filepath.Join(dir, "chargebacks.csv")
	require.NoError(t, os.WriteFile(cbPath, []byte(chargebacks), 0o644))
	txPath := filepath.Join(dir, "transactions_daily.csv")
	require.NoError(t, os.WriteFile(txPath, []byte(transactions), 0o644))

	return New(cbPath, txPath, zap.NewNop())
}

func TestStoreLoad(t *testing.T) {
	t.Run("Loads Both Tables", func(t *testing.T) {
		s := writeTestCSVs(t, chargebacksCSV, transactionsCSV)

		chargebacks, err := s.Chargebacks()
		require.NoError(t, err)
		require.Len(t, chargebacks, 2)

		transactions, err := s.Transactions()
		require.NoError(t, err)
		require.Len(t, transactions, 2)
	})

	t.Run("Renames Source Columns", func(t *testing.T) {
		s := writeTestCSVs(t, chargebacksCSV, transactionsCSV)

		chargebacks, err := s.Chargebacks()
		require.NoError(t, err)

		first := chargebacks[0]
		assert.Equal(t, "fraud", first.ReasonCategory)
		assert.Equal(t, "45", first.AmountUSD.String())
		assert.Equal(t, "Samsung Galaxy S24", first.ProductName)
	})

	t.Run("Timestamps Collapse To Calendar Dates", func(t *testing.T) {
		s := writeTestCSVs(t, chargebacksCSV, transactionsCSV)

		chargebacks, err := s.Chargebacks()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), chargebacks[0].Date)
		assert.Equal(t, time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC), chargebacks[1].Date)
	})

	t.Run("Load Is Memoized", func(t *testing.T) {
		s := writeTestCSVs(t, chargebacksCSV, transactionsCSV)
		require.NoError(t, s.Load())

		// Removing the files after the first load must not matter
		require.NoError(t, os.Remove(s.chargebacksPath))
		require.NoError(t, os.Remove(s.transactionsPath))

		chargebacks, err := s.Chargebacks()
		require.NoError(t, err)
		assert.Len(t, chargebacks, 2)
	})

	t.Run("Missing Column Fails", func(t *testing.T) {
		broken := `chargeback_id,merchant_id
cb-01,M001
`
		s := writeTestCSVs(t, broken, transactionsCSV)
		err := s.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing column")
	})

	t.Run("Invalid Date Fails With Line Number", func(t *testing.T) {
		broken := `chargeback_id,chargeback_date,merchant_id,merchant_name,merchant_category,product_name,amount,currency,country,payment_method,processor,reason_code,category
cb-01,banana,M001,TechZone PH,electronics,Thing,45.00,USD,PH,visa,Adyen,10.4,fraud
`
		s := writeTestCSVs(t, broken, transactionsCSV)
		err := s.Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidDateFormat)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("Missing File Fails", func(t *testing.T) {
		s := New("/nonexistent/chargebacks.csv", "/nonexistent/transactions.csv", zap.NewNop())
		assert.Error(t, s.Load())
	})

	t.Run("Concurrent First Access Is Safe", func(t *testing.T) {
		s := writeTestCSVs(t, chargebacksCSV, transactionsCSV)

		done := make(chan error, 8)
		for i := 0; i < 8; i++ {
			go func() {
				_, err := s.Chargebacks()
				done <- err
			}()
		}
		for i := 0; i < 8; i++ {
			assert.NoError(t, <-done)
		}
	})
}
