// In-memory table store backed by CSV files
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flashcart/insights/internal/types"
)

// Store holds the two read-only tables. Both are loaded once, before the
// server accepts traffic; Load is idempotent and race-safe via sync.Once,
// so concurrent first-requests can never observe a partially-built table.
type Store struct {
	chargebacksPath  string
	transactionsPath string
	logger           *zap.Logger

	once    sync.Once
	loadErr error

	chargebacks  []types.ChargebackRecord
	transactions []types.TransactionAggregate
}

// New creates a store reading from the given CSV paths. Nothing is loaded
// until Load (or a table accessor) is called.
func New(chargebacksPath, transactionsPath string, logger *zap.Logger) *Store {
	return &Store{
		chargebacksPath:  chargebacksPath,
		transactionsPath: transactionsPath,
		logger:           logger,
	}
}

// Load reads both tables into memory. Subsequent calls are no-ops and
// return the first load's result.
func (s *Store) Load() error {
	s.once.Do(func() {
		chargebacks, err := loadChargebacks(s.chargebacksPath)
		if err != nil {
			s.loadErr = fmt.Errorf("load chargebacks: %w", err)
			return
		}
		transactions, err := loadTransactions(s.transactionsPath)
		if err != nil {
			s.loadErr = fmt.Errorf("load transactions: %w", err)
			return
		}
		s.chargebacks = chargebacks
		s.transactions = transactions
		s.logger.Info("Data loaded",
			zap.Int("chargebacks", len(chargebacks)),
			zap.Int("transaction_slices", len(transactions)),
		)
	})
	return s.loadErr
}

// Chargebacks returns the chargeback table, loading it on first access.
// Callers must treat the slice as read-only.
func (s *Store) Chargebacks() ([]types.ChargebackRecord, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s.chargebacks, nil
}

// Transactions returns the transaction aggregate table, loading it on
// first access. Callers must treat the slice as read-only.
func (s *Store) Transactions() ([]types.TransactionAggregate, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s.transactions, nil
}

// columnIndex maps a CSV header row to column positions and fails fast on
// missing columns.
type columnIndex map[string]int

func indexHeader(header []string, required ...string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

func (idx columnIndex) get(row []string, name string) string {
	return row[idx[name]]
}

// loadChargebacks reads chargebacks.csv, renaming the source columns to the
// canonical schema: category becomes reason_category, amount becomes
// amount_usd, and chargeback_date timestamps collapse to calendar dates.
func loadChargebacks(path string) ([]types.ChargebackRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexHeader(header,
		"chargeback_id", "chargeback_date", "merchant_id", "merchant_name",
		"merchant_category", "product_name", "amount", "currency", "country",
		"payment_method", "processor", "reason_code", "category",
	)
	if err != nil {
		return nil, err
	}

	var records []types.ChargebackRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := types.ParseDate(idx.get(row, "chargeback_date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := decimal.NewFromString(idx.get(row, "amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse amount: %w", line, err)
		}

		records = append(records, types.ChargebackRecord{
			ChargebackID:     idx.get(row, "chargeback_id"),
			Date:             date,
			MerchantID:       idx.get(row, "merchant_id"),
			MerchantName:     idx.get(row, "merchant_name"),
			MerchantCategory: idx.get(row, "merchant_category"),
			ProductName:      idx.get(row, "product_name"),
			Country:          idx.get(row, "country"),
			ReasonCategory:   idx.get(row, "category"),
			ReasonCode:       idx.get(row, "reason_code"),
			PaymentMethod:    idx.get(row, "payment_method"),
			Processor:        idx.get(row, "processor"),
			AmountUSD:        amount,
			Currency:         idx.get(row, "currency"),
		})
	}
	return records, nil
}

// loadTransactions reads transactions_daily.csv.
func loadTransactions(path string) ([]types.TransactionAggregate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexHeader(header,
		"date", "merchant_id", "country", "payment_method", "processor",
		"transactions_count", "transactions_amount",
	)
	if err != nil {
		return nil, err
	}

	var aggregates []types.TransactionAggregate
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := types.ParseDate(idx.get(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		count, err := strconv.ParseInt(idx.get(row, "transactions_count"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse transactions_count: %w", line, err)
		}
		amount, err := decimal.NewFromString(idx.get(row, "transactions_amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse transactions_amount: %w", line, err)
		}

		aggregates = append(aggregates, types.TransactionAggregate{
			Date:               date,
			MerchantID:         idx.get(row, "merchant_id"),
			Country:            idx.get(row, "country"),
			PaymentMethod:      idx.get(row, "payment_method"),
			Processor:          idx.get(row, "processor"),
			TransactionsCount:  count,
			TransactionsAmount: amount,
		})
	}
	return aggregates, nil
}
