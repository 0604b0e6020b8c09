package profit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordType identifies the kind of a line in a records file.
type RecordType string

const (
	RecSecurity    RecordType = "security"
	RecTransaction RecordType = "transaction"
	RecCashFlow    RecordType = "cash-flow"
	RecTrade       RecordType = "trade"
	RecEvent       RecordType = "event"
	RecRate        RecordType = "rate"
)

// tradeRecord is the json form of a Trade.
type tradeRecord struct {
	ID                 int64           `json:"id"`
	Portfolio          string          `json:"portfolio"`
	Instrument         string          `json:"instrument"`
	Timestamp          time.Time       `json:"timestamp"`
	Count              int             `json:"count"`
	Value              decimal.Decimal `json:"value"`
	AccruedInterest    decimal.Decimal `json:"accruedInterest"`
	Commission         decimal.Decimal `json:"commission"`
	Currency           string          `json:"currency"`
	CommissionCurrency string          `json:"commissionCurrency,omitempty"`
}

type rateRecord struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// DecodeStore reads a JSONL stream of records into a new Store. Each line is
// a JSON object whose "type" field is one of the RecordType values, the other
// fields are those of the corresponding type.
func DecodeStore(r io.Reader) (*Store, error) {
	store := NewStore()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		if err := decodeRecord(store, lineBytes); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading records: %w", err)
	}
	return store, nil
}

func decodeRecord(store *Store, data []byte) error {
	var identifier struct {
		Type RecordType `json:"type"`
	}
	if err := json.Unmarshal(data, &identifier); err != nil {
		return fmt.Errorf("could not identify record %q: %w", string(data), err)
	}

	switch identifier.Type {
	case RecSecurity:
		var sec Security
		if err := json.Unmarshal(data, &sec); err != nil {
			return err
		}
		if sec.ID == "" {
			return fmt.Errorf("security id is missing")
		}
		store.AddSecurity(sec)
	case RecTransaction:
		var tx Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return err
		}
		return store.AddTransaction(tx)
	case RecCashFlow:
		var f TransactionCashFlow
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if err := ValidateCurrency(f.Currency); err != nil {
			return err
		}
		switch f.Kind {
		case Price, AccruedInterest, Commission:
		default:
			return fmt.Errorf("%v is not a transaction cash flow", f.Kind)
		}
		return store.AddCashFlow(f)
	case RecTrade:
		var t tradeRecord
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		if err := ValidateCurrency(t.Currency); err != nil {
			return err
		}
		if t.CommissionCurrency == "" {
			t.CommissionCurrency = t.Currency
		}
		return store.AddTrade(Trade{
			ID:                 t.ID,
			Portfolio:          t.Portfolio,
			Instrument:         t.Instrument,
			Timestamp:          t.Timestamp,
			Count:              t.Count,
			Value:              t.Value,
			AccruedInterest:    t.AccruedInterest,
			Commission:         t.Commission,
			ValueCurrency:      t.Currency,
			CommissionCurrency: t.CommissionCurrency,
		})
	case RecEvent:
		var e SecurityEventCashFlow
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		if err := ValidateCurrency(e.Currency); err != nil {
			return err
		}
		if !e.Kind.IsInterest() && e.Kind != Redemption {
			return fmt.Errorf("%v is not a security event", e.Kind)
		}
		store.AddEvent(e)
	case RecRate:
		var rr rateRecord
		if err := json.Unmarshal(data, &rr); err != nil {
			return err
		}
		if !rr.Rate.IsPositive() {
			return fmt.Errorf("rate %s%s must be positive, got %s", rr.From, rr.To, rr.Rate)
		}
		store.Rates().Set(rr.From, rr.To, rr.Rate)
	default:
		return fmt.Errorf("unknown record type %q", identifier.Type)
	}
	return nil
}

// EncodeRows writes rows to w in JSONL format.
func EncodeRows(w io.Writer, rows []Row) error {
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %v: %w", row, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
