package profit

import (
	"errors"
	"fmt"
)

// ErrInputIntegrity is wrapped by errors caused by inconsistent input data:
// several redemptions of one instrument, unknown closing events, transactions
// out of order or from another instrument.
var ErrInputIntegrity = errors.New("input integrity error")

// ErrLookupExhausted is wrapped by errors raised when a cash flow required to
// price an instrument cannot be found.
var ErrLookupExhausted = errors.New("lookup exhausted")

// InstrumentError attaches an error to the instrument whose computation it aborted.
type InstrumentError struct {
	Instrument string
	Err        error
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("instrument %s: %v", e.Instrument, e.Err)
}

func (e *InstrumentError) Unwrap() error { return e.Err }
