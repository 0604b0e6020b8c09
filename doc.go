// Package profit computes the profit of brokerage positions from the history
// of trades and security events of a portfolio.
//
// The computation is run per instrument and is made of three stages:
//   - Match pairs the transactions of the instrument in FIFO order into
//     opened, closed and fictitious positions. A redemption closes whatever
//     is still held.
//   - Allocate attributes coupons, amortizations, dividends and taxes to the
//     positions held when they were paid.
//   - A Calculator turns each position into a Row: opening and closing
//     amounts converted into the instrument's pricing currency, the interest
//     received, the forecast tax on price appreciation, the profit and the
//     annualized yield.
//
// Report runs the three stages for every security of a portfolio. A failing
// instrument does not prevent the others from being reported, its error is
// returned as an *InstrumentError.
//
// Inputs come from a TransactionSource, an EventSource and a CashFlowLookup.
// Store implements all of them over records decoded by DecodeStore.
package profit
