package lotledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// quantityEpsilon is the threshold below which a position counts as
// closed. Imported broker data is float-typed at the source, so tiny
// residues can arrive in the input even though our arithmetic is exact.
var quantityEpsilon = Amount{decimal.New(1, -4)}

// longTermThresholdDays is the holding period above which a gain is
// long-term. Exactly 365 days is still short-term.
const longTermThresholdDays = 365

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// daysBetween returns the signed number of calendar days from one ISO
// date to another. Unparseable dates count as zero distance.
func daysBetween(from, to string) int {
	a, okA := parseDate(from)
	b, okB := parseDate(to)
	if !okA || !okB {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// holdingDays returns how many days a lot acquired on acquiredDate has
// been held as of sellDate.
func holdingDays(acquiredDate, sellDate string) int {
	return daysBetween(acquiredDate, sellDate)
}

func isLongTermHolding(acquiredDate, sellDate string) bool {
	return holdingDays(acquiredDate, sellDate) > longTermThresholdDays
}

// sortedByDate returns a copy of transactions in ascending date order.
// The sort is stable so same-day events keep their insertion order.
// ISO dates compare correctly as strings.
func sortedByDate(transactions []Transaction) []Transaction {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

func isClosedQuantity(quantity Amount) bool {
	return quantity.LessThanOrEqual(quantityEpsilon)
}

func sortHoldingValues(values []HoldingValue) {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Symbol < values[j].Symbol
	})
}
