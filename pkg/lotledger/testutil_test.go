package lotledger

import "testing"

// newTx builds a transaction with TotalAmount derived from qty*price,
// the way broker imports usually arrive.
func newTx(id int64, symbol string, txType TransactionType, qty, price float64, date string) Transaction {
	q := NewAmount(qty)
	p := NewAmount(price)
	return Transaction{
		ID:          id,
		Symbol:      symbol,
		Type:        txType,
		Quantity:    q,
		Price:       p,
		TotalAmount: q.Mul(p),
		Date:        date,
	}
}

func buyTx(id int64, symbol string, qty, price float64, date string) Transaction {
	return newTx(id, symbol, TypeBuy, qty, price, date)
}

func sellTx(id int64, symbol string, qty, price float64, date string) Transaction {
	return newTx(id, symbol, TypeSell, qty, price, date)
}

func lot(id int64, symbol string, qty, costBasis float64, acquiredDate string) TaxLot {
	return TaxLot{
		ID:           id,
		Symbol:       symbol,
		Quantity:     NewAmount(qty),
		RemainingQty: NewAmount(qty),
		CostBasis:    NewAmount(costBasis),
		AcquiredDate: acquiredDate,
	}
}

// assertAmountEquals fails the test if got is not numerically equal to want.
func assertAmountEquals(t *testing.T, got Amount, want float64, msg string) {
	t.Helper()
	if !got.Equal(NewAmount(want)) {
		t.Errorf("%s: got %s, want %v", msg, got.String(), want)
	}
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// assertError fails the test if err is nil.
func assertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error but got nil", msg)
	}
}
