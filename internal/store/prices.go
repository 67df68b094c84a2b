package store

import (
	"database/sql"

	"lotledger/pkg/lotledger"
)

// LatestPrice is the most recent manually recorded price of a symbol.
type LatestPrice struct {
	Symbol    string           `json:"symbol"`
	Price     lotledger.Amount `json:"price"`
	UpdatedAt string           `json:"updated_at"`
}

// SetLatestPrice inserts or updates the latest price of a symbol.
func (s *Store) SetLatestPrice(symbol string, price lotledger.Amount) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return lotledger.NewError(lotledger.ErrCodeValidation, "symbol required")
	}
	if price.IsNegative() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "price must not be negative")
	}
	_, err := s.db.Exec(`
		INSERT INTO latest_prices (symbol, price, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			updated_at = CURRENT_TIMESTAMP
	`, symbol, price)
	if err != nil {
		return wrapDB(err, "set latest price")
	}
	return nil
}

// GetLatestPrice returns the latest price for a symbol, or nil when
// none has been recorded.
func (s *Store) GetLatestPrice(symbol string) (*LatestPrice, error) {
	symbol = normalizeSymbol(symbol)
	row := s.db.QueryRow("SELECT symbol, price, updated_at FROM latest_prices WHERE symbol = ?", symbol)
	var p LatestPrice
	if err := row.Scan(&p.Symbol, &p.Price, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, wrapDB(err, "get latest price")
	}
	return &p, nil
}

// GetAllLatestPrices returns every recorded price keyed by symbol.
func (s *Store) GetAllLatestPrices() (map[string]lotledger.Amount, error) {
	rows, err := s.db.Query("SELECT symbol, price FROM latest_prices")
	if err != nil {
		return nil, wrapDB(err, "list latest prices")
	}
	defer rows.Close()

	result := map[string]lotledger.Amount{}
	for rows.Next() {
		var symbol string
		var price lotledger.Amount
		if err := rows.Scan(&symbol, &price); err != nil {
			return nil, wrapDB(err, "scan latest price")
		}
		result[symbol] = price
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "list latest prices")
	}
	return result, nil
}
