package store

import (
	"database/sql"
	"strings"
	"time"

	"lotledger/pkg/lotledger"
)

// AddTransactionRequest carries a new transaction from the API surface.
// TotalAmount defaults to quantity*price when omitted.
type AddTransactionRequest struct {
	Symbol          string            `json:"symbol"`
	TransactionType string            `json:"transaction_type"`
	Quantity        lotledger.Amount  `json:"quantity"`
	Price           lotledger.Amount  `json:"price"`
	TotalAmount     *lotledger.Amount `json:"total_amount,omitempty"`
	Fees            lotledger.Amount  `json:"fees"`
	TransactionDate string            `json:"transaction_date"`
	Notes           *string           `json:"notes,omitempty"`
}

// TransactionFilter controls transaction queries. A zero Limit returns
// every matching row.
type TransactionFilter struct {
	Symbol          string
	TransactionType string
	StartDate       string
	EndDate         string
	Limit           int
	Offset          int
}

// validate normalizes the request in place and rejects records the
// engine could not replay.
func (r *AddTransactionRequest) validate() error {
	r.Symbol = normalizeSymbol(r.Symbol)
	if r.Symbol == "" {
		return lotledger.NewError(lotledger.ErrCodeValidation, "symbol required")
	}
	txType := lotledger.TransactionType(strings.ToUpper(strings.TrimSpace(r.TransactionType)))
	if !txType.Valid() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "invalid transaction_type: "+r.TransactionType)
	}
	r.TransactionType = string(txType)
	if r.TransactionDate == "" {
		r.TransactionDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", r.TransactionDate); err != nil {
		return lotledger.NewError(lotledger.ErrCodeValidation, "transaction_date must be YYYY-MM-DD")
	}
	if r.Quantity.IsNegative() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "quantity must not be negative")
	}
	if txType != lotledger.TypeDividend && !r.Quantity.IsPositive() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "quantity must be positive")
	}
	if r.Price.IsNegative() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "price must not be negative")
	}
	if r.Fees.IsNegative() {
		return lotledger.NewError(lotledger.ErrCodeValidation, "fees must not be negative")
	}
	return nil
}

// AddTransaction inserts a new transaction and returns its ID.
func (s *Store) AddTransaction(req AddTransactionRequest) (int64, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	totalAmount := req.Quantity.Mul(req.Price)
	if req.TotalAmount != nil {
		totalAmount = *req.TotalAmount
	}

	result, err := s.db.Exec(`
		INSERT INTO transactions (
			symbol, transaction_type, quantity, price,
			total_amount, fees, transaction_date, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.Symbol,
		req.TransactionType,
		req.Quantity,
		req.Price,
		totalAmount,
		req.Fees,
		req.TransactionDate,
		nullString(req.Notes),
	)
	if err != nil {
		return 0, wrapDB(err, "insert transaction")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrapDB(err, "transaction id")
	}
	return id, nil
}

// UpdateTransaction replaces the stored record for id. It reports
// not-found when no row matches.
func (s *Store) UpdateTransaction(id int64, req AddTransactionRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	totalAmount := req.Quantity.Mul(req.Price)
	if req.TotalAmount != nil {
		totalAmount = *req.TotalAmount
	}

	result, err := s.db.Exec(`
		UPDATE transactions SET
			symbol = ?, transaction_type = ?, quantity = ?, price = ?,
			total_amount = ?, fees = ?, transaction_date = ?, notes = ?
		WHERE id = ?
	`,
		req.Symbol,
		req.TransactionType,
		req.Quantity,
		req.Price,
		totalAmount,
		req.Fees,
		req.TransactionDate,
		nullString(req.Notes),
		id,
	)
	if err != nil {
		return wrapDB(err, "update transaction")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDB(err, "update transaction")
	}
	if affected == 0 {
		return lotledger.NewError(lotledger.ErrCodeNotFound, "transaction not found")
	}
	return nil
}

// GetTransaction fetches a single transaction by ID. A missing row
// returns (nil, nil).
func (s *Store) GetTransaction(id int64) (*lotledger.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, symbol, transaction_type, quantity, price,
			total_amount, fees, transaction_date, notes
		FROM transactions
		WHERE id = ?
	`, id)

	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, wrapDB(err, "get transaction")
	}
	return &t, nil
}

// ListTransactions returns transactions matching the filter, ordered
// by date then insertion order so the result replays chronologically.
func (s *Store) ListTransactions(filter TransactionFilter) ([]lotledger.Transaction, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, symbol, transaction_type, quantity, price,
			total_amount, fees, transaction_date, notes
		FROM transactions
		WHERE 1=1
	`)
	params := []any{}

	if filter.Symbol != "" {
		query.WriteString(" AND symbol = ?")
		params = append(params, normalizeSymbol(filter.Symbol))
	}
	if filter.TransactionType != "" {
		query.WriteString(" AND transaction_type = ?")
		params = append(params, strings.ToUpper(filter.TransactionType))
	}
	if filter.StartDate != "" {
		query.WriteString(" AND transaction_date >= ?")
		params = append(params, filter.StartDate)
	}
	if filter.EndDate != "" {
		query.WriteString(" AND transaction_date <= ?")
		params = append(params, filter.EndDate)
	}

	query.WriteString(" ORDER BY transaction_date ASC, id ASC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ? OFFSET ?")
		params = append(params, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := s.db.Query(query.String(), params...)
	if err != nil {
		return nil, wrapDB(err, "list transactions")
	}
	defer rows.Close()

	var results []lotledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, wrapDB(err, "scan transaction")
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "list transactions")
	}
	return results, nil
}

// AllTransactions returns the complete ledger in replay order.
func (s *Store) AllTransactions() ([]lotledger.Transaction, error) {
	return s.ListTransactions(TransactionFilter{})
}

// DeleteTransaction deletes a transaction by ID.
func (s *Store) DeleteTransaction(id int64) (bool, error) {
	result, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return false, wrapDB(err, "delete transaction")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrapDB(err, "delete transaction")
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (lotledger.Transaction, error) {
	var t lotledger.Transaction
	var notes sql.NullString
	if err := row.Scan(
		&t.ID, &t.Symbol, &t.Type, &t.Quantity, &t.Price,
		&t.TotalAmount, &t.Fees, &t.Date, &notes,
	); err != nil {
		return lotledger.Transaction{}, err
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	return t, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	if strings.TrimSpace(*value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
