// Package lotledger computes holdings, tax lots, realized gains and
// wash-sale adjustments from an ordered stream of security transactions.
// It is pure in-memory computation: callers own persistence and price
// retrieval and pass snapshots in.
package lotledger

// TransactionType classifies a transaction's effect on a position.
type TransactionType string

const (
	TypeBuy         TransactionType = "BUY"
	TypeSell        TransactionType = "SELL"
	TypeDividend    TransactionType = "DIVIDEND"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{
	TypeBuy,
	TypeSell,
	TypeDividend,
	TypeTransferIn,
	TypeTransferOut,
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	for _, v := range TransactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// increases reports whether the type adds shares to a position.
func (t TransactionType) increases() bool {
	return t == TypeBuy || t == TypeTransferIn
}

// decreases reports whether the type removes shares from a position.
func (t TransactionType) decreases() bool {
	return t == TypeSell || t == TypeTransferOut
}

// CostBasisMethod selects the lot-depletion order for a sale.
type CostBasisMethod string

const (
	MethodFIFO   CostBasisMethod = "FIFO"
	MethodLIFO   CostBasisMethod = "LIFO"
	MethodHIFO   CostBasisMethod = "HIFO"
	MethodSpecID CostBasisMethod = "SPECID"
)

// CostBasisMethods lists every supported cost-basis method.
var CostBasisMethods = []CostBasisMethod{MethodFIFO, MethodLIFO, MethodHIFO, MethodSpecID}

// Valid reports whether m is a supported method.
func (m CostBasisMethod) Valid() bool {
	for _, v := range CostBasisMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Transaction is an immutable input record. TotalAmount is the gross
// proceeds or cost of the event; Fees are charged on top of it.
type Transaction struct {
	ID          int64           `json:"id"`
	Symbol      string          `json:"symbol"`
	Type        TransactionType `json:"transaction_type"`
	Quantity    Amount          `json:"quantity"`
	Price       Amount          `json:"price"`
	TotalAmount Amount          `json:"total_amount"`
	Fees        Amount          `json:"fees"`
	Date        string          `json:"transaction_date"`
	Notes       *string         `json:"notes,omitempty"`
}

// Holding is a current open position snapshot. CostBasis is the
// aggregate basis for the whole position, not per share.
type Holding struct {
	Symbol    string `json:"symbol"`
	Quantity  Amount `json:"quantity"`
	CostBasis Amount `json:"cost_basis"`
	AvgCost   Amount `json:"avg_cost"`
}

// ClosedPosition aggregates one full open-to-close cycle of a symbol.
// A symbol that is re-bought later starts a new independent cycle.
type ClosedPosition struct {
	Symbol              string `json:"symbol"`
	TotalSharesBought   Amount `json:"total_shares_bought"`
	TotalSharesSold     Amount `json:"total_shares_sold"`
	TotalCostBasis      Amount `json:"total_cost_basis"`
	TotalProceeds       Amount `json:"total_proceeds"`
	TotalFees           Amount `json:"total_fees"`
	RealizedGain        Amount `json:"realized_gain"`
	RealizedGainPercent Amount `json:"realized_gain_percent"`
	FirstBuyDate        string `json:"first_buy_date"`
	LastSellDate        string `json:"last_sell_date"`
	HoldingPeriodDays   int    `json:"holding_period_days"`
	IsLongTerm          bool   `json:"is_long_term"`
}

// HoldingsResult is the output of AggregateHoldings.
type HoldingsResult struct {
	OpenHoldings               map[string]Holding `json:"open_holdings"`
	ClosedPositions            []ClosedPosition   `json:"closed_positions"`
	TotalRealizedGain          Amount             `json:"total_realized_gain"`
	TotalRealizedGainLongTerm  Amount             `json:"total_realized_gain_long_term"`
	TotalRealizedGainShortTerm Amount             `json:"total_realized_gain_short_term"`
}

// TaxLot is one discrete acquisition. CostBasis covers the full
// original Quantity; RemainingQty only ever decreases.
type TaxLot struct {
	ID           int64  `json:"id"`
	Symbol       string `json:"symbol"`
	Quantity     Amount `json:"quantity"`
	RemainingQty Amount `json:"remaining_qty"`
	CostBasis    Amount `json:"cost_basis"`
	AcquiredDate string `json:"acquired_date"`
}

// costPerShare returns the lot's original cost divided by its original
// quantity. Zero-quantity lots report zero.
func (l TaxLot) costPerShare() Amount {
	return l.CostBasis.Div(l.Quantity)
}

// SellAllocation records the portion of a sale charged against one lot.
type SellAllocation struct {
	LotID              int64  `json:"lot_id"`
	QuantitySold       Amount `json:"quantity_sold"`
	CostBasisAllocated Amount `json:"cost_basis_allocated"`
	AcquiredDate       string `json:"acquired_date"`
	Proceeds           Amount `json:"proceeds"`
	GainLoss           Amount `json:"gain_loss"`
	HoldingDays        int    `json:"holding_days"`
	IsLongTerm         bool   `json:"is_long_term"`
}

// SellResult aggregates the allocations of one sale.
type SellResult struct {
	Allocations    []SellAllocation `json:"allocations"`
	TotalCostBasis Amount           `json:"total_cost_basis"`
	TotalProceeds  Amount           `json:"total_proceeds"`
	TotalGainLoss  Amount           `json:"total_gain_loss"`
	LongTermGain   Amount           `json:"long_term_gain"`
	ShortTermGain  Amount           `json:"short_term_gain"`
}

// SellPreview is a SellResult plus an explicit shortfall report for
// sells that exceed the available lot quantity.
type SellPreview struct {
	SellResult
	InsufficientShares bool   `json:"insufficient_shares"`
	Shortfall          Amount `json:"shortfall"`
}

// WashSaleResult reports whether a loss sale is disallowed by a
// replacement purchase inside the 61-day window. DaysFromSell is
// signed: negative when the buy preceded the sell.
type WashSaleResult struct {
	IsWashSale      bool   `json:"is_wash_sale"`
	DisallowedLoss  Amount `json:"disallowed_loss"`
	MatchingBuyID   int64  `json:"matching_buy_id,omitempty"`
	MatchingBuyDate string `json:"matching_buy_date,omitempty"`
	MatchingBuyQty  Amount `json:"matching_buy_qty"`
	DaysFromSell    int    `json:"days_from_sell"`
}

// RealizedGainDetail is one in-range sale in a realized-gain report.
type RealizedGainDetail struct {
	Symbol            string           `json:"symbol"`
	SellTransactionID int64            `json:"sell_transaction_id"`
	SellDate          string           `json:"sell_date"`
	Quantity          Amount           `json:"quantity"`
	Proceeds          Amount           `json:"proceeds"`
	CostBasis         Amount           `json:"cost_basis"`
	GainLoss          Amount           `json:"gain_loss"`
	Allocations       []SellAllocation `json:"allocations"`
	WashSale          *WashSaleResult  `json:"wash_sale,omitempty"`
}

// RealizedGainReport aggregates realized gains across a date range.
type RealizedGainReport struct {
	StartDate           string               `json:"start_date"`
	EndDate             string               `json:"end_date"`
	Details             []RealizedGainDetail `json:"details"`
	TotalGain           Amount               `json:"total_gain"`
	LongTermGain        Amount               `json:"long_term_gain"`
	ShortTermGain       Amount               `json:"short_term_gain"`
	TotalDisallowedLoss Amount               `json:"total_disallowed_loss"`
}

// HoldingValue is a holding priced at the latest known market price.
// LatestPrice and UnrealizedGain are nil when no price is available;
// MarketValue then falls back to cost basis.
type HoldingValue struct {
	Holding
	LatestPrice           *Amount `json:"latest_price"`
	MarketValue           Amount  `json:"market_value"`
	UnrealizedGain        *Amount `json:"unrealized_gain"`
	UnrealizedGainPercent *Amount `json:"unrealized_gain_percent"`
}
