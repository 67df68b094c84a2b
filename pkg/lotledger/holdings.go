package lotledger

// holdings.go implements the running-balance holdings fold. Sells are
// prorated against the average cost of the whole position, which keeps
// dashboard refreshes cheap; tax reporting uses the exact per-lot math
// in lots.go and report.go instead.

// symbolAccumulator tracks one open position cycle for a symbol.
type symbolAccumulator struct {
	quantity     Amount
	costBasis    Amount
	firstBuyDate string
	transactions []Transaction
}

// AggregateHoldings folds a transaction stream into current open
// holdings and fully closed positions. Transactions are sorted by date
// first (stable, so same-day events keep insertion order). The fold is
// lenient with noisy imports: a sell that exceeds the recorded quantity
// is clamped so the position closes at zero instead of going negative,
// and a sell with no recorded holding at all is ignored.
func AggregateHoldings(transactions []Transaction) HoldingsResult {
	result := HoldingsResult{
		OpenHoldings:    map[string]Holding{},
		ClosedPositions: []ClosedPosition{},
	}

	accumulators := map[string]*symbolAccumulator{}
	for _, tx := range sortedByDate(transactions) {
		symbol := normalizeSymbol(tx.Symbol)
		if symbol == "" {
			continue
		}
		acc := accumulators[symbol]
		if acc == nil {
			acc = &symbolAccumulator{}
			accumulators[symbol] = acc
		}

		switch tx.Type {
		case TypeBuy, TypeTransferIn:
			if isClosedQuantity(acc.quantity) {
				acc.firstBuyDate = tx.Date
			}
			acc.quantity = acc.quantity.Add(tx.Quantity)
			acc.costBasis = acc.costBasis.Add(tx.TotalAmount.Add(tx.Fees))
			acc.transactions = append(acc.transactions, tx)

		case TypeSell, TypeTransferOut:
			if !acc.quantity.IsPositive() {
				// Nothing recorded to sell against; drop the event.
				continue
			}
			soldQty := minAmount(tx.Quantity, acc.quantity)
			ratio := soldQty.Div(acc.quantity)
			basisSold := acc.costBasis.Mul(ratio)

			gain := tx.TotalAmount.Sub(tx.Fees).Sub(basisSold)
			result.TotalRealizedGain = result.TotalRealizedGain.Add(gain)
			if isLongTermHolding(acc.firstBuyDate, tx.Date) {
				result.TotalRealizedGainLongTerm = result.TotalRealizedGainLongTerm.Add(gain)
			} else {
				result.TotalRealizedGainShortTerm = result.TotalRealizedGainShortTerm.Add(gain)
			}

			acc.quantity = acc.quantity.Sub(soldQty)
			acc.costBasis = acc.costBasis.Sub(basisSold)
			acc.transactions = append(acc.transactions, tx)

			if isClosedQuantity(acc.quantity) {
				result.ClosedPositions = append(result.ClosedPositions, closePosition(symbol, acc.transactions))
				delete(accumulators, symbol)
			}

		case TypeDividend:
			// Dividends never change quantity or cost basis but belong
			// to the cycle's history.
			acc.transactions = append(acc.transactions, tx)
		}
	}

	for symbol, acc := range accumulators {
		if isClosedQuantity(acc.quantity) {
			continue
		}
		result.OpenHoldings[symbol] = Holding{
			Symbol:    symbol,
			Quantity:  acc.quantity,
			CostBasis: acc.costBasis,
			AvgCost:   acc.costBasis.Div(acc.quantity),
		}
	}
	return result
}

// closePosition derives a ClosedPosition from one cycle's transactions.
func closePosition(symbol string, transactions []Transaction) ClosedPosition {
	pos := ClosedPosition{Symbol: symbol}
	var sellFees Amount
	for _, tx := range transactions {
		pos.TotalFees = pos.TotalFees.Add(tx.Fees)
		switch {
		case tx.Type.increases():
			pos.TotalSharesBought = pos.TotalSharesBought.Add(tx.Quantity)
			pos.TotalCostBasis = pos.TotalCostBasis.Add(tx.TotalAmount.Add(tx.Fees))
			if pos.FirstBuyDate == "" {
				pos.FirstBuyDate = tx.Date
			}
		case tx.Type.decreases():
			pos.TotalSharesSold = pos.TotalSharesSold.Add(tx.Quantity)
			pos.TotalProceeds = pos.TotalProceeds.Add(tx.TotalAmount)
			sellFees = sellFees.Add(tx.Fees)
			pos.LastSellDate = tx.Date
		}
	}
	// Buy-side fees are already inside the cost basis; only sell-side
	// fees reduce the gain here.
	pos.RealizedGain = pos.TotalProceeds.Sub(sellFees).Sub(pos.TotalCostBasis)
	pos.RealizedGainPercent = pos.RealizedGain.Div(pos.TotalCostBasis).Mul(NewAmountFromInt(100))
	pos.HoldingPeriodDays = daysBetween(pos.FirstBuyDate, pos.LastSellDate)
	pos.IsLongTerm = pos.HoldingPeriodDays > longTermThresholdDays
	return pos
}

// PortfolioValue prices open holdings at the latest known market price.
// A symbol without a price falls back to its cost basis, reporting no
// unrealized gain rather than failing.
func PortfolioValue(holdings map[string]Holding, prices map[string]Amount) []HoldingValue {
	values := make([]HoldingValue, 0, len(holdings))
	for symbol, h := range holdings {
		value := HoldingValue{Holding: h, MarketValue: h.CostBasis}
		if price, ok := prices[normalizeSymbol(symbol)]; ok {
			value.LatestPrice = amountPtr(price)
			value.MarketValue = price.Mul(h.Quantity)
			gain := value.MarketValue.Sub(h.CostBasis)
			value.UnrealizedGain = amountPtr(gain)
			if h.CostBasis.IsPositive() {
				value.UnrealizedGainPercent = amountPtr(gain.Div(h.CostBasis).Mul(NewAmountFromInt(100)))
			}
		}
		values = append(values, value)
	}
	sortHoldingValues(values)
	return values
}
