package lotledger

// washSaleWindowDays is the reach of the wash-sale rule on each side
// of a loss sale: a replacement buy within 30 calendar days before or
// after the sale (61 days total) disallows the loss.
const washSaleWindowDays = 30

// DetectWashSale checks whether a loss sale is disallowed by a
// replacement purchase of the same symbol inside the 61-day window.
// Gains are never wash sales. Among several in-window buys the single
// nearest one triggers the rule, with post-sale buys preferred over
// earlier ones (a repurchase after the sale is the common real-world
// trigger); a same-day buy counts as post-sale. The disallowed loss is
// prorated by the fraction of sold shares actually replaced.
func DetectWashSale(sellDate, symbol string, sellLoss, sellQty Amount, transactions []Transaction) WashSaleResult {
	result := WashSaleResult{}
	if !sellLoss.IsNegative() || !sellQty.IsPositive() {
		return result
	}

	normalized := normalizeSymbol(symbol)
	var match *Transaction
	matchDays := 0
	for i := range transactions {
		tx := &transactions[i]
		if !tx.Type.increases() || normalizeSymbol(tx.Symbol) != normalized {
			continue
		}
		days := daysBetween(sellDate, tx.Date)
		if days < -washSaleWindowDays || days > washSaleWindowDays {
			continue
		}
		if match == nil || betterWashSaleMatch(days, matchDays) {
			match = tx
			matchDays = days
		}
	}
	if match == nil {
		return result
	}

	replaced := minAmount(match.Quantity, sellQty)
	result.IsWashSale = true
	result.DisallowedLoss = sellLoss.Abs().Mul(replaced.Div(sellQty))
	result.MatchingBuyID = match.ID
	result.MatchingBuyDate = match.Date
	result.MatchingBuyQty = match.Quantity
	result.DaysFromSell = matchDays
	return result
}

// betterWashSaleMatch reports whether a candidate at the given signed
// day offset beats the current best. Post-sale buys beat pre-sale
// buys; within the same side, closer wins. Exact ties keep the first
// transaction encountered.
func betterWashSaleMatch(candidate, current int) bool {
	candidateAfter := candidate >= 0
	currentAfter := current >= 0
	if candidateAfter != currentAfter {
		return candidateAfter
	}
	return abs(candidate) < abs(current)
}

// WouldTriggerWashSale runs the inverse check for pre-trade warnings:
// would buying buyQty shares of symbol on buyDate retroactively
// disallow a loss realized in the previous 30 days? Sale losses are
// recomputed from the full history with FIFO lots. The matching-buy
// fields of the result echo the proposed purchase; DaysFromSell is
// measured from the tainted sale to the proposed buy.
func WouldTriggerWashSale(buyDate, symbol string, buyQty Amount, transactions []Transaction) WashSaleResult {
	result := WashSaleResult{}
	if !buyQty.IsPositive() {
		return result
	}

	normalized := normalizeSymbol(symbol)
	replay := replayHistory(sortedByDate(transactions))

	var match *RealizedGainDetail
	matchDays := 0
	for i := range replay.sells {
		detail := &replay.sells[i]
		if detail.Symbol != normalized || !detail.GainLoss.IsNegative() {
			continue
		}
		days := daysBetween(detail.SellDate, buyDate)
		if days < 0 || days > washSaleWindowDays {
			continue
		}
		if match == nil || days < matchDays {
			match = detail
			matchDays = days
		}
	}
	if match == nil || !match.Quantity.IsPositive() {
		return result
	}

	replaced := minAmount(buyQty, match.Quantity)
	result.IsWashSale = true
	result.DisallowedLoss = match.GainLoss.Abs().Mul(replaced.Div(match.Quantity))
	result.MatchingBuyDate = buyDate
	result.MatchingBuyQty = buyQty
	result.DaysFromSell = matchDays
	return result
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
