package lotledger

// report.go composes the lot allocator into tax-report aggregates.
// Lot state is always built from the full history, while gain records
// are only emitted for sells inside the requested range; collapsing
// those two windows into one is the classic mistake here.

// replayState carries the outcome of a full-history FIFO replay.
type replayState struct {
	lots  map[string][]TaxLot
	sells []RealizedGainDetail
}

// replayHistory walks date-sorted transactions, building lots from
// acquisitions and charging FIFO allocations for every disposal.
// FIFO is fixed for tax reporting; the selectable methods exist for
// previewing a sale before it is recorded.
func replayHistory(sorted []Transaction) replayState {
	state := replayState{lots: map[string][]TaxLot{}}
	var seq int64
	for _, tx := range sorted {
		symbol := normalizeSymbol(tx.Symbol)
		if symbol == "" {
			continue
		}
		switch {
		case tx.Type.increases():
			lotID := tx.ID
			if lotID == 0 {
				seq++
				lotID = seq
			}
			state.lots[symbol] = append(state.lots[symbol], TaxLot{
				ID:           lotID,
				Symbol:       symbol,
				Quantity:     tx.Quantity,
				RemainingQty: tx.Quantity,
				CostBasis:    tx.TotalAmount.Add(tx.Fees),
				AcquiredDate: tx.Date,
			})
		case tx.Type.decreases():
			result, err := AllocateSell(state.lots[symbol], tx.Quantity, tx.Price, tx.Date, MethodFIFO, nil)
			if err != nil {
				continue
			}
			state.lots[symbol] = ApplyAllocations(state.lots[symbol], result.Allocations)
			state.sells = append(state.sells, RealizedGainDetail{
				Symbol:            symbol,
				SellTransactionID: tx.ID,
				SellDate:          tx.Date,
				Quantity:          tx.Quantity,
				Proceeds:          result.TotalProceeds,
				CostBasis:         result.TotalCostBasis,
				GainLoss:          result.TotalGainLoss,
				Allocations:       result.Allocations,
			})
		}
	}
	return state
}

// RealizedGains replays the full transaction history and reports
// per-sale realized gains for sells dated inside [startDate, endDate].
// Empty bounds are open-ended. Loss sales are annotated with their
// wash-sale status.
func RealizedGains(transactions []Transaction, startDate, endDate string) RealizedGainReport {
	report := RealizedGainReport{
		StartDate: startDate,
		EndDate:   endDate,
		Details:   []RealizedGainDetail{},
	}

	sorted := sortedByDate(transactions)
	for _, detail := range replayHistory(sorted).sells {
		if !dateInRange(detail.SellDate, startDate, endDate) {
			continue
		}
		if detail.GainLoss.IsNegative() {
			if ws := DetectWashSale(detail.SellDate, detail.Symbol, detail.GainLoss, detail.Quantity, sorted); ws.IsWashSale {
				detail.WashSale = &ws
				report.TotalDisallowedLoss = report.TotalDisallowedLoss.Add(ws.DisallowedLoss)
			}
		}

		report.Details = append(report.Details, detail)
		report.TotalGain = report.TotalGain.Add(detail.GainLoss)
		for _, allocation := range detail.Allocations {
			if allocation.IsLongTerm {
				report.LongTermGain = report.LongTermGain.Add(allocation.GainLoss)
			} else {
				report.ShortTermGain = report.ShortTermGain.Add(allocation.GainLoss)
			}
		}
	}
	return report
}

// dateInRange checks an ISO date against optional inclusive bounds.
func dateInRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
