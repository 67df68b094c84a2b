package lotledger

import "sort"

// lots.go implements exact per-lot cost basis: lot construction from
// the transaction history and sale allocation under a selectable
// depletion order. Allocation never mutates its input; callers commit
// a sale by running ApplyAllocations over the result.

// BuildLots replays the full transaction history and returns every
// acquisition lot per symbol, with RemainingQty reflecting FIFO
// depletion by later sells. Lot IDs are the acquiring transaction IDs;
// transactions without an ID get a sequence number so depletion can
// still address each lot individually.
func BuildLots(transactions []Transaction) map[string][]TaxLot {
	return replayHistory(sortedByDate(transactions)).lots
}

// OpenLots filters lots down to those with shares remaining.
func OpenLots(lots []TaxLot) []TaxLot {
	open := make([]TaxLot, 0, len(lots))
	for _, lot := range lots {
		if lot.RemainingQty.IsPositive() {
			open = append(open, lot)
		}
	}
	return open
}

// AllocateSell charges sellQty against the given lots in the order the
// method dictates and returns per-lot allocations with long/short-term
// classification. Input lots are not modified. A sell larger than the
// available quantity consumes every lot and leaves the remainder
// unallocated; use PreviewSell to surface the shortfall explicitly.
//
// SPECID requires an explicit lot-id order; lots missing from that
// list are never touched. An empty id list or an unknown method is an
// invalid-input error.
func AllocateSell(lots []TaxLot, sellQty, sellPrice Amount, sellDate string, method CostBasisMethod, specificLotIDs []int64) (SellResult, error) {
	ordered, err := orderLots(lots, method, specificLotIDs)
	if err != nil {
		return SellResult{}, err
	}

	result := SellResult{Allocations: []SellAllocation{}}
	remaining := sellQty
	for _, lot := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := minAmount(remaining, lot.RemainingQty)
		if !take.IsPositive() {
			continue
		}

		basis := lot.CostBasis.Mul(take).Div(lot.Quantity)
		proceeds := take.Mul(sellPrice)
		gain := proceeds.Sub(basis)
		days := holdingDays(lot.AcquiredDate, sellDate)

		allocation := SellAllocation{
			LotID:              lot.ID,
			QuantitySold:       take,
			CostBasisAllocated: basis,
			AcquiredDate:       lot.AcquiredDate,
			Proceeds:           proceeds,
			GainLoss:           gain,
			HoldingDays:        days,
			IsLongTerm:         days > longTermThresholdDays,
		}
		result.Allocations = append(result.Allocations, allocation)
		result.TotalCostBasis = result.TotalCostBasis.Add(basis)
		result.TotalProceeds = result.TotalProceeds.Add(proceeds)
		result.TotalGainLoss = result.TotalGainLoss.Add(gain)
		if allocation.IsLongTerm {
			result.LongTermGain = result.LongTermGain.Add(gain)
		} else {
			result.ShortTermGain = result.ShortTermGain.Add(gain)
		}

		remaining = remaining.Sub(take)
	}
	return result, nil
}

// PreviewSell runs AllocateSell and reports whether the requested
// quantity exceeds what the lots can cover, and by how much.
func PreviewSell(lots []TaxLot, sellQty, sellPrice Amount, sellDate string, method CostBasisMethod, specificLotIDs []int64) (SellPreview, error) {
	result, err := AllocateSell(lots, sellQty, sellPrice, sellDate, method, specificLotIDs)
	if err != nil {
		return SellPreview{}, err
	}
	preview := SellPreview{SellResult: result}

	var allocated Amount
	for _, allocation := range result.Allocations {
		allocated = allocated.Add(allocation.QuantitySold)
	}
	if allocated.LessThan(sellQty) {
		preview.InsufficientShares = true
		preview.Shortfall = sellQty.Sub(allocated)
	}
	return preview, nil
}

// ApplyAllocations commits a sale: it returns a copy of lots with
// RemainingQty reduced by each allocation. Depletion is clamped at
// zero so a lot can never go negative.
func ApplyAllocations(lots []TaxLot, allocations []SellAllocation) []TaxLot {
	updated := make([]TaxLot, len(lots))
	copy(updated, lots)
	for _, allocation := range allocations {
		for i := range updated {
			if updated[i].ID != allocation.LotID {
				continue
			}
			updated[i].RemainingQty = updated[i].RemainingQty.Sub(allocation.QuantitySold)
			if updated[i].RemainingQty.IsNegative() {
				updated[i].RemainingQty = Amount{}
			}
			break
		}
	}
	return updated
}

// orderLots returns the open lots in the depletion order for method.
// The sorts are stable: ties fall back to original input order.
func orderLots(lots []TaxLot, method CostBasisMethod, specificLotIDs []int64) ([]TaxLot, error) {
	if method == MethodSpecID {
		if len(specificLotIDs) == 0 {
			return nil, NewError(ErrCodeInvalidInput, "specific-identification requires an ordered list of lot ids")
		}
		byID := map[int64]TaxLot{}
		for _, lot := range OpenLots(lots) {
			byID[lot.ID] = lot
		}
		ordered := make([]TaxLot, 0, len(specificLotIDs))
		for _, id := range specificLotIDs {
			if lot, ok := byID[id]; ok {
				ordered = append(ordered, lot)
			}
		}
		return ordered, nil
	}

	ordered := OpenLots(lots)
	switch method {
	case MethodFIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AcquiredDate < ordered[j].AcquiredDate
		})
	case MethodLIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AcquiredDate > ordered[j].AcquiredDate
		})
	case MethodHIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].costPerShare().GreaterThan(ordered[j].costPerShare())
		})
	default:
		return nil, NewError(ErrCodeInvalidInput, "unknown cost basis method: "+string(method))
	}
	return ordered, nil
}
