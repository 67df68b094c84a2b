package lotledger

import "testing"

func TestAggregateHoldings_Basic(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 100, 150, "2024-01-02"),
	})

	if len(result.OpenHoldings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(result.OpenHoldings))
	}
	h := result.OpenHoldings["AAPL"]
	assertAmountEquals(t, h.Quantity, 100, "quantity")
	assertAmountEquals(t, h.CostBasis, 15000, "cost basis")
	assertAmountEquals(t, h.AvgCost, 150, "average cost")
	if len(result.ClosedPositions) != 0 {
		t.Errorf("expected no closed positions, got %d", len(result.ClosedPositions))
	}
}

func TestAggregateHoldings_WeightedAverageCost(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 100, 150, "2024-01-02"),
		buyTx(2, "AAPL", 100, 160, "2024-02-02"),
	})

	h := result.OpenHoldings["AAPL"]
	assertAmountEquals(t, h.Quantity, 200, "quantity")
	assertAmountEquals(t, h.CostBasis, 31000, "cost basis")
	assertAmountEquals(t, h.AvgCost, 155, "weighted average cost")
}

func TestAggregateHoldings_FeesEnterCostBasis(t *testing.T) {
	buy := buyTx(1, "AAPL", 100, 100, "2024-01-02")
	buy.Fees = NewAmount(10)
	result := AggregateHoldings([]Transaction{buy})

	h := result.OpenHoldings["AAPL"]
	assertAmountEquals(t, h.CostBasis, 10010, "cost includes fees")
	assertAmountEquals(t, h.AvgCost, 100.1, "avg cost with fees")
}

func TestAggregateHoldings_PartialSellProratesBasis(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 100, 100, "2024-01-02"),
		sellTx(2, "AAPL", 50, 120, "2024-03-02"),
	})

	h := result.OpenHoldings["AAPL"]
	assertAmountEquals(t, h.Quantity, 50, "quantity after sell")
	// Average-cost proration: half the shares take half the basis.
	assertAmountEquals(t, h.CostBasis, 5000, "basis after sell")
	assertAmountEquals(t, h.AvgCost, 100, "avg cost unchanged by sell")
	// Realized on the sold half: 6000 - 5000.
	assertAmountEquals(t, result.TotalRealizedGain, 1000, "realized gain")
	assertAmountEquals(t, result.TotalRealizedGainShortTerm, 1000, "short-term gain")
}

func TestAggregateHoldings_OverSellClampsToZero(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 10, 100, "2024-01-02"),
		sellTx(2, "AAPL", 25, 110, "2024-02-02"),
	})

	if len(result.OpenHoldings) != 0 {
		t.Fatalf("expected position closed, got %v", result.OpenHoldings)
	}
	if len(result.ClosedPositions) != 1 {
		t.Fatalf("expected 1 closed position, got %d", len(result.ClosedPositions))
	}
	pos := result.ClosedPositions[0]
	if pos.TotalSharesSold.LessThan(NewAmount(25)) {
		t.Errorf("closed position should record the reported sale quantity, got %s", pos.TotalSharesSold.String())
	}
	// Basis consumed is clamped at the full recorded basis.
	assertAmountEquals(t, pos.TotalCostBasis, 1000, "total cost basis")
}

func TestAggregateHoldings_SellWithoutHoldingIgnored(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		sellTx(1, "AAPL", 10, 100, "2024-01-02"),
	})
	if len(result.OpenHoldings) != 0 || len(result.ClosedPositions) != 0 {
		t.Fatalf("orphan sell should be dropped, got %+v", result)
	}
	assertAmountEquals(t, result.TotalRealizedGain, 0, "no realized gain")
}

func TestAggregateHoldings_DividendDoesNotChangePosition(t *testing.T) {
	div := newTx(2, "AAPL", TypeDividend, 0, 0, "2024-02-02")
	div.TotalAmount = NewAmount(35)
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 100, 100, "2024-01-02"),
		div,
	})

	h := result.OpenHoldings["AAPL"]
	assertAmountEquals(t, h.Quantity, 100, "quantity unchanged")
	assertAmountEquals(t, h.CostBasis, 10000, "basis unchanged")
}

func TestAggregateHoldings_TransfersMovePosition(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		newTx(1, "VTI", TypeTransferIn, 50, 200, "2024-01-02"),
		newTx(2, "VTI", TypeTransferOut, 20, 200, "2024-04-02"),
	})

	h := result.OpenHoldings["VTI"]
	assertAmountEquals(t, h.Quantity, 30, "quantity after transfer out")
	assertAmountEquals(t, h.CostBasis, 6000, "basis after transfer out")
}

func TestAggregateHoldings_RoundTripClosesPosition(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 10, 100, "2023-01-01"),
		sellTx(2, "AAPL", 10, 150, "2024-02-01"),
	})

	if len(result.OpenHoldings) != 0 {
		t.Fatalf("expected no open holdings, got %v", result.OpenHoldings)
	}
	if len(result.ClosedPositions) != 1 {
		t.Fatalf("expected 1 closed position, got %d", len(result.ClosedPositions))
	}

	pos := result.ClosedPositions[0]
	assertAmountEquals(t, pos.TotalCostBasis, 1000, "total cost basis")
	assertAmountEquals(t, pos.TotalProceeds, 1500, "total proceeds")
	assertAmountEquals(t, pos.RealizedGain, 500, "realized gain")
	assertAmountEquals(t, pos.RealizedGainPercent, 50, "realized gain percent")
	if pos.HoldingPeriodDays != 396 {
		t.Errorf("expected 396 holding days, got %d", pos.HoldingPeriodDays)
	}
	if !pos.IsLongTerm {
		t.Error("position held over a year should be long-term")
	}
	assertAmountEquals(t, result.TotalRealizedGain, 500, "total realized gain")
	assertAmountEquals(t, result.TotalRealizedGainLongTerm, 500, "long-term total")
	assertAmountEquals(t, result.TotalRealizedGainShortTerm, 0, "short-term total")
}

func TestAggregateHoldings_SymbolReopensAfterClose(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, "AAPL", 10, 100, "2023-01-01"),
		sellTx(2, "AAPL", 10, 120, "2023-03-01"),
		buyTx(3, "AAPL", 5, 130, "2023-06-01"),
		sellTx(4, "AAPL", 5, 140, "2023-09-01"),
	})

	if len(result.ClosedPositions) != 2 {
		t.Fatalf("expected 2 closed positions, got %d", len(result.ClosedPositions))
	}
	first, second := result.ClosedPositions[0], result.ClosedPositions[1]
	if first.FirstBuyDate != "2023-01-01" || second.FirstBuyDate != "2023-06-01" {
		t.Errorf("cycles should be independent: %q / %q", first.FirstBuyDate, second.FirstBuyDate)
	}
	assertAmountEquals(t, first.RealizedGain, 200, "first cycle gain")
	assertAmountEquals(t, second.RealizedGain, 50, "second cycle gain")
	assertAmountEquals(t, result.TotalRealizedGain, 250, "total across cycles")
}

func TestAggregateHoldings_SortsInputByDate(t *testing.T) {
	// Sell arrives before its buy in slice order; date sorting must fix it.
	result := AggregateHoldings([]Transaction{
		sellTx(2, "AAPL", 10, 120, "2024-02-01"),
		buyTx(1, "AAPL", 10, 100, "2024-01-01"),
	})
	if len(result.ClosedPositions) != 1 {
		t.Fatalf("expected 1 closed position, got %d", len(result.ClosedPositions))
	}
	assertAmountEquals(t, result.ClosedPositions[0].RealizedGain, 200, "gain after reorder")
}

func TestAggregateHoldings_SymbolNormalization(t *testing.T) {
	result := AggregateHoldings([]Transaction{
		buyTx(1, " aapl ", 10, 100, "2024-01-02"),
		buyTx(2, "AAPL", 10, 100, "2024-01-03"),
	})
	if len(result.OpenHoldings) != 1 {
		t.Fatalf("expected normalized symbols to merge, got %v", result.OpenHoldings)
	}
	assertAmountEquals(t, result.OpenHoldings["AAPL"].Quantity, 20, "merged quantity")
}

func TestPortfolioValue_PriceFallback(t *testing.T) {
	holdings := map[string]Holding{
		"AAPL": {Symbol: "AAPL", Quantity: NewAmount(10), CostBasis: NewAmount(1000), AvgCost: NewAmount(100)},
		"MSFT": {Symbol: "MSFT", Quantity: NewAmount(5), CostBasis: NewAmount(2000), AvgCost: NewAmount(400)},
	}
	prices := map[string]Amount{"AAPL": NewAmount(150)}

	values := PortfolioValue(holdings, prices)
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(values))
	}

	aapl := values[0]
	if aapl.Symbol != "AAPL" {
		t.Fatalf("expected sorted output, got %s first", aapl.Symbol)
	}
	assertAmountEquals(t, aapl.MarketValue, 1500, "priced market value")
	if aapl.UnrealizedGain == nil {
		t.Fatal("expected unrealized gain with a price")
	}
	assertAmountEquals(t, *aapl.UnrealizedGain, 500, "unrealized gain")
	assertAmountEquals(t, *aapl.UnrealizedGainPercent, 50, "unrealized percent")

	msft := values[1]
	if msft.LatestPrice != nil || msft.UnrealizedGain != nil {
		t.Error("no price should mean no unrealized figures")
	}
	assertAmountEquals(t, msft.MarketValue, 2000, "fallback market value equals cost")
}
