package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lotledger/internal/store"
	"lotledger/pkg/lotledger"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.TransactionFilter{
		Symbol:          query.Get("symbol"),
		TransactionType: query.Get("transaction_type"),
		StartDate:       query.Get("start_date"),
		EndDate:         query.Get("end_date"),
		Limit:           parseIntDefault(query.Get("limit"), 100),
		Offset:          parseIntDefault(query.Get("offset"), 0),
	}
	result, err := h.store.ListTransactions(filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if result == nil {
		result = []lotledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var payload store.AddTransactionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.store.AddTransaction(payload)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	tx, err := h.store.GetTransaction(id)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if tx == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var payload store.AddTransactionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.UpdateTransaction(id, payload); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	deleted, err := h.store.DeleteTransaction(id)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type holdingsResponse struct {
	Holdings                   []lotledger.HoldingValue `json:"holdings"`
	TotalRealizedGain          lotledger.Amount         `json:"total_realized_gain"`
	TotalRealizedGainLongTerm  lotledger.Amount         `json:"total_realized_gain_long_term"`
	TotalRealizedGainShortTerm lotledger.Amount         `json:"total_realized_gain_short_term"`
}

func (h *handler) getHoldings(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	prices, err := h.store.GetAllLatestPrices()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}

	result := lotledger.AggregateHoldings(transactions)
	writeJSON(w, http.StatusOK, holdingsResponse{
		Holdings:                   lotledger.PortfolioValue(result.OpenHoldings, prices),
		TotalRealizedGain:          result.TotalRealizedGain,
		TotalRealizedGainLongTerm:  result.TotalRealizedGainLongTerm,
		TotalRealizedGainShortTerm: result.TotalRealizedGainShortTerm,
	})
}

type closedPositionsResponse struct {
	ClosedPositions            []lotledger.ClosedPosition `json:"closed_positions"`
	TotalRealizedGain          lotledger.Amount           `json:"total_realized_gain"`
	TotalRealizedGainLongTerm  lotledger.Amount           `json:"total_realized_gain_long_term"`
	TotalRealizedGainShortTerm lotledger.Amount           `json:"total_realized_gain_short_term"`
}

func (h *handler) getClosedPositions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	result := lotledger.AggregateHoldings(transactions)
	writeJSON(w, http.StatusOK, closedPositionsResponse{
		ClosedPositions:            result.ClosedPositions,
		TotalRealizedGain:          result.TotalRealizedGain,
		TotalRealizedGainLongTerm:  result.TotalRealizedGainLongTerm,
		TotalRealizedGainShortTerm: result.TotalRealizedGainShortTerm,
	})
}

type lotsResponse struct {
	Symbol string             `json:"symbol"`
	Lots   []lotledger.TaxLot `json:"lots"`
}

func (h *handler) getLots(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}

	lots := lotledger.BuildLots(transactions)[symbol]
	if r.URL.Query().Get("include_depleted") != "1" {
		lots = lotledger.OpenLots(lots)
	}
	writeJSON(w, http.StatusOK, lotsResponse{Symbol: symbol, Lots: lots})
}

type sellPreviewPayload struct {
	Symbol   string           `json:"symbol"`
	Quantity lotledger.Amount `json:"quantity"`
	Price    lotledger.Amount `json:"price"`
	Date     string           `json:"date"`
	Method   string           `json:"method"`
	LotIDs   []int64          `json:"lot_ids"`
}

func (h *handler) sellPreview(w http.ResponseWriter, r *http.Request) {
	var payload sellPreviewPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(payload.Symbol))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	if !payload.Quantity.IsPositive() {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	method := lotledger.MethodFIFO
	if payload.Method != "" {
		method = lotledger.CostBasisMethod(strings.ToUpper(payload.Method))
	}
	date := payload.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	lots := lotledger.BuildLots(transactions)[symbol]

	preview, err := lotledger.PreviewSell(lots, payload.Quantity, payload.Price, date, method, payload.LotIDs)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *handler) getRealizedGains(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	report := lotledger.RealizedGains(transactions, query.Get("start_date"), query.Get("end_date"))
	writeJSON(w, http.StatusOK, report)
}

type washSaleCheckPayload struct {
	Symbol   string           `json:"symbol"`
	Quantity lotledger.Amount `json:"quantity"`
	Date     string           `json:"date"`
}

func (h *handler) washSaleCheck(w http.ResponseWriter, r *http.Request) {
	var payload washSaleCheckPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Symbol) == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	if !payload.Quantity.IsPositive() {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	date := payload.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	transactions, err := h.store.AllTransactions()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	result := lotledger.WouldTriggerWashSale(date, payload.Symbol, payload.Quantity, transactions)
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.store.GetAllLatestPrices()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

type pricePayload struct {
	Price lotledger.Amount `json:"price"`
}

func (h *handler) setPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	var payload pricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SetLatestPrice(symbol, payload.Price); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
