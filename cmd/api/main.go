// Command api exposes the valuation engine over stdlib net/http, with
// bracket-tagged logging and manual CORS handling.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"valuationengine/internal/cache"
	"valuationengine/internal/config"
	"valuationengine/pkg/aggregator"
	"valuationengine/pkg/engine"
	"valuationengine/pkg/models"
	"valuationengine/pkg/providers"
	"valuationengine/pkg/wacc"
)

func ctxWithDeadline(r *http.Request, deadline time.Duration) (context.Context, context.CancelFunc) {
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	return context.WithTimeout(r.Context(), deadline)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] config load failed: %v", err)
	}

	treasury := providers.NewTreasury()
	treasuryCache := cache.New(cfg.RedisAddr, treasury.Rate)

	agg := aggregator.New(
		providers.NewYahoo(),
		providers.NewFMP(cfg.FMPAPIKey),
		providers.NewAlphaVantage(cfg.AlphaVantageAPIKey),
	).WithTimeout(cfg.AdapterTimeout).WithMaxConcurrent(cfg.AdapterFanout)

	waccEngine := wacc.New(treasuryCache, true, 10)
	eng := engine.New(agg, waccEngine, 5).WithAggregatorDeadline(cfg.AggregatorDeadline)

	h := &valuationHandler{engine: eng, requestDeadline: cfg.RequestDeadline}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/value_equity", h.valueEquity)
	mux.HandleFunc("/api/compute_wacc", h.computeWACC)
	mux.HandleFunc("/healthz", h.health)

	addr := ":8080"
	fmt.Printf("[API] listening on %s\n", addr)
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil {
		log.Fatalf("[API] server exited: %v", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type valuationHandler struct {
	engine          *engine.Engine
	requestDeadline time.Duration
}

type valueEquityRequest struct {
	Ticker       string `json:"ticker"`
	HorizonYears int    `json:"horizon_years"`
}

func (h *valuationHandler) valueEquity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req valueEquityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fmt.Printf("[VALUATION] bad request body: %v\n", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := ctxWithDeadline(r, h.requestDeadline)
	defer cancel()

	fmt.Printf("[VALUATION] value_equity ticker=%s\n", req.Ticker)
	result, err := h.engine.ValueEquity(ctx, engine.Request{Ticker: req.Ticker})
	if err != nil {
		fmt.Printf("[VALUATION] value_equity failed for %s: %v\n", req.Ticker, err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Scenario != nil {
		json.NewEncoder(w).Encode(result.Scenario)
		return
	}
	json.NewEncoder(w).Encode(result.Single)
}

type computeWACCRequest struct {
	Ticker string `json:"ticker"`
}

func (h *valuationHandler) computeWACC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req computeWACCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := ctxWithDeadline(r, h.requestDeadline)
	defer cancel()

	fmt.Printf("[VALUATION] compute_wacc ticker=%s\n", req.Ticker)
	result, err := h.engine.ComputeWACCForTicker(ctx, req.Ticker, models.DefaultOverrides())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *valuationHandler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
