package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/services/advisor"
	"github.com/bobmcallan/tally/internal/services/aggregator"
)

// --- Portfolio ---

// handlePortfolio handles GET /api/portfolio. The prices=skip query
// parameter skips live crypto price fetches.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts := interfaces.AggregateOptions{
		IncludeLivePrices: r.URL.Query().Get("prices") != "skip",
	}

	portfolio, err := s.app.Aggregator.Aggregate(r.Context(), opts)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoPortfolioData) {
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_data")
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Aggregation error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, portfolio)
}

// --- Analysis ---

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	goals, err := s.app.Analyzer.AnalyzeGoals(r.Context())
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, goals)
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	allocation, err := s.app.Analyzer.AnalyzeAllocation(r.Context())
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, allocation)
}

// handleMarket returns the market context. Provider failures are
// reported inside the payload, not as HTTP errors.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	market, err := s.app.Analyzer.MarketContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Market context error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, market)
}

// handleAdvice handles GET /api/advice?focus={goals|rebalance|surplus|opportunities}.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	bundle, err := s.app.Advisor.GenerateAdvice(r.Context())
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	if focus := r.URL.Query().Get("focus"); focus != "" {
		bundle = advisor.FilterByFocus(bundle, focus)
	}

	WriteJSON(w, http.StatusOK, bundle)
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, aggregator.ErrNoPortfolioData) {
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_data")
		return
	}
	WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
}

// --- Holdings ---

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		holdings, err := s.app.Storage.Holdings().GetHoldings()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading holdings: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, holdings)

	case http.MethodPut:
		var holdings models.HoldingsRecord
		if !DecodeJSON(w, r, &holdings) {
			return
		}
		if holdings.UpdatedAt == "" {
			holdings.UpdatedAt = time.Now().Format("2006-01-02")
		}
		if err := s.app.Storage.Holdings().SaveHoldings(&holdings); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving holdings: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, holdings)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// --- Profile ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.app.Storage.Profile().GetProfile()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading profile: %v", err))
			return
		}
		if profile == nil {
			WriteErrorWithCode(w, http.StatusNotFound, "Profile not set", "no_profile")
			return
		}
		WriteJSON(w, http.StatusOK, profile)

	case http.MethodPut:
		var profile models.Profile
		if !DecodeJSON(w, r, &profile) {
			return
		}
		if profile.UpdatedAt == "" {
			profile.UpdatedAt = time.Now().Format("2006-01-02")
		}
		if err := s.app.Storage.Profile().SaveProfile(&profile); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving profile: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, profile)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// --- Snapshots ---

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snapshots, err := s.app.Storage.Snapshots().ListSnapshots()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing snapshots: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"snapshots": snapshots,
			"count":     len(snapshots),
		})

	case http.MethodPost:
		var snapshot models.AccountSnapshot
		if !DecodeJSON(w, r, &snapshot) {
			return
		}
		if snapshot.ImportedAt == "" {
			snapshot.ImportedAt = time.Now().Format(time.RFC3339)
		}
		if err := s.app.Storage.Snapshots().SaveSnapshot(&snapshot); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving snapshot: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, snapshot)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
