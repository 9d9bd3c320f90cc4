package server

import (
	"net/http"
	"time"

	"github.com/wyli/fundwatch/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Funds
	mux.HandleFunc("/api/funds/", s.routeFunds)
	mux.HandleFunc("/api/funds", s.handleFundList)

	// Operations
	mux.HandleFunc("/api/operations/confirm", s.handleOperationConfirm)
	mux.HandleFunc("/api/operations/export", s.handleOperationExport)
	mux.HandleFunc("/api/operations/import", s.handleOperationImport)
	mux.HandleFunc("/api/operations/", s.routeOperations)
	mux.HandleFunc("/api/operations", s.handleOperationList)

	// Reports and market context
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/report/markdown", s.handleReportMarkdown)
	mux.HandleFunc("/api/report/review", s.handleReportReview)
	mux.HandleFunc("/api/market/environment", s.handleMarketEnvironment)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"funds":             s.app.Config.Funds,
		"storage_data_path": s.app.Config.Storage.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"fundapi_url":       s.app.Config.Clients.FundAPI.BaseURL,
		"benchmark":         s.app.Config.Clients.FundAPI.Benchmark,
		"gemini_configured": s.app.AIClient != nil,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
