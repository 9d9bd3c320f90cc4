package server

import (
	"net/http"
	"strings"
)

// reportFundCodes parses the optional ?funds=a,b,c filter.
func reportFundCodes(r *http.Request) []string {
	raw := r.URL.Query().Get("funds")
	if raw == "" {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// handleReport handles GET /api/report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := QueryInt(r, "days", 0)
	report, err := s.app.ReportService.BuildReport(r.Context(), reportFundCodes(r), days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleReportMarkdown handles GET /api/report/markdown.
func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := QueryInt(r, "days", 0)
	report, err := s.app.ReportService.BuildReport(r.Context(), reportFundCodes(r), days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.app.ReportService.RenderMarkdown(report)))
}

// handleReportReview handles POST /api/report/review: builds a report and
// attaches an AI review.
func (s *Server) handleReportReview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.AIClient == nil {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "AI review not configured", "ai_unconfigured")
		return
	}

	days := QueryInt(r, "days", 0)
	report, err := s.app.ReportService.BuildReport(r.Context(), reportFundCodes(r), days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.app.ReportService.GenerateReview(r.Context(), report); err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleMarketEnvironment handles GET /api/market/environment.
func (s *Server) handleMarketEnvironment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	env, err := s.app.MarketService.GetEnvironment(r.Context(), r.URL.Query().Get("index"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, env)
}
