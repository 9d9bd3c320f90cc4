package server

import (
	"net/http"
	"strings"

	"github.com/wyli/fundwatch/internal/models"
)

// routeFunds dispatches /api/funds/{code}[/...] requests.
func (s *Server) routeFunds(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/funds/")
	parts := strings.SplitN(rest, "/", 2)
	code := parts[0]
	if code == "" {
		WriteError(w, http.StatusNotFound, "Fund code required")
		return
	}

	subpath := ""
	if len(parts) == 2 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleFund(w, r, code)
	case "report":
		s.handleFundReport(w, r, code)
	case "holding":
		s.handleFundHolding(w, r, code)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleFundList handles GET/POST /api/funds.
func (s *Server) handleFundList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodPost {
		var fund models.Fund
		if !DecodeJSON(w, r, &fund) {
			return
		}
		if fund.Code == "" {
			WriteError(w, http.StatusBadRequest, "Fund code is required")
			return
		}
		if err := s.app.Storage.FundStore().Save(ctx, &fund); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, fund)
		return
	}

	funds, err := s.app.Storage.FundStore().List(ctx)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, funds)
}

// handleFund handles GET/DELETE /api/funds/{code}.
func (s *Server) handleFund(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		if err := s.app.Storage.FundStore().Delete(ctx, code); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": code})
		return
	}

	fund, err := s.app.Storage.FundStore().Get(ctx, code)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if fund == nil {
		WriteError(w, http.StatusNotFound, "Fund not found")
		return
	}
	WriteJSON(w, http.StatusOK, fund)
}

// handleFundReport handles GET /api/funds/{code}/report.
func (s *Server) handleFundReport(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := QueryInt(r, "days", 0)
	report, err := s.app.FundService.GetFundReport(r.Context(), code, days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleFundHolding handles GET/PUT/DELETE /api/funds/{code}/holding.
func (s *Server) handleFundHolding(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.HoldingStore()

	switch r.Method {
	case http.MethodPut:
		var holding models.Holding
		if !DecodeJSON(w, r, &holding) {
			return
		}
		holding.FundCode = code
		if err := store.Save(ctx, &holding); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, holding)

	case http.MethodDelete:
		if err := store.Delete(ctx, code); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": code})

	default:
		holding, err := store.Get(ctx, code)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if holding == nil {
			WriteError(w, http.StatusNotFound, "No holding for fund")
			return
		}
		WriteJSON(w, http.StatusOK, holding)
	}
}
