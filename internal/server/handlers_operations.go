package server

import (
	"net/http"
	"strings"

	"github.com/wyli/fundwatch/internal/models"
)

// handleOperationList handles GET/POST /api/operations. GET accepts an
// optional ?fund= filter and ?pending=true.
func (s *Server) handleOperationList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.OperationStore()

	if r.Method == http.MethodPost {
		var op models.Operation
		if !DecodeJSON(w, r, &op) {
			return
		}
		if !op.Type.Valid() {
			WriteErrorWithCode(w, http.StatusBadRequest, "Unknown operation type", "invalid_type")
			return
		}
		if err := store.Add(ctx, &op); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, op)
		return
	}

	var (
		ops []models.Operation
		err error
	)
	switch {
	case r.URL.Query().Get("pending") == "true":
		ops, err = store.ListPending(ctx)
	case r.URL.Query().Get("fund") != "":
		ops, err = store.ListByFund(ctx, r.URL.Query().Get("fund"))
	default:
		ops, err = store.ListAll(ctx)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, ops)
}

// routeOperations dispatches /api/operations/{id} requests.
func (s *Server) routeOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/operations/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	store := s.app.Storage.OperationStore()

	switch r.Method {
	case http.MethodPut:
		var op models.Operation
		if !DecodeJSON(w, r, &op) {
			return
		}
		op.ID = id
		if !op.Type.Valid() {
			WriteErrorWithCode(w, http.StatusBadRequest, "Unknown operation type", "invalid_type")
			return
		}
		if err := store.Update(ctx, &op); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, op)

	case http.MethodDelete:
		if err := store.Delete(ctx, id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		op, err := store.Get(ctx, id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if op == nil {
			WriteError(w, http.StatusNotFound, "Operation not found")
			return
		}
		WriteJSON(w, http.StatusOK, op)
	}
}

// handleOperationConfirm handles POST /api/operations/confirm: sweeps all
// pending operations whose NAV has published.
func (s *Server) handleOperationConfirm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	confirmed, err := s.app.FundService.ConfirmPending(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if confirmed == nil {
		confirmed = []models.Operation{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"confirmed": confirmed,
		"count":     len(confirmed),
	})
}

// handleOperationExport handles GET /api/operations/export.
func (s *Server) handleOperationExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	export, err := s.app.Storage.OperationStore().Export(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, export)
}

// handleOperationImport handles POST /api/operations/import. The ?merge=true
// query keeps existing records; the default replaces the ledger.
func (s *Server) handleOperationImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var data models.LedgerExport
	if !DecodeJSON(w, r, &data) {
		return
	}

	merge := r.URL.Query().Get("merge") == "true"
	count, err := s.app.Storage.OperationStore().Import(r.Context(), &data, merge)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"imported": count,
		"merge":    merge,
	})
}
