package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kjannette/pricetrack/internal/external"
	"github.com/kjannette/pricetrack/internal/validation"
)

type statusData struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.RecordCurrentPrice(r.Context(), r.PathValue("symbol"))
	switch {
	case errors.Is(err, validation.ErrInvalidCurrency):
		writeError(w, http.StatusBadRequest, "invalid currency")
		return
	case errors.Is(err, external.ErrSymbolNotFound):
		writeError(w, http.StatusBadRequest, "currency not found")
		return
	case errors.Is(err, external.ErrBidUnavailable):
		fmt.Printf("Error fetching bid: %v\n", err)
		s.writeServerError(w, http.StatusBadGateway, "exchange unavailable", err)
		return
	case err != nil:
		fmt.Printf("Error recording price: %v\n", err)
		s.writeServerError(w, http.StatusInternalServerError, "failed to record price", err)
		return
	}

	writeJSON(w, http.StatusOK, statusData{Status: "ok", Data: rec.View()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.GetHistory(r.Context(), parsePage(r))
	if err != nil {
		fmt.Printf("Error fetching history: %v\n", err)
		s.writeServerError(w, http.StatusInternalServerError, "failed to fetch history", err)
		return
	}
	writeJSON(w, http.StatusOK, statusData{Status: "ok", Data: page})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.svc.DeleteAll(r.Context())
	if err != nil {
		fmt.Printf("Error deleting history: %v\n", err)
		s.writeServerError(w, http.StatusInternalServerError, "failed to delete history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "deleted": deleted})
}
