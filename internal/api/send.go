package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clawinfra/herald/internal/dispatch"
	"github.com/clawinfra/herald/internal/registry"
	"github.com/clawinfra/herald/internal/types"
)

// SendRequest is the body of POST /api/send.
type SendRequest struct {
	Kind string `json:"kind"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// handleSend dispatches one notification over an explicit channel kind
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "kind and body required")
		return
	}

	delivery, err := s.dispatcher.Dispatch(r.Context(), types.Kind(req.Kind), req.To, req.Body)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownKind) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		// Delivery failed; the journal decorator has already recorded it.
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":    err.Error(),
			"delivery": delivery,
		})
		return
	}

	writeJSON(w, http.StatusOK, delivery)
}

// RoutedRequest is the body of POST /api/send/routed.
type RoutedRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// handleSendRouted lets the time-of-day window chain pick the channel
func (s *Server) handleSendRouted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RoutedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body required")
		return
	}

	delivery, err := s.dispatcher.DispatchRouted(r.Context(), req.To, req.Body)
	if err != nil {
		if errors.Is(err, dispatch.ErrNoWindow) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":    err.Error(),
			"delivery": delivery,
		})
		return
	}

	writeJSON(w, http.StatusOK, delivery)
}

// BroadcastRequest is the body of POST /api/broadcast.
type BroadcastRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// handleBroadcast sends over every registered channel
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.facade == nil {
		writeError(w, http.StatusServiceUnavailable, "broadcast not enabled")
		return
	}

	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body required")
		return
	}

	deliveries, err := s.facade.SendAll(r.Context(), req.To, req.Body)
	resp := map[string]interface{}{
		"deliveries": deliveries,
		"count":      len(deliveries),
	}
	if err != nil {
		resp["error"] = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
