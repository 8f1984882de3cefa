// internal/api/respond.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tamzrod/charger-bridge/internal/exclusive"
	"github.com/tamzrod/charger-bridge/internal/model"
	"github.com/tamzrod/charger-bridge/internal/segment"
)

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrProtectedObject):
		return http.StatusForbidden
	case errors.Is(err, exclusive.ErrRetriesExhausted), segment.IsTransport(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes data as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode JSON response")
	}
}

// writeWithPresence writes an object payload with the presence fields merged
// into its top level.
func (s *Server) writeWithPresence(w http.ResponseWriter, data any) {
	obj, err := toObject(data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p := s.tracker.Presence()
	obj["charger_presence"] = p.ChargerPresence
	obj["channel_count"] = p.ChannelCount

	s.writeJSON(w, obj, http.StatusOK)
}

// writeError writes the mapped status with the error message and presence.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)

	entry := s.log.WithError(err).WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Warn("request failed")
	} else {
		entry.Debug("request rejected")
	}

	p := s.tracker.Presence()
	s.writeJSON(w, map[string]any{
		"message":          err.Error(),
		"charger_presence": p.ChargerPresence,
		"channel_count":    p.ChannelCount,
	}, code)
}

func toObject(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	obj := make(map[string]any)
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("api: payload is not an object: %w", err)
	}
	return obj, nil
}

// ---- request helpers ----

func intVar(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", model.ErrBadRequest, name, raw)
	}
	return n, nil
}

func slotVar(r *http.Request) (int, error) {
	slot, err := intVar(r, "slot")
	if err != nil {
		return 0, err
	}
	if slot < 0 || slot >= model.MaxPresets {
		return 0, fmt.Errorf("%w: memory slot must be 0..%d, got %d", model.ErrBadRequest, model.MaxPresets-1, slot)
	}
	return slot, nil
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body required", model.ErrBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", model.ErrBadRequest, err)
	}
	return nil
}
