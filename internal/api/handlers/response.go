package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/Harshitk-cp/agentlink/internal/service"
)

type dataResponse struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataResponse{Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDirectoryError maps a directory failure onto a gateway status.
func writeDirectoryError(w http.ResponseWriter, err error) {
	status, msg := directoryErrorStatus(err)
	writeJSON(w, status, map[string]string{
		"error": msg,
		"kind":  domain.Kind(err),
	})
}

func directoryErrorStatus(err error) (int, string) {
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, "directory rejected the api key"
	case errors.Is(err, service.ErrBrowserNotConfigured):
		return http.StatusNotImplemented, err.Error()
	case errors.As(err, &te):
		switch {
		case te.Timeout:
			return http.StatusGatewayTimeout, "directory request timed out"
		case te.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, "agent not found"
		default:
			return http.StatusBadGateway, "directory request failed"
		}
	case errors.Is(err, domain.ErrProtocol):
		return http.StatusBadGateway, "directory returned an unexpected response"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
