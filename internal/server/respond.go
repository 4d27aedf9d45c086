package server

import (
	"encoding/json"
	"net/http"
)

const (
	headerRequestID       = "X-Request-Id"
	headerTranscriptionID = "X-Transcription-Id"
	headerUsageRemaining  = "X-Usage-Remaining-Minutes"
)

// error types reported in the JSON error body
const (
	errTypeInvalidRequest = "invalid_request_error"
	errTypeNotFound       = "not_found_error"
	errTypeTooLarge       = "request_too_large"
	errTypeUsageLimit     = "usage_limit_exceeded"
	errTypeTranscription  = "transcription_error"
	errTypeUnavailable    = "service_unavailable"
	errTypeUpstream       = "upstream_error"
	errTypeServer         = "server_error"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Errorw("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Message: message, Type: errType}})
}
