package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and HTTP status
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for the API and as HTML otherwise

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/OrderSheet/internal/core"
	"github.com/JonMunkholm/OrderSheet/internal/logging"
	"github.com/JonMunkholm/OrderSheet/internal/web/views"
)

var errRateLimited = core.MapError(errors.New("rate limit exceeded"))

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a mapped error.
func statusFor(msg core.UserMessage) int {
	switch {
	case msg.Code == "FILE001":
		return http.StatusRequestEntityTooLarge
	case strings.HasPrefix(msg.Code, "FILE"):
		return http.StatusBadRequest
	case msg.Code == "SCH001", msg.Code == "COL001", msg.Code == "VAL001":
		return http.StatusUnprocessableEntity
	case msg.Code == "BLD001":
		return http.StatusRequestTimeout
	case msg.Code == "BLD003":
		return http.StatusGatewayTimeout
	case msg.Code == "BLD002", msg.Code == "BLD004", strings.HasPrefix(msg.Code, "DB"):
		return http.StatusServiceUnavailable
	case msg.Code == "RATE001":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and answers with the user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(userMsg)

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request error", "path", r.URL.Path, "method", r.Method, "status", status, "error", err.Error(), "code", userMsg.Code)
	} else {
		log.Warn("request rejected", "path", r.URL.Path, "method", r.Method, "status", status, "error", err.Error(), "code", userMsg.Code)
	}

	if userMsg.Code == "BLD002" {
		w.Header().Set("Retry-After", "10")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		log.Error("render error alert", "error", err)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON reports whether the error goes out as JSON. Only clients that
// accept HTML without asking for JSON, such as the dashboard form, get the
// HTML alert.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return !strings.Contains(accept, "text/html")
}
