package pkg

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// APIResponse, tüm API yanıtları için standart zarf.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Success: true, Data: data})
}

// Error, domain error'ı uygun HTTP status code ile yanıtlar.
// 500 yanıtlarında iç hata mesajı client'a sızdırılmaz, log'a yazılır.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("internal error", "component", "http", "error", err)
		msg = ErrInternal.Error()
	}

	write(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{Success: false, Error: message})
}

// ErrorWithData, hata mesajına ek veri iliştirir (ör: ban bitiş tarihi).
func ErrorWithData(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, APIResponse{Success: false, Error: message, Data: data})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("failed to encode response", "component", "http", "error", err)
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is wrap edilmiş error'ları da yakalar.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
