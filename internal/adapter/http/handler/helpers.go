package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.Failure(message))
}

// writeDomainError maps err to a status and message. Server-side failures
// are logged with their cause and answered with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, message)
}

var domainErrors = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrInvalidAmount, http.StatusBadRequest, ""},
	{domain.ErrUserExists, http.StatusBadRequest, ""},
	{domain.ErrInvalidUsername, http.StatusBadRequest, ""},
	{domain.ErrInvalidPassword, http.StatusBadRequest, ""},
	{domain.ErrAlreadyHasActiveAccount, http.StatusBadRequest, ""},
	{domain.ErrInsufficientFunds, http.StatusBadRequest, ""},
	{domain.ErrRecipientInactive, http.StatusBadRequest, ""},
	{domain.ErrSameAccount, http.StatusBadRequest, ""},
	{domain.ErrNonZeroBalance, http.StatusBadRequest, "Cannot close account with remaining balance. Please withdraw all funds first."},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "No active account found"},
	{domain.ErrRecipientNotFound, http.StatusNotFound, "Recipient account not found"},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "Storage unavailable, try again later"},
}

// mapDomainError maps domain errors to HTTP status codes and client messages.
// Client errors without a fixed message carry the error text, which may
// include validation detail.
func mapDomainError(err error) (int, string) {
	for _, e := range domainErrors {
		if errors.Is(err, e.err) {
			if e.message != "" {
				return e.status, e.message
			}
			return e.status, capitalize(err.Error())
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// currentUser returns the username set by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
	}
	return username, ok
}
