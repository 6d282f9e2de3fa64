package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"daily-guess-service/internal/domain"
)

const genericMessage = "Une erreur est survenue"

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// statusFor maps an error onto the HTTP status the client sees. Business-rule
// rejections are a normal outcome and answer 200 with success:false.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrAdminDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrHintNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest
	// Game and capacity rules are answered as 200 with success:false.
	case errors.Is(err, domain.ErrDuplicateSubmission),
		errors.Is(err, domain.ErrDailyLimitReached),
		errors.Is(err, domain.ErrNotYetAvailable),
		errors.Is(err, domain.ErrCapacityReached),
		errors.Is(err, domain.ErrTooManyItemsForDay):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := genericMessage
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		msg = domain.MessageFor(err)
	}
	writeJSON(w, status, failure{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.Reject(domain.ErrInvalidInput)
	}
	return nil
}
