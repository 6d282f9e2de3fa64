package http

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"daily-guess-service/internal/domain"
)

// parseDay accepts a game day number or a calendar date. Dates outside the
// calendar, or any date when no calendar is set, are invalid input.
func parseDay(raw string, cal domain.GameCalendar) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.Reject(domain.ErrInvalidInput)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil || cal.StartDate.IsZero() {
		return 0, domain.Reject(domain.ErrInvalidInput)
	}
	if date.Before(cal.StartDate) || date.After(cal.EndDate) {
		return 0, domain.Reject(domain.ErrInvalidInput)
	}
	return cal.DayFor(date), nil
}

// parseDayJSON handles the day field of a request body, which clients send
// either as a number or as a string. An absent field yields day 0.
func parseDayJSON(raw json.RawMessage, cal domain.GameCalendar) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, domain.Reject(domain.ErrInvalidInput)
		}
		return parseDay(s, cal)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) {
		return 0, domain.Reject(domain.ErrInvalidInput)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, domain.Reject(domain.ErrInvalidInput)
	}
	return int(f), nil
}
