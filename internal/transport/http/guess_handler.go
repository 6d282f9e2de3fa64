package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
	"github.com/gorilla/mux"
)

// GuessHandler serves the player-facing endpoints.
type GuessHandler struct {
	guesses *app.GuessService
	logger  *slog.Logger
}

func NewGuessHandler(guesses *app.GuessService, logger *slog.Logger) *GuessHandler {
	return &GuessHandler{guesses: guesses, logger: logger}
}

type guessRequest struct {
	PlayerName string          `json:"playerName"`
	ItemID     string          `json:"itemId"`
	GuessText  string          `json:"guessText"`
	Day        json.RawMessage `json:"day"`
}

type guessResponse struct {
	Success       bool   `json:"success"`
	SubmissionID  string `json:"submissionId"`
	IsCorrect     bool   `json:"isCorrect"`
	IsFirstFinder *bool  `json:"isFirstFinder,omitempty"`
}

type dayItemsResponse struct {
	Day       int                 `json:"day"`
	Date      string              `json:"date,omitempty"`
	TotalDays int                 `json:"totalDays"`
	Items     []domain.PublicItem `json:"items"`
}

// Submit is the submission gateway.
func (h *GuessHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	cal, err := h.guesses.Calendar(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	day, err := parseDayJSON(req.Day, cal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	outcome, err := h.guesses.Submit(r.Context(), app.GuessRequest{
		PlayerName: req.PlayerName,
		ItemID:     req.ItemID,
		Guess:      req.GuessText,
		Day:        day,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := guessResponse{Success: true, SubmissionID: outcome.SubmissionID, IsCorrect: outcome.IsCorrect}
	if outcome.Mode == domain.ScoringFirstFinder {
		first := outcome.IsFirstFinder
		resp.IsFirstFinder = &first
	}
	writeJSON(w, http.StatusOK, resp)
}

// DayItems lists the items of the day in the path.
func (h *GuessHandler) DayItems(w http.ResponseWriter, r *http.Request) {
	cal, err := h.guesses.Calendar(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	day, err := parseDay(mux.Vars(r)["day"], cal)
	if err != nil || day < 1 {
		writeError(w, h.logger, domain.Reject(domain.ErrInvalidInput))
		return
	}
	h.writeDay(w, r, cal, day)
}

// Today lists the items of the current game day.
func (h *GuessHandler) Today(w http.ResponseWriter, r *http.Request) {
	cal, err := h.guesses.Calendar(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	day, err := h.guesses.CurrentDay(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeDay(w, r, cal, day)
}

func (h *GuessHandler) writeDay(w http.ResponseWriter, r *http.Request, cal domain.GameCalendar, day int) {
	items, err := h.guesses.DayItems(r.Context(), day)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := dayItemsResponse{Day: day, TotalDays: cal.TotalDays(), Items: items}
	if !cal.StartDate.IsZero() {
		resp.Date = cal.DateOf(day).Format(domain.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlayerDay reports one player's progress on a day.
func (h *GuessHandler) PlayerDay(w http.ResponseWriter, r *http.Request) {
	cal, err := h.guesses.Calendar(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	vars := mux.Vars(r)
	day, err := parseDay(vars["day"], cal)
	if err != nil || day < 1 {
		writeError(w, h.logger, domain.Reject(domain.ErrInvalidInput))
		return
	}
	progress, err := h.guesses.PlayerDay(r.Context(), vars["name"], day)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Leaderboard returns the current ranking.
func (h *GuessHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.guesses.Leaderboard(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
