package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
)

// AdminHandler serves the admin endpoints. Every request carries the admin code.
type AdminHandler struct {
	admin   *app.AdminService
	guesses *app.GuessService
	logger  *slog.Logger
}

func NewAdminHandler(admin *app.AdminService, guesses *app.GuessService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, guesses: guesses, logger: logger}
}

type verifyRequest struct {
	Code string `json:"code"`
}

type adminRequest struct {
	Action    string   `json:"action"`
	AdminCode string   `json:"adminCode"`
	ID        string   `json:"id"`
	ItemID    string   `json:"itemId"`
	Prompt    *string  `json:"prompt"`
	Answer    *string  `json:"answer"`
	Day       *int     `json:"day"`
	Ordinal   *int     `json:"ordinal"`
	Active    *bool    `json:"active"`
	Text      string   `json:"text"`
	ItemIDs   []string `json:"itemIds"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
}

type statsRequest struct {
	AdminCode string          `json:"adminCode"`
	Day       json.RawMessage `json:"day"`
}

type calendarView struct {
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	TotalDays  int    `json:"totalDays"`
	CurrentDay int    `json:"currentDay"`
}

// Verify checks an admin code.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	valid, err := h.admin.Verify(req.Code)
	if errors.Is(err, domain.ErrAdminDisabled) {
		h.logger.Error("admin code not configured")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"valid":   false,
			"error":   domain.MessageFor(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "valid": valid})
}

// Items dispatches item, hint, schedule and calendar actions.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ctx := r.Context()
	code := req.AdminCode

	var (
		items       []domain.Item
		assignments []domain.DailyAssignment
		cal         *domain.GameCalendar
		err         error
	)
	switch req.Action {
	case "list":
		items, err = h.admin.ListItems(ctx, code)
	case "add":
		in := app.NewItem{}
		if req.Prompt != nil {
			in.Prompt = *req.Prompt
		}
		if req.Answer != nil {
			in.Answer = *req.Answer
		}
		if req.Day != nil {
			in.Day = *req.Day
		}
		if req.Ordinal != nil {
			in.Ordinal = *req.Ordinal
		}
		items, err = h.admin.AddItem(ctx, code, in)
	case "update":
		items, err = h.admin.UpdateItem(ctx, code, req.ID, domain.ItemPatch{
			Prompt:  req.Prompt,
			Answer:  req.Answer,
			Day:     req.Day,
			Ordinal: req.Ordinal,
			Active:  req.Active,
		})
	case "delete":
		items, err = h.admin.DeleteItem(ctx, code, req.ID)
	case "addHint":
		items, err = h.admin.AddHint(ctx, code, req.ItemID, req.Text)
	case "updateHint":
		items, err = h.admin.UpdateHint(ctx, code, req.ID, req.Text)
	case "deleteHint":
		items, err = h.admin.DeleteHint(ctx, code, req.ID)
	case "setDailyItems":
		day := 0
		if req.Day != nil {
			day = *req.Day
		}
		assignments, err = h.admin.SetDailyItems(ctx, code, day, req.ItemIDs)
	case "listDailyItems":
		assignments, err = h.admin.ListDailyAssignments(ctx, code)
	case "getGameConfig":
		var c domain.GameCalendar
		c, err = h.admin.GameConfig(ctx, code)
		cal = &c
	case "updateGameConfig":
		var c domain.GameCalendar
		c, err = h.admin.UpdateGameConfig(ctx, code, req.StartDate, req.EndDate)
		cal = &c
	default:
		if err = h.admin.Authorize(code); err == nil {
			err = domain.Reject(domain.ErrUnknownAction)
		}
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := map[string]any{"success": true}
	switch {
	case cal != nil:
		resp["config"] = h.calendarView(r, *cal)
	case assignments != nil:
		resp["dailyItems"] = assignments
	default:
		resp["items"] = items
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats returns the dashboard for a day; no day means the current one.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
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
	stats, err := h.admin.Stats(r.Context(), req.AdminCode, day)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (h *AdminHandler) calendarView(r *http.Request, cal domain.GameCalendar) calendarView {
	view := calendarView{TotalDays: cal.TotalDays(), CurrentDay: 1}
	if cal.StartDate.IsZero() {
		return view
	}
	view.StartDate = cal.StartDate.Format(domain.DateLayout)
	view.EndDate = cal.EndDate.Format(domain.DateLayout)
	if day, err := h.guesses.CurrentDay(r.Context()); err == nil {
		view.CurrentDay = day
	}
	return view
}
