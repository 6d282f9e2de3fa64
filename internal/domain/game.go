package domain

import (
	"fmt"
	"time"
)

// ScoringMode selects how leaderboard points are computed for a deployment.
type ScoringMode string

const (
	// ScoringFixedPoints awards a fixed value per correct submission.
	ScoringFixedPoints ScoringMode = "fixed_points"
	// ScoringFirstFinder awards one point per item the player found first.
	ScoringFirstFinder ScoringMode = "first_finder"
)

// ParseScoringMode validates a configured mode; empty means fixed points.
func ParseScoringMode(raw string) (ScoringMode, error) {
	switch ScoringMode(raw) {
	case "", ScoringFixedPoints:
		return ScoringFixedPoints, nil
	case ScoringFirstFinder:
		return ScoringFirstFinder, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", raw)
	}
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// GameCalendar maps calendar dates onto 1-based game days.
type GameCalendar struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// NewGameCalendar parses start and end dates in DateLayout.
func NewGameCalendar(start, end string) (GameCalendar, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return GameCalendar{}, fmt.Errorf("start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return GameCalendar{}, fmt.Errorf("end date: %w", err)
	}
	if e.Before(s) {
		return GameCalendar{}, fmt.Errorf("end date %s before start date %s", end, start)
	}
	return GameCalendar{StartDate: s, EndDate: e}, nil
}

// TotalDays is the number of game days, at least 1.
func (c GameCalendar) TotalDays() int {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return 1
	}
	return daysBetween(c.StartDate, c.EndDate) + 1
}

// DayFor returns the game day containing t, clamped to the calendar range.
func (c GameCalendar) DayFor(t time.Time) int {
	if c.StartDate.IsZero() {
		return 1
	}
	day := daysBetween(c.StartDate, t) + 1
	if day < 1 {
		return 1
	}
	if total := c.TotalDays(); day > total {
		return total
	}
	return day
}

// DateOf returns the calendar date of a game day.
func (c GameCalendar) DateOf(day int) time.Time {
	return c.StartDate.AddDate(0, 0, day-1)
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
