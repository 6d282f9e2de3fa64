package domain

import "time"

// Item is a clue or secret offered to players on a given game day.
type Item struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
	// Day is the availability key: the first game day the item may be answered.
	Day     int `json:"day"`
	Ordinal int `json:"ordinal,omitempty"` // 1 or 2 within a day, 0 when unset
	// FirstFinder is the normalized identity of the first correct guesser, empty while unclaimed.
	FirstFinder string    `json:"firstFinder,omitempty"`
	Active      bool      `json:"active"`
	Hints       []Hint    `json:"hints,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Claimed reports whether a first finder has been recorded.
func (i Item) Claimed() bool {
	return i.FirstFinder != ""
}

// PublicItem is the player-facing view of an item; the answer never leaves the server.
type PublicItem struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Day     int      `json:"day"`
	Ordinal int      `json:"ordinal,omitempty"`
	Claimed bool     `json:"claimed"`
	Hints   []string `json:"hints,omitempty"`
}

// Public strips the answer and the finder identity.
func (i Item) Public() PublicItem {
	hints := make([]string, 0, len(i.Hints))
	for _, h := range i.Hints {
		hints = append(hints, h.Text)
	}
	return PublicItem{
		ID:      i.ID,
		Prompt:  i.Prompt,
		Day:     i.Day,
		Ordinal: i.Ordinal,
		Claimed: i.Claimed(),
		Hints:   hints,
	}
}

// Hint is a sub-clue attached to an item.
type Hint struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission is one player's one guess against one item.
type Submission struct {
	ID string `json:"id"`
	// Player is the normalized identity; DisplayName keeps the name as typed.
	Player        string    `json:"player"`
	DisplayName   string    `json:"displayName"`
	ItemID        string    `json:"itemId"`
	Day           int       `json:"day"`
	Guess         string    `json:"guess"`
	IsCorrect     bool      `json:"isCorrect"`
	IsFirstFinder bool      `json:"isFirstFinder"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Player is the stored row behind a display name.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DailyAssignment lists the items that are live on a game day.
type DailyAssignment struct {
	Day     int      `json:"day"`
	ItemIDs []string `json:"itemIds"`
}

// ItemPatch carries the editable fields of an item; nil fields are left unchanged.
type ItemPatch struct {
	Prompt  *string `json:"prompt,omitempty"`
	Answer  *string `json:"answer,omitempty"`
	Day     *int    `json:"day,omitempty"`
	Ordinal *int    `json:"ordinal,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// Apply returns a copy of item with the patch applied.
func (p ItemPatch) Apply(item Item) Item {
	if p.Prompt != nil {
		item.Prompt = *p.Prompt
	}
	if p.Answer != nil {
		item.Answer = *p.Answer
	}
	if p.Day != nil {
		item.Day = *p.Day
	}
	if p.Ordinal != nil {
		item.Ordinal = *p.Ordinal
	}
	if p.Active != nil {
		item.Active = *p.Active
	}
	return item
}

// LeaderboardEntry is one row of the scoreboard.
type LeaderboardEntry struct {
	Player      string `json:"player"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Correct     int    `json:"correct"`
}

// Stats summarizes the game for the admin dashboard.
type Stats struct {
	TotalPlayers     int                `json:"totalPlayers"`
	TotalSubmissions int                `json:"totalSubmissions"`
	ItemsFound       int                `json:"itemsFound"`
	TotalItems       int                `json:"totalItems"`
	Day              int                `json:"day"`
	CompletedPlayers []string           `json:"completedPlayers"`
	PartialPlayers   []string           `json:"partialPlayers"`
	DaySubmissions   []Submission       `json:"daySubmissions"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}
