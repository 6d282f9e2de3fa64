package app

import (
	"strings"
	"unicode/utf8"

	"daily-guess-service/internal/domain"
	"daily-guess-service/internal/normalize"
)

// MinPlayerNameLength is the shortest accepted display name, in runes after trimming.
const MinPlayerNameLength = 2

// GuessRequest is a player's guess as received from the client.
type GuessRequest struct {
	PlayerName string
	ItemID     string
	Guess      string
	Day        int
}

// Rules are the deployment settings the validator depends on.
type Rules struct {
	Mode       domain.ScoringMode
	DailyLimit int
}

// Decision is the outcome of validating a guess.
type Decision struct {
	// Rejection is nil when the guess is accepted.
	Rejection *domain.Rejection
	IsCorrect bool
	// ClaimFirstFinder asks the caller to stamp the item with this player,
	// conditional on the item still being unclaimed.
	ClaimFirstFinder bool
}

// Accepted reports whether the guess may be recorded.
func (d Decision) Accepted() bool {
	return d.Rejection == nil
}

func reject(err error) Decision {
	return Decision{Rejection: domain.Reject(err)}
}

// CheckShape rejects requests with missing fields or a too-short player name.
func CheckShape(req GuessRequest) *domain.Rejection {
	if utf8.RuneCountInString(strings.TrimSpace(req.PlayerName)) < MinPlayerNameLength {
		return domain.RejectWith(domain.ErrInvalidInput, "Nom du joueur invalide (minimum 2 caractères)")
	}
	if strings.TrimSpace(req.ItemID) == "" || strings.TrimSpace(req.Guess) == "" || req.Day < 1 {
		return domain.Reject(domain.ErrInvalidInput)
	}
	return nil
}

// Validate decides whether a guess is accepted. item is nil when the id did not
// resolve; prior holds every earlier submission of the same player identity.
func Validate(req GuessRequest, item *domain.Item, prior []domain.Submission, rules Rules) Decision {
	if rej := CheckShape(req); rej != nil {
		return Decision{Rejection: rej}
	}

	sameDay := 0
	for _, sub := range prior {
		if sub.ItemID == req.ItemID {
			return reject(domain.ErrDuplicateSubmission)
		}
		if sub.Day == req.Day {
			sameDay++
		}
	}
	if rules.DailyLimit > 0 && sameDay >= rules.DailyLimit {
		return reject(domain.ErrDailyLimitReached)
	}

	if item == nil || !item.Active {
		return reject(domain.ErrItemNotFound)
	}
	if item.Day > req.Day {
		return reject(domain.ErrNotYetAvailable)
	}

	correct := normalize.Equal(req.Guess, item.Answer)
	return Decision{
		IsCorrect:        correct,
		ClaimFirstFinder: rules.Mode == domain.ScoringFirstFinder && correct && !item.Claimed(),
	}
}
