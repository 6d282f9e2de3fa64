package app

import (
	"testing"

	"daily-guess-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	item := &domain.Item{ID: "c1", Answer: "Marie Dupont", Day: 2, Active: true}
	fixed := Rules{Mode: domain.ScoringFixedPoints, DailyLimit: 2}
	req := GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "  marie dupont ", Day: 2}

	cases := []struct {
		name    string
		req     GuessRequest
		item    *domain.Item
		prior   []domain.Submission
		rules   Rules
		wantErr error
		correct bool
		claim   bool
	}{
		{name: "correct after normalization", req: req, item: item, rules: fixed, correct: true},
		{name: "hyphen is not stripped", req: withGuess(req, "Marie-Dupont"), item: item, rules: fixed},
		{name: "one letter name", req: withName(req, "A"), item: item, rules: fixed, wantErr: domain.ErrInvalidInput},
		{name: "name padded with spaces", req: withName(req, "  B  "), item: item, rules: fixed, wantErr: domain.ErrInvalidInput},
		{name: "missing item id", req: GuessRequest{PlayerName: "Alice", Guess: "x", Day: 2}, item: item, rules: fixed, wantErr: domain.ErrInvalidInput},
		{name: "missing guess", req: withGuess(req, "   "), item: item, rules: fixed, wantErr: domain.ErrInvalidInput},
		{name: "missing day", req: withDay(req, 0), item: item, rules: fixed, wantErr: domain.ErrInvalidInput},
		{
			name:    "duplicate",
			req:     req,
			item:    item,
			prior:   []domain.Submission{{ItemID: "c1", Day: 1}},
			rules:   fixed,
			wantErr: domain.ErrDuplicateSubmission,
		},
		{
			name:    "daily limit",
			req:     req,
			item:    item,
			prior:   []domain.Submission{{ItemID: "a", Day: 2}, {ItemID: "b", Day: 2}},
			rules:   fixed,
			wantErr: domain.ErrDailyLimitReached,
		},
		{
			name:    "other days do not count",
			req:     req,
			item:    item,
			prior:   []domain.Submission{{ItemID: "a", Day: 1}, {ItemID: "b", Day: 1}},
			rules:   fixed,
			correct: true,
		},
		{name: "unknown item", req: req, rules: fixed, wantErr: domain.ErrItemNotFound},
		{name: "inactive item", req: req, item: &domain.Item{ID: "c1", Answer: "x", Day: 1}, rules: fixed, wantErr: domain.ErrItemNotFound},
		{name: "future item", req: withDay(req, 1), item: item, rules: fixed, wantErr: domain.ErrNotYetAvailable},
		{
			name:    "first finder claims unclaimed item",
			req:     req,
			item:    item,
			rules:   Rules{Mode: domain.ScoringFirstFinder, DailyLimit: 2},
			correct: true,
			claim:   true,
		},
		{
			name:    "first finder on claimed item",
			req:     req,
			item:    &domain.Item{ID: "c1", Answer: "Marie Dupont", Day: 2, Active: true, FirstFinder: "bob"},
			rules:   Rules{Mode: domain.ScoringFirstFinder, DailyLimit: 2},
			correct: true,
		},
		{
			name:  "wrong guess never claims",
			req:   withGuess(req, "Paul"),
			item:  item,
			rules: Rules{Mode: domain.ScoringFirstFinder, DailyLimit: 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Validate(tc.req, tc.item, tc.prior, tc.rules)
			if tc.wantErr != nil {
				require.False(t, d.Accepted())
				assert.ErrorIs(t, d.Rejection, tc.wantErr)
				return
			}
			require.True(t, d.Accepted(), "unexpected rejection %v", d.Rejection)
			assert.Equal(t, tc.correct, d.IsCorrect)
			assert.Equal(t, tc.claim, d.ClaimFirstFinder)
		})
	}
}

func TestValidateDuplicateWinsOverDailyLimit(t *testing.T) {
	prior := []domain.Submission{{ItemID: "c1", Day: 1}, {ItemID: "c2", Day: 1}}
	d := Validate(GuessRequest{PlayerName: "Alice", ItemID: "c1", Guess: "x", Day: 1}, nil, prior, Rules{DailyLimit: 2})
	assert.ErrorIs(t, d.Rejection, domain.ErrDuplicateSubmission)
}

func withGuess(r GuessRequest, g string) GuessRequest { r.Guess = g; return r }
func withName(r GuessRequest, n string) GuessRequest { r.PlayerName = n; return r }
func withDay(r GuessRequest, d int) GuessRequest { r.Day = d; return r }
