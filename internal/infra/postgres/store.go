package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-guess-service/internal/app"
	"daily-guess-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store implements app.Store on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

var _ app.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const itemColumns = `id, prompt, answer, day, ordinal, first_finder, active, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		item   domain.Item
		finder *string
	)
	if err := row.Scan(&item.ID, &item.Prompt, &item.Answer, &item.Day, &item.Ordinal, &finder, &item.Active, &item.CreatedAt); err != nil {
		return domain.Item{}, err
	}
	if finder != nil {
		item.FirstFinder = *finder
	}
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (domain.Item, error) {
	item, err := scanItem(s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	hints, err := s.hintsFor(ctx, `WHERE item_id = $1`, id)
	if err != nil {
		return domain.Item{}, err
	}
	item.Hints = hints[id]
	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY day DESC, ordinal, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	hints, err := s.hintsFor(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Hints = hints[items[i].ID]
	}
	return items, nil
}

func (s *Store) hintsFor(ctx context.Context, where string, args ...interface{}) (map[string][]domain.Hint, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, item_id, text, created_at FROM hints `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list hints: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Hint)
	for rows.Next() {
		var h domain.Hint
		if err := rows.Scan(&h.ID, &h.ItemID, &h.Text, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		out[h.ItemID] = append(out[h.ItemID], h)
	}
	return out, rows.Err()
}

func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	created, err := scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO items (id, prompt, answer, day, ordinal, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+itemColumns,
		item.ID, item.Prompt, item.Answer, item.Day, item.Ordinal, item.Active, item.CreatedAt,
	))
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Item, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		item, err := scanItem(tx.QueryRow(ctx, `
			UPDATE items SET
				prompt = COALESCE($2, prompt),
				answer = COALESCE($3, answer),
				day = COALESCE($4, day),
				ordinal = COALESCE($5, ordinal),
				active = COALESCE($6, active)
			WHERE id = $1
			RETURNING `+itemColumns,
			id, patch.Prompt, patch.Answer, patch.Day, patch.Ordinal, patch.Active,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if patch.Day == nil {
			return nil
		}
		return unassign(ctx, tx, id, item.Day)
	})
	if err != nil {
		return domain.Item{}, err
	}
	return s.GetItem(ctx, id)
}

// unassign drops id from the assignments of every day but keepDay.
func unassign(ctx context.Context, tx pgx.Tx, id string, keepDay int) error {
	_, err := tx.Exec(ctx,
		`UPDATE daily_assignments SET item_ids = array_remove(item_ids, $1) WHERE day <> $2`,
		id, keepDay,
	)
	if err != nil {
		return fmt.Errorf("unassign item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrItemNotFound
		}
		return unassign(ctx, tx, id, 0)
	})
}

func (s *Store) CreateHint(ctx context.Context, hint domain.Hint) (domain.Hint, error) {
	if hint.ID == "" {
		hint.ID = uuid.NewString()
	}
	if hint.CreatedAt.IsZero() {
		hint.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hints (id, item_id, text, created_at) VALUES ($1, $2, $3, $4)`,
		hint.ID, hint.ItemID, hint.Text, hint.CreatedAt,
	)
	if pgCode(err) == foreignKeyViolation {
		return domain.Hint{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Hint{}, fmt.Errorf("create hint: %w", err)
	}
	return hint, nil
}

func (s *Store) UpdateHint(ctx context.Context, id, text string) (domain.Hint, error) {
	var h domain.Hint
	err := s.pool.QueryRow(ctx,
		`UPDATE hints SET text = $2 WHERE id = $1 RETURNING id, item_id, text, created_at`, id, text,
	).Scan(&h.ID, &h.ItemID, &h.Text, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Hint{}, domain.ErrHintNotFound
	}
	if err != nil {
		return domain.Hint{}, fmt.Errorf("update hint: %w", err)
	}
	return h, nil
}

func (s *Store) DeleteHint(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM hints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHintNotFound
	}
	return nil
}

const submissionColumns = `id, player, display_name, item_id, day, guess, is_correct, is_first_finder, created_at`

func (s *Store) listSubmissions(ctx context.Context, where string, args ...interface{}) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+submissionColumns+` FROM submissions `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.Player, &sub.DisplayName, &sub.ItemID, &sub.Day, &sub.Guess,
			&sub.IsCorrect, &sub.IsFirstFinder, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) ListPlayerSubmissions(ctx context.Context, player string) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, `WHERE player = $1`, player)
}

func (s *Store) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, "")
}

// RecordSubmission runs the claim, the player upsert and the insert in one
// transaction. The claim is a conditional UPDATE, so under concurrent claims
// Postgres row locking lets exactly one of them affect a row.
func (s *Store) RecordSubmission(ctx context.Context, sub domain.Submission, claim bool) (domain.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		sub.IsFirstFinder = false
		if claim {
			tag, err := tx.Exec(ctx,
				`UPDATE items SET first_finder = $1 WHERE id = $2 AND first_finder IS NULL`,
				sub.Player, sub.ItemID,
			)
			if err != nil {
				return fmt.Errorf("claim item: %w", err)
			}
			sub.IsFirstFinder = tag.RowsAffected() == 1
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO players (id, name, display_name, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), sub.Player, sub.DisplayName, sub.CreatedAt,
		); err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO submissions (`+submissionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sub.ID, sub.Player, sub.DisplayName, sub.ItemID, sub.Day, sub.Guess,
			sub.IsCorrect, sub.IsFirstFinder, sub.CreatedAt,
		)
		if pgCode(err) == uniqueViolation {
			return domain.ErrDuplicateSubmission
		}
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, display_name, created_at FROM players ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Player, 0)
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetAssignment(ctx context.Context, day int) (domain.DailyAssignment, error) {
	a := domain.DailyAssignment{Day: day, ItemIDs: []string{}}
	err := s.pool.QueryRow(ctx, `SELECT item_ids FROM daily_assignments WHERE day = $1`, day).Scan(&a.ItemIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyAssignment{Day: day, ItemIDs: []string{}}, nil
	}
	if err != nil {
		return domain.DailyAssignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *Store) SetAssignment(ctx context.Context, assignment domain.DailyAssignment) (domain.DailyAssignment, error) {
	ids := assignment.ItemIDs
	if ids == nil {
		ids = []string{}
	}
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE items SET day = $1 WHERE id = ANY($2)`, assignment.Day, ids); err != nil {
			return fmt.Errorf("move items: %w", err)
		}
		for _, id := range ids {
			if err := unassign(ctx, tx, id, assignment.Day); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO daily_assignments (day, item_ids) VALUES ($1, $2)
			ON CONFLICT (day) DO UPDATE SET item_ids = EXCLUDED.item_ids`,
			assignment.Day, ids,
		); err != nil {
			return fmt.Errorf("set assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.DailyAssignment{}, err
	}
	return domain.DailyAssignment{Day: assignment.Day, ItemIDs: ids}, nil
}

func (s *Store) ListAssignments(ctx context.Context) ([]domain.DailyAssignment, error) {
	rows, err := s.pool.Query(ctx, `SELECT day, item_ids FROM daily_assignments ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DailyAssignment, 0)
	for rows.Next() {
		var a domain.DailyAssignment
		if err := rows.Scan(&a.Day, &a.ItemIDs); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetCalendar(ctx context.Context) (domain.GameCalendar, bool, error) {
	var cal domain.GameCalendar
	err := s.pool.QueryRow(ctx, `SELECT start_date, end_date FROM game_config WHERE id = 1`).Scan(&cal.StartDate, &cal.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GameCalendar{}, false, nil
	}
	if err != nil {
		return domain.GameCalendar{}, false, fmt.Errorf("get calendar: %w", err)
	}
	return cal, true, nil
}

func (s *Store) SaveCalendar(ctx context.Context, cal domain.GameCalendar) (domain.GameCalendar, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_config (id, start_date, end_date, updated_at) VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date, updated_at = now()`,
		cal.StartDate, cal.EndDate,
	)
	if err != nil {
		return domain.GameCalendar{}, fmt.Errorf("save calendar: %w", err)
	}
	return cal, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
