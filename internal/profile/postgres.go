package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bitpixi2/lemonomics/internal/sim"
)

// PG is the Postgres-backed Store.
type PG struct {
	db *pgxpool.Pool
}

func NewPG(db *pgxpool.Pool) (*PG, error) {
	if db == nil {
		return nil, fmt.Errorf("profile store requires a database pool")
	}
	return &PG{db: db}, nil
}

func (s *PG) Ensure(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO lemonade.profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (s *PG) Get(ctx context.Context, userID string) (sim.UserProfile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, service, marketing, reputation,
		       total_runs, current_streak, longest_streak,
		       best_profit, total_profit, COALESCE(last_play_date, ''),
		       powerups_used_today, COALESCE(powerups_reset_date, '')
		FROM lemonade.profiles
		WHERE user_id = $1
	`, userID)
	p, err := scanProfile(row)
	if err == pgx.ErrNoRows {
		return sim.UserProfile{}, ErrNotFound
	}
	return p, err
}

func (s *PG) ApplyResult(ctx context.Context, userID string, result sim.GameResult, date string, expectedRun int) (sim.UserProfile, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return sim.UserProfile{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT user_id, service, marketing, reputation,
		       total_runs, current_streak, longest_streak,
		       best_profit, total_profit, COALESCE(last_play_date, ''),
		       powerups_used_today, COALESCE(powerups_reset_date, '')
		FROM lemonade.profiles
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	p, err := scanProfile(row)
	if err == pgx.ErrNoRows {
		return sim.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return sim.UserProfile{}, err
	}
	if p.Progress.TotalRuns+1 != expectedRun {
		return sim.UserProfile{}, fmt.Errorf("%w: expected run %d, store at %d", ErrRunConflict, expectedRun, p.Progress.TotalRuns)
	}

	applyProgress(&p, result, date)

	_, err = tx.Exec(ctx, `
		UPDATE lemonade.profiles
		SET total_runs = $2,
		    current_streak = $3,
		    longest_streak = $4,
		    best_profit = $5,
		    total_profit = $6,
		    last_play_date = $7,
		    powerups_used_today = $8,
		    powerups_reset_date = $9,
		    best_pure_profit = CASE
		        WHEN $10 AND $11 > best_pure_profit THEN $11
		        ELSE best_pure_profit
		    END,
		    updated_at = now()
		WHERE user_id = $1
	`, userID,
		p.Progress.TotalRuns, p.Progress.CurrentStreak, p.Progress.LongestStreak,
		p.Progress.BestProfit, p.Progress.TotalProfit, p.Progress.LastPlayDate,
		p.Powerups.UsedToday, p.Powerups.LastResetDate,
		len(result.PowerupsApplied) == 0, result.Profit)
	if err != nil {
		return sim.UserProfile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return sim.UserProfile{}, err
	}
	return p, nil
}

func (s *PG) ResetDailyPowerups(ctx context.Context, date string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE lemonade.profiles
		SET powerups_used_today = 0,
		    powerups_reset_date = $1,
		    updated_at = now()
		WHERE powerups_reset_date IS DISTINCT FROM $1
		  AND powerups_used_today > 0
	`, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PG) Leaderboard(ctx context.Context, limit int, pureOnly bool) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	metric := "best_profit"
	if pureOnly {
		metric = "best_pure_profit"
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT user_id, %s, total_profit, total_runs
		FROM lemonade.profiles
		WHERE total_runs > 0
		ORDER BY %s DESC, total_profit DESC
		LIMIT $1
	`, metric, metric), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.BestProfit, &r.TotalProfit, &r.TotalRuns); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanProfile(row pgx.Row) (sim.UserProfile, error) {
	var p sim.UserProfile
	err := row.Scan(
		&p.UserID,
		&p.GameStats.Service, &p.GameStats.Marketing, &p.GameStats.Reputation,
		&p.Progress.TotalRuns, &p.Progress.CurrentStreak, &p.Progress.LongestStreak,
		&p.Progress.BestProfit, &p.Progress.TotalProfit, &p.Progress.LastPlayDate,
		&p.Powerups.UsedToday, &p.Powerups.LastResetDate,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return sim.UserProfile{}, err
	}
	return p, err
}
