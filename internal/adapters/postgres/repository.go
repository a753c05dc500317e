package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	maxOpenConns = 20
	maxIdleConns = 5
	connMaxLife  = 15 * time.Minute
)

const (
	insertResultQuery = `INSERT INTO game_results
    (game_uuid, client_uuid, winner, human_shots, opponent_shots, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (game_uuid) DO NOTHING`

	statsQuery = `SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE winner = $1),
    COUNT(*) FILTER (WHERE winner = $2),
    COALESCE(AVG(human_shots), 0)
FROM game_results`
)

type repository struct {
	db *sql.DB
}

func New(db *sql.DB) repository {
	return repository{db: db}
}

// Connect opens a pooled connection to url and checks it is reachable.
func Connect(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.WithMessage(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WithMessage(err, "ping postgres")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLife)
	return db, nil
}

func (r repository) SaveResult(ctx context.Context, result domain.GameResult) error {
	_, err := r.db.ExecContext(ctx, insertResultQuery,
		result.GameUuid,
		result.ClientUuid,
		string(result.Winner),
		result.HumanShots,
		result.OpponentShots,
		result.StartedAt,
		result.FinishedAt,
	)
	if err != nil {
		return errors.WithMessagef(err, "insert result of game '%s'", result.GameUuid)
	}
	return nil
}

func (r repository) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.db.QueryRowContext(ctx, statsQuery, string(engine.Human), string(engine.Opponent)).Scan(
		&stats.GamesPlayed,
		&stats.HumanWins,
		&stats.OpponentWins,
		&stats.AverageShots,
	)
	if err != nil {
		return domain.Stats{}, errors.WithMessage(err, "select stats")
	}
	return stats, nil
}
