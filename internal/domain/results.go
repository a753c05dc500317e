package domain

import (
	"context"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/engine"
)

type GameResult struct {
	GameUuid      string
	ClientUuid    string
	Winner        engine.Side
	HumanShots    int
	OpponentShots int
	StartedAt     time.Time
	FinishedAt    time.Time
}

type Stats struct {
	GamesPlayed  int64
	HumanWins    int64
	OpponentWins int64
	AverageShots float64
}

type ResultRepository interface {
	SaveResult(ctx context.Context, result GameResult) error
	Stats(ctx context.Context) (Stats, error)
}
