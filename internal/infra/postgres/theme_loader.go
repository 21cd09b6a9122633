package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quiz-room-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ThemeLoader loads theme question JSONB from Postgres.
type ThemeLoader struct {
	pool *pgxpool.Pool
}

func NewThemeLoader(pool *pgxpool.Pool) *ThemeLoader {
	return &ThemeLoader{pool: pool}
}

func (l *ThemeLoader) LoadTheme(ctx context.Context, name string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM themes WHERE id=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrThemeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal theme: %w", err)
	}
	return questions, nil
}
