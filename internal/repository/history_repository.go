package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
)

// ClickHouseHistory records live resolutions and serves the last known
// close consulted by the static fallback.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseHistory creates the ClickHouse-backed resolution history.
func NewClickHouseHistory(db *sql.DB, table string) repository.HistoryStore {
	return &ClickHouseHistory{db: db, table: table}
}

func (s *ClickHouseHistory) Record(ctx context.Context, q *models.Quote, capability string, latency time.Duration) error {
	if q == nil || q.Symbol == "" {
		return fmt.Errorf("history: empty quote")
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (ts, symbol, capability, source, price, latency_ms) VALUES (?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, query,
		q.ResolvedAt,
		q.Symbol,
		capability,
		q.SourceName,
		q.Price,
		latency.Milliseconds(),
	)
	return err
}

func (s *ClickHouseHistory) LastClose(ctx context.Context, symbol string) (float64, bool, error) {
	query := fmt.Sprintf(
		"SELECT price FROM %s WHERE symbol = ? ORDER BY ts DESC LIMIT 1",
		s.table,
	)
	var price float64
	err := s.db.QueryRowContext(ctx, query, symbol).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price, price > 0, nil
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseHistory) Close() error {
	return nil // Managed by pkg
}
