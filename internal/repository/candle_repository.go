package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
)

// ClickHouseCandleStore implements CandleStore on a ReplacingMergeTree
// table: an upsert is an insert of a newer version for the same
// (pair, interval, bucket_start) key, and reads collapse with FINAL.
type ClickHouseCandleStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseCandleStore creates ClickHouse-backed candle storage.
func NewClickHouseCandleStore(db *sql.DB, table string) domrepo.CandleStore {
	return &ClickHouseCandleStore{db: db, table: table}
}

func (s *ClickHouseCandleStore) Init(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStore) UpsertCandle(ctx context.Context, c *models.Candle) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (pair, interval, bucket_start, open, high, low, close, volume, version) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.table)
	_, err := s.db.ExecContext(ctx, q,
		c.Pair,
		c.Interval,
		time.UnixMilli(c.BucketStart).UTC(),
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
		uint64(time.Now().UnixNano()),
	)
	return err
}

func (s *ClickHouseCandleStore) GetCandles(ctx context.Context, pair string, iv domrepo.Interval, from, to time.Time, limit int) ([]models.Candle, error) {
	q := fmt.Sprintf(
		"SELECT pair, interval, bucket_start, open, high, low, close, volume FROM %s FINAL WHERE pair = ? AND interval = ? AND bucket_start >= ? AND bucket_start <= ? ORDER BY bucket_start ASC LIMIT ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, pair, string(iv), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candle
	for rows.Next() {
		var c models.Candle
		var bs time.Time
		if err := rows.Scan(&c.Pair, &c.Interval, &bs, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.BucketStart = bs.UnixMilli()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStore) Close() error {
	return nil // connection pool owned by pkg client
}

// ClickHouseAlertStore persists emitted alerts keyed by id.
type ClickHouseAlertStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAlertStore creates ClickHouse-backed alert storage.
func NewClickHouseAlertStore(db *sql.DB, table string) domrepo.AlertStore {
	return &ClickHouseAlertStore{db: db, table: table}
}

func (s *ClickHouseAlertStore) InsertAlert(ctx context.Context, a *models.Alert) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (id, pair, window_minutes, price_type, from_price, to_price, change_percent, severity, triggered_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.table)
	_, err := s.db.ExecContext(ctx, q,
		a.ID,
		a.Pair,
		int32(a.WindowMinutes),
		string(a.PriceType),
		a.FromPrice,
		a.ToPrice,
		a.ChangePercent,
		string(a.Severity),
		a.TriggeredAt.UTC(),
	)
	return err
}
