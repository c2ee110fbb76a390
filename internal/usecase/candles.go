package usecase

import (
	"context"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving candles. It
// reads persisted rows and overlays the live in-memory bucket for the
// current period, so queries see the forming candle before any flush.
type CandlesUseCase struct {
	store domrepo.CandleStore
	agg   *CandleAggregator
}

func NewCandlesUseCase(store domrepo.CandleStore, agg *CandleAggregator) *CandlesUseCase {
	return &CandlesUseCase{store: store, agg: agg}
}

type GetCandlesParams struct {
	Pair     string
	Interval domrepo.Interval
	From     time.Time
	To       time.Time
	Limit    int
}

type GetCandlesResult struct {
	Pair     string          `json:"pair"`
	Interval string          `json:"interval"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Count    int             `json:"count"`
	Candles  []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Pair == "" {
		return nil, fmt.Errorf("pair required")
	}
	if _, ok := models.LookupInstrument(p.Pair); !ok {
		return nil, fmt.Errorf("unknown pair %s", p.Pair)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	if p.Limit > 5000 {
		p.Limit = 5000
	}

	var candles []models.Candle
	if uc.store != nil {
		var err error
		candles, err = uc.store.GetCandles(ctx, p.Pair, p.Interval, p.From, p.To, p.Limit)
		if err != nil {
			return nil, fmt.Errorf("get candles: %w", err)
		}
	}

	candles = uc.overlayLive(candles, p)
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	return &GetCandlesResult{
		Pair:     p.Pair,
		Interval: string(p.Interval),
		From:     p.From,
		To:       p.To,
		Count:    len(candles),
		Candles:  candles,
	}, nil
}

// overlayLive replaces or appends the forming bucket for the requested
// range from the in-memory aggregator.
func (uc *CandlesUseCase) overlayLive(candles []models.Candle, p GetCandlesParams) []models.Candle {
	if uc.agg == nil {
		return candles
	}
	key := models.CandleKey{
		Pair:        p.Pair,
		Interval:    string(p.Interval),
		BucketStart: p.Interval.BucketStart(p.To.UnixMilli()),
	}
	if key.BucketStart < p.From.UnixMilli() {
		return candles
	}
	live, ok := uc.agg.Bucket(key)
	if !ok {
		return candles
	}
	for i := range candles {
		if candles[i].BucketStart == live.BucketStart {
			candles[i] = live
			return candles
		}
	}
	return append(candles, live)
}
