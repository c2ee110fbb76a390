package usecase

import (
	"sync"

	"FxPulse/internal/domain/models"
)

// spread applied when synthesizing a two-sided quote from a single
// price: 1.5 pips, half on each side.
const syntheticSpreadPips = 1.5

// PriceCache keeps the last known price per instrument for quote
// synthesis. It is a deliberately separate, last-write-wins read model:
// the tick ledger's outlier-aware view is never contaminated by it, and
// it in turn never rejects data, so consumers always get some rate.
type PriceCache struct {
	mu   sync.RWMutex
	last map[string]cachedPrice
}

type cachedPrice struct {
	price float64
	tsMs  int64
}

// NewPriceCache creates an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{last: make(map[string]cachedPrice)}
}

// RecordTrade stores a traded price for the pair.
func (p *PriceCache) RecordTrade(pair string, price float64, tsMs int64) {
	p.mu.Lock()
	p.last[pair] = cachedPrice{price: price, tsMs: tsMs}
	p.mu.Unlock()
}

// RecordQuote stores the quote midpoint as a synthetic trade.
func (p *PriceCache) RecordQuote(pair string, bid, ask float64, tsMs int64) {
	p.RecordTrade(pair, (bid+ask)/2, tsMs)
}

// LiveRates synthesizes a quote for every supported pair. Pairs that
// have never ticked fall back to their static instrument rate.
func (p *PriceCache) LiveRates() []models.LiveRate {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.LiveRate, 0, len(models.SupportedPairs()))
	for _, pair := range models.SupportedPairs() {
		in, _ := models.LookupInstrument(pair)
		mid := in.Fallback
		var ts int64
		if c, ok := p.last[pair]; ok {
			mid = c.price
			ts = c.tsMs
		}
		half := syntheticSpreadPips / 2 * in.PipSize
		bid := in.Round(mid - half)
		ask := in.Round(mid + half)
		out = append(out, models.LiveRate{
			Pair:      pair,
			Bid:       bid,
			Ask:       ask,
			Mid:       in.Round(mid),
			Spread:    in.Round(ask - bid),
			Timestamp: ts,
		})
	}
	return out
}
