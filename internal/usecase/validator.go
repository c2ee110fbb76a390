package usecase

import (
	"fmt"
	"math"

	"FxPulse/internal/domain/models"
)

// ValidateTick checks a raw tick for structural problems. A non-empty
// result means the tick is dropped; validation never fails hard.
func ValidateTick(pair string, tsMs int64, price float64, pt models.PriceType) []string {
	var issues []string

	in, known := models.LookupInstrument(pair)
	if pair == "" {
		issues = append(issues, "pair empty")
	} else if !known {
		issues = append(issues, fmt.Sprintf("unknown pair %s", pair))
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		issues = append(issues, "price not positive finite")
	}
	if tsMs <= 0 {
		issues = append(issues, "timestamp not positive")
	}
	if !models.IsValidPriceType(pt) {
		issues = append(issues, fmt.Sprintf("price type %q not allowed", pt))
	}
	if known && len(issues) == 0 && !in.OnPipGrid(price) {
		issues = append(issues, fmt.Sprintf("price %v off pip grid for %s", price, pair))
	}
	return issues
}

// IsOutlier decides whether a candidate price is statistically
// implausible against recent same-type history. recent must be ordered
// oldest first and already filtered to non-outlier ticks of the
// candidate's price type. Fewer than 2 prior ticks means there is not
// enough history to judge, so the candidate is never flagged.
func IsOutlier(recent []*models.Tick, price float64, cfg *EngineConfig) bool {
	if len(recent) < 2 {
		return false
	}
	if len(recent) > cfg.OutlierHistory {
		recent = recent[len(recent)-cfg.OutlierHistory:]
	}

	last := recent[len(recent)-1].Price
	candidateRet := (price - last) / last * 100
	if math.Abs(candidateRet) > cfg.MaxTickReturn {
		return true
	}

	rets := make([]float64, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		prev := recent[i-1].Price
		rets = append(rets, (recent[i].Price-prev)/prev*100)
	}

	mean, std := meanStd(rets)
	if std == 0 {
		// flat history gives no variance to judge against
		return false
	}
	return math.Abs(candidateRet-mean) > cfg.ZScoreLimit*std
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
