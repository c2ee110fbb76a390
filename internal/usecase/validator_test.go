package usecase

import (
	"math"
	"testing"

	"FxPulse/internal/domain/models"
)

const baseTs = int64(1_700_000_000_000)

func TestValidateTickAccepts(t *testing.T) {
	if issues := ValidateTick("EURUSD", baseTs, 1.00130, models.PriceLast); len(issues) != 0 {
		t.Fatalf("expected clean tick, got %v", issues)
	}
}

func TestValidateTickStructural(t *testing.T) {
	cases := []struct {
		name  string
		pair  string
		ts    int64
		price float64
		pt    models.PriceType
	}{
		{"empty pair", "", baseTs, 1.0001, models.PriceLast},
		{"unknown pair", "XXXYYY", baseTs, 1.0001, models.PriceLast},
		{"zero price", "EURUSD", baseTs, 0, models.PriceLast},
		{"negative price", "EURUSD", baseTs, -1.0001, models.PriceLast},
		{"nan price", "EURUSD", baseTs, math.NaN(), models.PriceLast},
		{"inf price", "EURUSD", baseTs, math.Inf(1), models.PriceLast},
		{"zero timestamp", "EURUSD", 0, 1.0001, models.PriceLast},
		{"bad price type", "EURUSD", baseTs, 1.0001, models.PriceType("wild")},
	}
	for _, c := range cases {
		if issues := ValidateTick(c.pair, c.ts, c.price, c.pt); len(issues) == 0 {
			t.Fatalf("%s: expected rejection", c.name)
		}
	}
}

func TestValidateTickPipGrid(t *testing.T) {
	if issues := ValidateTick("EURUSD", baseTs, 1.00005, models.PriceLast); len(issues) == 0 {
		t.Fatalf("expected off-grid rejection for EURUSD")
	}
	if issues := ValidateTick("EURUSD", baseTs, 1.0834, models.PriceLast); len(issues) != 0 {
		t.Fatalf("expected on-grid acceptance, got %v", issues)
	}
	// JPY pairs quote on a 0.01 grid
	if issues := ValidateTick("USDJPY", baseTs, 149.503, models.PriceLast); len(issues) == 0 {
		t.Fatalf("expected off-grid rejection for USDJPY")
	}
	if issues := ValidateTick("USDJPY", baseTs, 149.50, models.PriceLast); len(issues) != 0 {
		t.Fatalf("expected on-grid acceptance, got %v", issues)
	}
}

func ticksAt(prices []float64) []*models.Tick {
	out := make([]*models.Tick, len(prices))
	for i, p := range prices {
		out[i] = &models.Tick{
			Pair:      "EURUSD",
			Type:      models.PriceLast,
			Price:     p,
			Timestamp: baseTs + int64(i)*1000,
		}
	}
	return out
}

func TestIsOutlierNeedsHistory(t *testing.T) {
	cfg := testEngineConfig()
	if IsOutlier(nil, 2.0, &cfg) {
		t.Fatalf("no history must never flag")
	}
	if IsOutlier(ticksAt([]float64{1.0}), 2.0, &cfg) {
		t.Fatalf("one tick of history must never flag")
	}
}

func TestIsOutlierReturnCap(t *testing.T) {
	cfg := testEngineConfig()
	recent := ticksAt([]float64{1.0000, 1.0001, 1.0002})
	// ~0.98% jump exceeds the 0.5% tick-to-tick cap
	if !IsOutlier(recent, 1.0100, &cfg) {
		t.Fatalf("expected cap violation to flag")
	}
	if IsOutlier(recent, 1.0003, &cfg) {
		t.Fatalf("expected small step to pass")
	}
}

func TestIsOutlierZScore(t *testing.T) {
	cfg := testEngineConfig()
	// history returns 0.02% then 0.01%: mean 0.015, std 0.005
	recent := ticksAt([]float64{1.0000, 1.0002, 1.0003})
	// 0.05% return sits 7 sigma out but well under the hard cap
	if !IsOutlier(recent, 1.0003*1.0005, &cfg) {
		t.Fatalf("expected z-score violation to flag")
	}
	// 0.02% return is within 5 sigma
	if IsOutlier(recent, 1.0003*1.0002, &cfg) {
		t.Fatalf("expected in-band return to pass")
	}
}

func TestIsOutlierFlatHistory(t *testing.T) {
	cfg := testEngineConfig()
	// an unchanged price has zero variance; only the hard cap can flag
	recent := ticksAt([]float64{1.0000, 1.0000, 1.0000, 1.0000})
	if IsOutlier(recent, 1.0004, &cfg) {
		t.Fatalf("flat history must not z-flag")
	}
}
