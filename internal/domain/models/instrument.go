package models

import "math"

// Instrument describes a tradable currency pair: its pip size and the
// decimal precision quotes are expressed at. JPY-quoted pairs use a pip
// of 0.01 at 3 decimals; everything else 0.0001 at 5 decimals.
type Instrument struct {
	Symbol    string
	PipSize   float64
	Precision int
	Fallback  float64 // static rate used before the first tick arrives
}

var instruments = map[string]Instrument{
	"EURUSD": {Symbol: "EURUSD", PipSize: 0.0001, Precision: 5, Fallback: 1.0850},
	"GBPUSD": {Symbol: "GBPUSD", PipSize: 0.0001, Precision: 5, Fallback: 1.2650},
	"AUDUSD": {Symbol: "AUDUSD", PipSize: 0.0001, Precision: 5, Fallback: 0.6550},
	"NZDUSD": {Symbol: "NZDUSD", PipSize: 0.0001, Precision: 5, Fallback: 0.6050},
	"USDCAD": {Symbol: "USDCAD", PipSize: 0.0001, Precision: 5, Fallback: 1.3550},
	"USDCHF": {Symbol: "USDCHF", PipSize: 0.0001, Precision: 5, Fallback: 0.8850},
	"USDJPY": {Symbol: "USDJPY", PipSize: 0.01, Precision: 3, Fallback: 149.500},
	"EURJPY": {Symbol: "EURJPY", PipSize: 0.01, Precision: 3, Fallback: 162.200},
	"GBPJPY": {Symbol: "GBPJPY", PipSize: 0.01, Precision: 3, Fallback: 189.100},
	"EURGBP": {Symbol: "EURGBP", PipSize: 0.0001, Precision: 5, Fallback: 0.8580},
}

// LookupInstrument returns the instrument definition for a pair symbol.
func LookupInstrument(pair string) (Instrument, bool) {
	in, ok := instruments[pair]
	return in, ok
}

// SupportedPairs returns all known pair symbols in stable order.
func SupportedPairs() []string {
	out := make([]string, 0, len(instruments))
	for _, s := range []string{
		"EURUSD", "GBPUSD", "AUDUSD", "NZDUSD", "USDCAD",
		"USDCHF", "USDJPY", "EURJPY", "GBPJPY", "EURGBP",
	} {
		if _, ok := instruments[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Round rounds a price to the instrument's quote precision.
func (in Instrument) Round(price float64) float64 {
	scale := math.Pow10(in.Precision)
	return math.Round(price*scale) / scale
}

// OnPipGrid reports whether price sits on an integer multiple of
// the pip grid at the instrument's precision. Catches unit errors and
// cross-instrument feed mixups.
func (in Instrument) OnPipGrid(price float64) bool {
	scale := math.Pow10(in.Precision)
	units := price * scale
	if math.Abs(units-math.Round(units)) > 1e-6 {
		return false
	}
	pipUnits := in.PipSize * scale
	rem := math.Mod(math.Round(units), math.Round(pipUnits))
	return rem == 0
}
