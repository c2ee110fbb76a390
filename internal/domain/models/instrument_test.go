package models

import "testing"

func TestLookupInstrument(t *testing.T) {
	in, ok := LookupInstrument("EURUSD")
	if !ok || in.PipSize != 0.0001 || in.Precision != 5 {
		t.Fatalf("unexpected EURUSD %+v", in)
	}
	jpy, ok := LookupInstrument("USDJPY")
	if !ok || jpy.PipSize != 0.01 || jpy.Precision != 3 {
		t.Fatalf("unexpected USDJPY %+v", jpy)
	}
	if _, ok := LookupInstrument("BTCUSD"); ok {
		t.Fatalf("unexpected instrument")
	}
}

func TestSupportedPairsStableOrder(t *testing.T) {
	a := SupportedPairs()
	b := SupportedPairs()
	if len(a) != 10 {
		t.Fatalf("expected 10 pairs, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order must be stable")
		}
	}
}

func TestOnPipGrid(t *testing.T) {
	eur, _ := LookupInstrument("EURUSD")
	for _, p := range []float64{1.0834, 1.0000, 0.9999, 1.2345} {
		if !eur.OnPipGrid(p) {
			t.Fatalf("%v should be on grid", p)
		}
	}
	for _, p := range []float64{1.08345, 1.00001, 1.083401} {
		if eur.OnPipGrid(p) {
			t.Fatalf("%v should be off grid", p)
		}
	}

	jpy, _ := LookupInstrument("USDJPY")
	if !jpy.OnPipGrid(149.50) || !jpy.OnPipGrid(149.51) {
		t.Fatalf("expected JPY grid acceptance")
	}
	if jpy.OnPipGrid(149.505) {
		t.Fatalf("expected JPY sub-pip rejection")
	}
}

func TestInstrumentRound(t *testing.T) {
	eur, _ := LookupInstrument("EURUSD")
	if got := eur.Round(1.083449); got != 1.08345 {
		t.Fatalf("got %v", got)
	}
	jpy, _ := LookupInstrument("USDJPY")
	if got := jpy.Round(149.5014); got != 149.501 {
		t.Fatalf("got %v", got)
	}
}

func TestIsValidPriceType(t *testing.T) {
	for _, pt := range []PriceType{PriceBid, PriceAsk, PriceMid, PriceLast} {
		if !IsValidPriceType(pt) {
			t.Fatalf("%s should be valid", pt)
		}
	}
	if IsValidPriceType("close") {
		t.Fatalf("unexpected price type accepted")
	}
}

func TestQuoteMid(t *testing.T) {
	q := QuoteUpdate{Bid: 1.0834, Ask: 1.0836}
	if q.Mid() != 1.0835 {
		t.Fatalf("got %v", q.Mid())
	}
}
