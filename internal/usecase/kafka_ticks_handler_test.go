package usecase

import (
	"testing"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
)

func TestTicksHandlerTradeMessage(t *testing.T) {
	e := newTestEngine()
	h := NewKafkaTicksHandler("fx.ticks", e)

	msg := []byte(`{"pair":"EURUSD","price":1.0834,"t":1700000000000,"v":2}`)
	if err := h.Handle(t.Context(), msg); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	key := models.CandleKey{Pair: "EURUSD", Interval: "1m", BucketStart: domrepo.IV1m.BucketStart(baseTs)}
	if _, ok := e.Aggregator().Bucket(key); !ok {
		t.Fatalf("expected candle from kafka trade")
	}
}

func TestTicksHandlerQuoteMessage(t *testing.T) {
	e := newTestEngine()
	h := NewKafkaTicksHandler("fx.ticks", e)

	msg := []byte(`{"pair":"EURUSD","bid":1.0834,"ask":1.0836,"t":1700000000000}`)
	if err := h.Handle(t.Context(), msg); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	snap, ok := e.WindowSnapshot("EURUSD", nil)
	if !ok {
		t.Fatalf("expected ledger state from kafka quote")
	}
	if snap.LastPrice != 1.0836 && snap.LastPrice != 1.0834 {
		t.Fatalf("unexpected last price %v", snap.LastPrice)
	}
}

func TestTicksHandlerMalformed(t *testing.T) {
	e := newTestEngine()
	h := NewKafkaTicksHandler("fx.ticks", e)

	if err := h.Handle(t.Context(), []byte("{nope")); err == nil {
		t.Fatalf("expected parse error")
	}
	if e.Aggregator().DirtyCount() != 0 {
		t.Fatalf("malformed message must not reach the engine")
	}
}
