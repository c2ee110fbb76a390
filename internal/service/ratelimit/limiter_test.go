package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstCapacity(t *testing.T) {
	l := New(2, 0.001) // effectively no refill during the test
	if !l.Allow("EURUSD") || !l.Allow("EURUSD") {
		t.Fatalf("expected two tokens")
	}
	if l.Allow("EURUSD") {
		t.Fatalf("expected exhaustion")
	}
}

func TestLimiterKeysIndependent(t *testing.T) {
	l := New(1, 0.001)
	if !l.Allow("EURUSD") {
		t.Fatalf("expected first key allowed")
	}
	if !l.Allow("GBPUSD") {
		t.Fatalf("expected second key allowed")
	}
	if l.Allow("EURUSD") {
		t.Fatalf("expected first key exhausted")
	}
}

func TestLimiterRefill(t *testing.T) {
	l := New(1, 100) // 100 tokens/sec
	if !l.Allow("EURUSD") {
		t.Fatalf("expected first allowed")
	}
	if l.Allow("EURUSD") {
		t.Fatalf("expected immediate second denied")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("EURUSD") {
		t.Fatalf("expected refill after wait")
	}
}
