package repository

import (
	"testing"
	"time"
)

func TestBucketStartAlignment(t *testing.T) {
	ts := time.Date(2025, 3, 4, 13, 47, 23, 0, time.UTC).UnixMilli()

	cases := []struct {
		iv   Interval
		want time.Time
	}{
		{IV1m, time.Date(2025, 3, 4, 13, 47, 0, 0, time.UTC)},
		{IV15m, time.Date(2025, 3, 4, 13, 45, 0, 0, time.UTC)},
		{IV1h, time.Date(2025, 3, 4, 13, 0, 0, 0, time.UTC)},
		{IV4h, time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)},
		{IV1d, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := c.iv.BucketStart(ts); got != c.want.UnixMilli() {
			t.Fatalf("%s: got %d want %d", c.iv, got, c.want.UnixMilli())
		}
	}
}

func TestBucketStartBoundary(t *testing.T) {
	exact := time.Date(2025, 3, 4, 13, 45, 0, 0, time.UTC).UnixMilli()
	if got := IV15m.BucketStart(exact); got != exact {
		t.Fatalf("boundary timestamp must map to itself, got %d", got)
	}
}

func TestNormalizeInterval(t *testing.T) {
	if NormalizeInterval("4h") != IV4h {
		t.Fatalf("expected 4h")
	}
	if NormalizeInterval("2h") != IV1m {
		t.Fatalf("unknown interval must fall back to 1m")
	}
}

func TestIntervalDuration(t *testing.T) {
	if IV1d.Duration() != 24*time.Hour {
		t.Fatalf("unexpected daily width")
	}
}
