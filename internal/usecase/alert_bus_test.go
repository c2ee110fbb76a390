package usecase

import (
	"testing"

	"FxPulse/internal/domain/models"
)

func TestAlertBusFanOut(t *testing.T) {
	b := NewAlertBus()
	ch1, cancel1 := b.Subscribe(4)
	ch2, cancel2 := b.Subscribe(4)
	defer cancel1()
	defer cancel2()

	b.Broadcast(models.Alert{ID: "a1", Pair: "EURUSD"})

	if a := <-ch1; a.ID != "a1" {
		t.Fatalf("subscriber 1 got %v", a.ID)
	}
	if a := <-ch2; a.ID != "a1" {
		t.Fatalf("subscriber 2 got %v", a.ID)
	}
}

func TestAlertBusDropsWhenFull(t *testing.T) {
	b := NewAlertBus()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Broadcast(models.Alert{ID: "a1"})
	b.Broadcast(models.Alert{ID: "a2"}) // buffer full, dropped

	if a := <-ch; a.ID != "a1" {
		t.Fatalf("expected first alert, got %v", a.ID)
	}
	select {
	case a := <-ch:
		t.Fatalf("expected drop, got %v", a.ID)
	default:
	}
}

func TestAlertBusCancelClosesChannel(t *testing.T) {
	b := NewAlertBus()
	ch, cancel := b.Subscribe(1)
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	// broadcast after cancel must not panic
	b.Broadcast(models.Alert{ID: "a1"})
}

func TestAlertBusClose(t *testing.T) {
	b := NewAlertBus()
	ch, _ := b.Subscribe(1)
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	// subscribing after close yields a closed channel
	ch2, cancel := b.Subscribe(1)
	cancel()
	if _, ok := <-ch2; ok {
		t.Fatalf("expected closed channel after bus close")
	}
}
