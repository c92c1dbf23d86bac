package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestEndpointsHaveSeparateBuckets(t *testing.T) {
	l := NewEndpointLimiter(Limit{RPS: 1, Burst: 2}, nil)

	for i := 0; i < 2; i++ {
		if !l.Allow("tickets") {
			t.Fatalf("tickets call %d rejected within burst", i+1)
		}
	}
	if l.Allow("tickets") {
		t.Fatal("burst exceeded but call allowed")
	}
	if !l.Allow("admin/users") {
		t.Fatal("admin/users shares a bucket with tickets")
	}
}

func TestOverride(t *testing.T) {
	l := NewEndpointLimiter(Limit{RPS: 1, Burst: 1}, map[string]Limit{"tickets": {RPS: 100, Burst: 5}})
	for i := 0; i < 5; i++ {
		if !l.Allow("tickets") {
			t.Fatalf("override burst not applied at call %d", i+1)
		}
	}

	l.SetLimit("admin/users", Limit{RPS: 1, Burst: 3})
	for i := 0; i < 3; i++ {
		if !l.Allow("admin/users") {
			t.Fatalf("SetLimit burst not applied at call %d", i+1)
		}
	}
}

func TestZeroDefaultsFallBack(t *testing.T) {
	l := NewEndpointLimiter(Limit{}, nil)
	if l.defaults != DefaultLimit() {
		t.Fatalf("defaults = %+v", l.defaults)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := NewEndpointLimiter(Limit{RPS: 0.001, Burst: 1}, nil)
	if err := l.Wait(context.Background(), "tickets"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "tickets"); err == nil {
		t.Fatal("expected Wait to fail once the bucket is empty")
	}
}
