package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_WithinBurst(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 5, CleanupInterval: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
}

func TestAllow_ExceedsBurst(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 3, CleanupInterval: time.Minute})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("10.0.0.2")
	}
	if l.Allow("10.0.0.2") {
		t.Error("request exceeding burst should be denied")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	if !l.Allow("10.0.0.3") {
		t.Error("first key should be allowed")
	}
	if !l.Allow("10.0.0.4") {
		t.Error("second key should not share first key's bucket")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	l := New(Config{RequestsPerMinute: 6000, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	l.Allow("10.0.0.5")
	if l.Allow("10.0.0.5") {
		t.Fatal("bucket should be empty immediately")
	}

	// 100 req/sec refill rate: 50ms is plenty for one token
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("10.0.0.5") {
		t.Error("bucket should have refilled")
	}
}
