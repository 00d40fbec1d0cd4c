package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetMaxUploadBytes(t *testing.T) {
	SetMaxUploadBytes(-1)
	if maxUploadBytes != 32<<20 {
		t.Fatalf("expected default 32MiB, got %d", maxUploadBytes)
	}
	SetMaxUploadBytes(10)
	defer SetMaxUploadBytes(0)
	if maxUploadBytes != 10 {
		t.Fatalf("expected 10, got %d", maxUploadBytes)
	}
}

func TestSetMutationRateLimit_Normalizes(t *testing.T) {
	defer SetMutationRateLimit(0, 0)
	SetMutationRateLimit(-3, 0)
	if mutationRPS != 0 || mutationBurst != 1 {
		t.Fatalf("expected rps=0 burst=1, got %v %d", mutationRPS, mutationBurst)
	}
	if newMutationLimiter() != nil {
		t.Fatalf("expected no limiter when rps is zero")
	}
	SetMutationRateLimit(2, 5)
	if l := newMutationLimiter(); l == nil || l.Burst() != 5 {
		t.Fatalf("expected limiter with burst 5")
	}
}
