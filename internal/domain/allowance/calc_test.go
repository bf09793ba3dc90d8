package allowance

import (
	"errors"
	"testing"
)

func TestComputeAllowanceRoundsToCents(t *testing.T) {
	daily, weekly, err := ComputeAllowance(12.345, 0.7, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 12.345 * 0.7 * 2 = 17.283 -> 17.28
	if daily != 17.28 {
		t.Fatalf("expected daily 17.28, got %f", daily)
	}
	if weekly != 86.4 {
		t.Fatalf("expected weekly 86.40, got %f", weekly)
	}
}

func TestComputeAllowanceWeeklyScalesWithDays(t *testing.T) {
	daily, weekly, err := ComputeAllowance(10, 0.5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weekly != daily*5 {
		t.Fatalf("expected weekly to be five dailies, got daily=%f weekly=%f", daily, weekly)
	}
}

func TestComputeAllowanceRejectsNonPositiveRate(t *testing.T) {
	for _, rate := range []float64{0, -0.5} {
		if _, _, err := ComputeAllowance(10, rate, 5); !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("rate %f: expected ErrInvalidRate, got %v", rate, err)
		}
	}
}

func TestComputeAllowanceRejectsInvalidDays(t *testing.T) {
	for _, days := range []int{0, -1, 8} {
		if _, _, err := ComputeAllowance(10, 0.5, days); !errors.Is(err, ErrInvalidDaysPerWeek) {
			t.Fatalf("days %d: expected ErrInvalidDaysPerWeek, got %v", days, err)
		}
	}
}

func TestEffectiveRatePrefersSubprojectOverride(t *testing.T) {
	override := 0.9
	rate, err := EffectiveRate(&override, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.9 {
		t.Fatalf("expected override rate 0.9, got %f", rate)
	}
}

func TestEffectiveRateFallsBackToProjectDefault(t *testing.T) {
	rate, err := EffectiveRate(nil, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.5 {
		t.Fatalf("expected default rate 0.5, got %f", rate)
	}

	zero := 0.0
	rate, err = EffectiveRate(&zero, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.5 {
		t.Fatalf("expected non-positive override to be ignored, got %f", rate)
	}
}

func TestEffectiveRateRejectsMissingRates(t *testing.T) {
	if _, err := EffectiveRate(nil, 0); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}
