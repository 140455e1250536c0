package cmd

import (
	"testing"
	"time"
)

func TestResolveDateRangeDefaults(t *testing.T) {
	start, end, err := resolveDateRange("", "")
	if err != nil {
		t.Fatalf("resolveDateRange returned error: %v", err)
	}

	now := time.Now()
	if start.Day() != 1 || start.Month() != now.Month() || start.Year() != now.Year() {
		t.Errorf("default start = %v, want first of current month", start)
	}
	if end.Day() != now.Day() {
		t.Errorf("default end = %v, want today", end)
	}
}

func TestResolveDateRangeExplicit(t *testing.T) {
	start, end, err := resolveDateRange("2026-07-01", "2026-07-31")
	if err != nil {
		t.Fatalf("resolveDateRange returned error: %v", err)
	}
	if start.Format("2006-01-02") != "2026-07-01" {
		t.Errorf("start = %v", start)
	}
	if end.Format("2006-01-02") != "2026-07-31" {
		t.Errorf("end = %v", end)
	}
}

func TestResolveDateRangeInvalid(t *testing.T) {
	if _, _, err := resolveDateRange("07/01/2026", ""); err == nil {
		t.Error("expected error for bad start format")
	}
	if _, _, err := resolveDateRange("", "not-a-date"); err == nil {
		t.Error("expected error for bad end format")
	}
	if _, _, err := resolveDateRange("2026-08-10", "2026-08-01"); err == nil {
		t.Error("expected error when end precedes start")
	}
}
