package cost

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func testSummary() *Summary {
	return &Summary{
		TotalCost: 1234.56,
		Currency:  "USD",
		Period: Period{
			StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		Services: []ServiceCost{
			{Service: "Amazon SageMaker", Cost: 1000.00},
			{Service: "Amazon Bedrock", Cost: 234.56},
		},
	}
}

func TestFormatSummaryTable(t *testing.T) {
	out, err := NewFormatter("table").FormatSummary(testSummary())
	if err != nil {
		t.Fatalf("FormatSummary returned error: %v", err)
	}

	for _, want := range []string{"Total: $1234.56 USD", "Amazon SageMaker", "$1000.00", "2026-08-01", "2026-08-24"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSummaryJSON(t *testing.T) {
	out, err := NewFormatter("json").FormatSummary(testSummary())
	if err != nil {
		t.Fatalf("FormatSummary returned error: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("JSON output did not parse: %v", err)
	}
	if decoded.TotalCost != 1234.56 {
		t.Errorf("decoded total = %v, want 1234.56", decoded.TotalCost)
	}
	if len(decoded.Services) != 2 {
		t.Errorf("decoded services = %d, want 2", len(decoded.Services))
	}
}

func TestFormatSummaryEmpty(t *testing.T) {
	summary := testSummary()
	summary.Services = nil
	summary.TotalCost = 0

	out, err := NewFormatter("table").FormatSummary(summary)
	if err != nil {
		t.Fatalf("FormatSummary returned error: %v", err)
	}
	if !strings.Contains(out, "No ML service spend") {
		t.Errorf("empty summary should say so:\n%s", out)
	}
}

func TestFormatDetail(t *testing.T) {
	detail := &ServiceDetail{
		Service:   "Amazon SageMaker",
		TotalCost: 850.25,
		Period: Period{
			StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		UsageTypes: []UsageCost{
			{UsageType: "USE1-Train:ml.p4d.24xlarge", Cost: 700},
			{UsageType: "USE1-Host:ml.m5.xlarge", Cost: 150.25},
		},
	}

	out, err := NewFormatter("table").FormatDetail(detail)
	if err != nil {
		t.Fatalf("FormatDetail returned error: %v", err)
	}
	for _, want := range []string{"Amazon SageMaker", "$850.25", "USE1-Train:ml.p4d.24xlarge", "$700.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTrend(t *testing.T) {
	trend := []DailyCost{
		{Date: time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC), Cost: 10.5},
		{Date: time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), Cost: 12},
	}

	out, err := NewFormatter("table").FormatTrend(trend)
	if err != nil {
		t.Fatalf("FormatTrend returned error: %v", err)
	}
	for _, want := range []string{"2026-08-22", "$10.50", "2026-08-23", "$12.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("trend table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatForecast(t *testing.T) {
	out, err := NewFormatter("table").FormatForecast(&Forecast{
		EstimatedEndOfMonth: 1500,
		EstimatedNextMonth:  1600,
	})
	if err != nil {
		t.Fatalf("FormatForecast returned error: %v", err)
	}
	if !strings.Contains(out, "$1500.00") || !strings.Contains(out, "$1600.00") {
		t.Errorf("forecast output missing amounts:\n%s", out)
	}
}
