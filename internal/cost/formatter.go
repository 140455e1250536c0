package cost

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

// Formatter renders cost data as a table or JSON.
type Formatter struct {
	format string
}

// NewFormatter creates a formatter for the given output format ("table" or
// "json").
func NewFormatter(format string) *Formatter {
	return &Formatter{format: format}
}

// FormatSummary renders a period summary.
func (f *Formatter) FormatSummary(summary *Summary) (string, error) {
	if f.format == "json" {
		return f.toJSON(summary)
	}

	var sb strings.Builder
	sb.WriteString("ML Service Costs\n")
	fmt.Fprintf(&sb, "Period: %s to %s\n\n",
		summary.Period.StartDate.Format("2006-01-02"),
		summary.Period.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Total: $%.2f %s\n\n", summary.TotalCost, summary.Currency)

	if len(summary.Services) == 0 {
		sb.WriteString("No ML service spend in this period.\n")
		return sb.String(), nil
	}

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tCOST")
	for _, service := range summary.Services {
		fmt.Fprintf(w, "%s\t$%.2f\n", service.Service, service.Cost)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to render cost table: %w", err)
	}

	return sb.String(), nil
}

// FormatDetail renders one service's usage-type breakdown.
func (f *Formatter) FormatDetail(detail *ServiceDetail) (string, error) {
	if f.format == "json" {
		return f.toJSON(detail)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Cost Detail\n", detail.Service)
	fmt.Fprintf(&sb, "Period: %s to %s\n\n",
		detail.Period.StartDate.Format("2006-01-02"),
		detail.Period.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Total: $%.2f\n\n", detail.TotalCost)

	if len(detail.UsageTypes) == 0 {
		sb.WriteString("No usage for this service in this period.\n")
		return sb.String(), nil
	}

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USAGE TYPE\tCOST")
	for _, usage := range detail.UsageTypes {
		fmt.Fprintf(w, "%s\t$%.2f\n", usage.UsageType, usage.Cost)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to render detail table: %w", err)
	}

	return sb.String(), nil
}

// FormatTrend renders the daily spend trend.
func (f *Formatter) FormatTrend(trend []DailyCost) (string, error) {
	if f.format == "json" {
		return f.toJSON(trend)
	}

	if len(trend) == 0 {
		return "No daily cost data for this period.\n", nil
	}

	var sb strings.Builder
	sb.WriteString("Daily ML Spend\n\n")
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCOST")
	for _, day := range trend {
		fmt.Fprintf(w, "%s\t$%.2f\n", day.Date.Format("2006-01-02"), day.Cost)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to render trend table: %w", err)
	}

	return sb.String(), nil
}

// FormatForecast renders the spend projections.
func (f *Formatter) FormatForecast(forecast *Forecast) (string, error) {
	if f.format == "json" {
		return f.toJSON(forecast)
	}

	var sb strings.Builder
	sb.WriteString("ML Cost Forecast\n\n")
	fmt.Fprintf(&sb, "Estimated end of month: $%.2f\n", forecast.EstimatedEndOfMonth)
	fmt.Fprintf(&sb, "Estimated next month:   $%.2f\n", forecast.EstimatedNextMonth)
	return sb.String(), nil
}

func (f *Formatter) toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal cost data: %w", err)
	}
	return string(data), nil
}
