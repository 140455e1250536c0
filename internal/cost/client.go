// Package cost provides a direct Cost Explorer view of ML service spend,
// used by the cost subcommands without involving the LLM.
package cost

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// MLServices are the Cost Explorer service names this view covers.
var MLServices = []string{
	"Amazon SageMaker",
	"Amazon Bedrock",
	"AWS Deep Learning AMIs",
	"Amazon Elastic Inference",
}

// Client queries Cost Explorer for ML service spend.
type Client struct {
	ce    *costexplorer.Client
	debug bool
}

// NewClient wraps an already-configured Cost Explorer client.
func NewClient(ce *costexplorer.Client, debug bool) *Client {
	return &Client{ce: ce, debug: debug}
}

// mlServiceFilter restricts a Cost Explorer query to the ML services.
func mlServiceFilter() *cetypes.Expression {
	return &cetypes.Expression{
		Dimensions: &cetypes.DimensionValues{
			Key:    cetypes.DimensionService,
			Values: MLServices,
		},
	}
}

// GetSummary returns total and per-service ML spend for the period.
func (c *Client) GetSummary(ctx context.Context, start, end time.Time) (*Summary, error) {
	startStr := start.Format("2006-01-02")
	endStr := end.Format("2006-01-02")

	if c.debug {
		log.Printf("[cost] fetching ML costs from %s to %s", startStr, endStr)
	}

	out, err := c.ce.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(startStr),
			End:   aws.String(endStr),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		Filter:      mlServiceFilter(),
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  aws.String("SERVICE"),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ML costs: %w", err)
	}

	totals := make(map[string]float64)
	for _, period := range out.ResultsByTime {
		for _, group := range period.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			if metric, ok := group.Metrics["UnblendedCost"]; ok && metric.Amount != nil {
				amount, _ := strconv.ParseFloat(*metric.Amount, 64)
				totals[group.Keys[0]] += amount
			}
		}
	}

	var total float64
	services := make([]ServiceCost, 0, len(totals))
	for service, cost := range totals {
		total += cost
		services = append(services, ServiceCost{Service: service, Cost: cost})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Cost > services[j].Cost })

	return &Summary{
		TotalCost:   total,
		Currency:    "USD",
		Period:      Period{StartDate: start, EndDate: end},
		Services:    services,
		LastUpdated: time.Now(),
	}, nil
}

// GetServiceDetail breaks one ML service's spend down by usage type for the
// period.
func (c *Client) GetServiceDetail(ctx context.Context, service string, start, end time.Time) (*ServiceDetail, error) {
	if c.debug {
		log.Printf("[cost] fetching usage-type breakdown for %s", service)
	}

	out, err := c.ce.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		Filter: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionService,
				Values: []string{service},
			},
		},
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  aws.String("USAGE_TYPE"),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cost detail for %s: %w", service, err)
	}

	totals := make(map[string]float64)
	for _, period := range out.ResultsByTime {
		for _, group := range period.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			if metric, ok := group.Metrics["UnblendedCost"]; ok && metric.Amount != nil {
				amount, _ := strconv.ParseFloat(*metric.Amount, 64)
				totals[group.Keys[0]] += amount
			}
		}
	}

	var total float64
	usageTypes := make([]UsageCost, 0, len(totals))
	for usageType, cost := range totals {
		total += cost
		usageTypes = append(usageTypes, UsageCost{UsageType: usageType, Cost: cost})
	}
	sort.Slice(usageTypes, func(i, j int) bool { return usageTypes[i].Cost > usageTypes[j].Cost })

	return &ServiceDetail{
		Service:    service,
		TotalCost:  total,
		Period:     Period{StartDate: start, EndDate: end},
		UsageTypes: usageTypes,
	}, nil
}

// GetDailyTrend returns day-by-day ML spend for the period.
func (c *Client) GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyCost, error) {
	out, err := c.ce.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		Filter:      mlServiceFilter(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get daily ML costs: %w", err)
	}

	var trend []DailyCost
	for _, period := range out.ResultsByTime {
		if period.TimePeriod == nil || period.TimePeriod.Start == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", *period.TimePeriod.Start)
		if err != nil {
			continue
		}
		var amount float64
		if metric, ok := period.Total["UnblendedCost"]; ok && metric.Amount != nil {
			amount, _ = strconv.ParseFloat(*metric.Amount, 64)
		}
		trend = append(trend, DailyCost{Date: date, Cost: amount})
	}

	return trend, nil
}

// GetForecast projects ML spend to end of month and through next month.
func (c *Client) GetForecast(ctx context.Context) (*Forecast, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfMonth := startOfMonth.AddDate(0, 1, 0)
	endOfNextMonth := endOfMonth.AddDate(0, 1, 0)

	eom, err := c.ce.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(now.AddDate(0, 0, 1).Format("2006-01-02")),
			End:   aws.String(endOfMonth.Format("2006-01-02")),
		},
		Metric:      cetypes.MetricUnblendedCost,
		Granularity: cetypes.GranularityMonthly,
		Filter:      mlServiceFilter(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ML cost forecast: %w", err)
	}

	mtd, err := c.GetSummary(ctx, startOfMonth, now)
	if err != nil {
		return nil, err
	}

	var eomForecast float64
	if eom.Total != nil && eom.Total.Amount != nil {
		eomForecast, _ = strconv.ParseFloat(*eom.Total.Amount, 64)
	}

	var nextMonthForecast float64
	next, err := c.ce.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(endOfMonth.Format("2006-01-02")),
			End:   aws.String(endOfNextMonth.Format("2006-01-02")),
		},
		Metric:      cetypes.MetricUnblendedCost,
		Granularity: cetypes.GranularityMonthly,
		Filter:      mlServiceFilter(),
	})
	if err == nil && next.Total != nil && next.Total.Amount != nil {
		nextMonthForecast, _ = strconv.ParseFloat(*next.Total.Amount, 64)
	}

	return &Forecast{
		EstimatedEndOfMonth: mtd.TotalCost + eomForecast,
		EstimatedNextMonth:  nextMonthForecast,
	}, nil
}
