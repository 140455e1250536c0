package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// AnalyzeBedrockUsage summarizes Bedrock invocation and token volume from
// CloudWatch metrics.
func (ts *Toolset) AnalyzeBedrockUsage() Tool {
	return Tool{
		Name: "analyze_bedrock_usage",
		Description: "Analyze Amazon Bedrock model usage and costs. " +
			"Use this tool to understand Bedrock inference costs and usage patterns.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"days": prop("integer", "Number of days to analyze (default: 7)"),
		})),
		Run: func(ctx context.Context, args map[string]any) string {
			days := intArg(args, "days", 7)

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error analyzing Bedrock usage", err)
			}

			end := time.Now()
			start := end.AddDate(0, 0, -days)

			sumMetric := func(metricName string) (float64, error) {
				out, err := clients.CloudWatch().GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
					Namespace:  aws.String("AWS/Bedrock"),
					MetricName: aws.String(metricName),
					StartTime:  aws.Time(start),
					EndTime:    aws.Time(end),
					Period:     aws.Int32(86400),
					Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
				})
				if err != nil {
					return 0, err
				}
				var total float64
				for _, point := range out.Datapoints {
					total += aws.ToFloat64(point.Sum)
				}
				return total, nil
			}

			invocations, err := sumMetric("Invocations")
			if err != nil {
				return toolError("Error analyzing Bedrock usage", err)
			}
			inputTokens, err := sumMetric("InputTokens")
			if err != nil {
				return toolError("Error analyzing Bedrock usage", err)
			}
			outputTokens, err := sumMetric("OutputTokens")
			if err != nil {
				return toolError("Error analyzing Bedrock usage", err)
			}

			perRequest := int64(0)
			if invocations > 0 {
				perRequest = int64((inputTokens + outputTokens) / invocations)
			}

			var b strings.Builder
			b.WriteString("Amazon Bedrock Usage Analysis\n")
			fmt.Fprintf(&b, "Account: %s\n", accountContext)
			fmt.Fprintf(&b, "Period: Last %d days\n\n", days)
			fmt.Fprintf(&b, "Total Invocations: %d\n", int64(invocations))
			fmt.Fprintf(&b, "Total Input Tokens: %d\n", int64(inputTokens))
			fmt.Fprintf(&b, "Total Output Tokens: %d\n", int64(outputTokens))
			fmt.Fprintf(&b, "Average Tokens per Request: %d\n", perRequest)

			if ts.debug {
				log.Printf("[tools] analyzed Bedrock usage for %d days in %s: %d invocations", days, accountContext, int64(invocations))
			}
			return b.String()
		},
	}
}
