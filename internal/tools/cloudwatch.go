package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// serviceLogPrefixes maps a friendly service name to its conventional
// CloudWatch Logs prefix.
var serviceLogPrefixes = map[string]string{
	"sagemaker": "/aws/sagemaker/",
	"bedrock":   "/aws/bedrock/",
	"lambda":    "/aws/lambda/",
	"ecs":       "/ecs/",
	"eks":       "/aws/eks/",
	"rds":       "/aws/rds/",
}

// ListCloudWatchDashboards lists the account's dashboards.
func (ts *Toolset) ListCloudWatchDashboards() Tool {
	return Tool{
		Name: "list_cloudwatch_dashboards",
		Description: "List CloudWatch dashboards in an AWS account. " +
			"Use this tool to discover existing monitoring dashboards.",
		InputSchema: objectSchema(crossAccountProps(nil)),
		Run: func(ctx context.Context, args map[string]any) string {
			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error listing CloudWatch dashboards", err)
			}

			out, err := clients.CloudWatch().ListDashboards(ctx, &cloudwatch.ListDashboardsInput{})
			if err != nil {
				return toolError("Error listing CloudWatch dashboards", err)
			}

			if len(out.DashboardEntries) == 0 {
				return fmt.Sprintf("No CloudWatch dashboards found in %s.", accountContext)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d CloudWatch dashboard(s) in %s:\n\n", len(out.DashboardEntries), accountContext)
			for _, entry := range out.DashboardEntries {
				fmt.Fprintf(&b, "  - %s\n", aws.ToString(entry.DashboardName))
				if entry.LastModified != nil {
					fmt.Fprintf(&b, "    Last Modified: %s\n", entry.LastModified.Format(timeLayout))
				}
			}
			return b.String()
		},
	}
}

// GetDashboardSummary reports the widgets and metrics a dashboard tracks.
func (ts *Toolset) GetDashboardSummary() Tool {
	return Tool{
		Name: "get_dashboard_summary",
		Description: "Get a summary of what a CloudWatch dashboard monitors, " +
			"including its widgets and tracked metrics.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"dashboard_name": prop("string", "Name of the CloudWatch dashboard"),
		}), "dashboard_name"),
		Run: func(ctx context.Context, args map[string]any) string {
			dashboardName := stringArg(args, "dashboard_name", "")

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error getting dashboard summary for '%s'", dashboardName), err)
			}

			out, err := clients.CloudWatch().GetDashboard(ctx, &cloudwatch.GetDashboardInput{
				DashboardName: aws.String(dashboardName),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error getting dashboard summary for '%s'", dashboardName), err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Dashboard: %s\n", dashboardName)
			fmt.Fprintf(&b, "Account: %s\n", accountContext)

			var body struct {
				Widgets []struct {
					Type       string `json:"type"`
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"widgets"`
			}
			if err := json.Unmarshal([]byte(aws.ToString(out.DashboardBody)), &body); err != nil {
				fmt.Fprintf(&b, "\nDashboard body could not be parsed: %v\n", err)
				return b.String()
			}

			fmt.Fprintf(&b, "Widgets: %d\n", len(body.Widgets))
			for _, widget := range body.Widgets {
				title := widget.Properties.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(&b, "  - [%s] %s\n", widget.Type, title)
			}
			return b.String()
		},
	}
}

// ListLogGroups lists log groups, optionally filtered by prefix.
func (ts *Toolset) ListLogGroups() Tool {
	return Tool{
		Name: "list_log_groups",
		Description: "List CloudWatch log groups in an AWS account, optionally " +
			"filtered by name prefix.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"prefix":      prop("string", "Log group name prefix filter (optional)"),
			"max_results": prop("integer", "Maximum number of log groups to return (default: 50)"),
		})),
		Run: func(ctx context.Context, args map[string]any) string {
			prefix := stringArg(args, "prefix", "")
			maxResults := intArg(args, "max_results", 50)

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error listing log groups", err)
			}

			input := &cloudwatchlogs.DescribeLogGroupsInput{
				Limit: aws.Int32(int32(maxResults)),
			}
			if prefix != "" {
				input.LogGroupNamePrefix = aws.String(prefix)
			}

			out, err := clients.CloudWatchLogs().DescribeLogGroups(ctx, input)
			if err != nil {
				return toolError("Error listing log groups", err)
			}

			if len(out.LogGroups) == 0 {
				return fmt.Sprintf("No log groups found in %s.", accountContext)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d log group(s) in %s:\n\n", len(out.LogGroups), accountContext)
			for _, group := range out.LogGroups {
				fmt.Fprintf(&b, "  - %s\n", aws.ToString(group.LogGroupName))
				if group.StoredBytes != nil {
					fmt.Fprintf(&b, "    Stored: %.2f MB\n", float64(aws.ToInt64(group.StoredBytes))/(1<<20))
				}
				if group.RetentionInDays != nil {
					fmt.Fprintf(&b, "    Retention: %d days\n", aws.ToInt32(group.RetentionInDays))
				} else {
					b.WriteString("    Retention: never expires\n")
				}
			}
			return b.String()
		},
	}
}

// FetchCloudWatchLogsForService fetches recent log events for a service.
func (ts *Toolset) FetchCloudWatchLogsForService() Tool {
	return Tool{
		Name: "fetch_cloudwatch_logs_for_service",
		Description: "Fetch recent CloudWatch log events for a service " +
			"(sagemaker, bedrock, lambda, ecs, eks, rds).",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"service": prop("string", "Service name: sagemaker, bedrock, lambda, ecs, eks or rds"),
			"hours":   prop("integer", "Number of hours to look back (default: 24)"),
		}), "service"),
		Run: func(ctx context.Context, args map[string]any) string {
			service := strings.ToLower(stringArg(args, "service", ""))
			hours := intArg(args, "hours", 24)

			logPrefix, ok := serviceLogPrefixes[service]
			if !ok {
				return fmt.Sprintf("Error: unknown service '%s'; supported services: sagemaker, bedrock, lambda, ecs, eks, rds", service)
			}

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error fetching logs for service '%s'", service), err)
			}

			groups, err := clients.CloudWatchLogs().DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
				LogGroupNamePrefix: aws.String(logPrefix),
				Limit:              aws.Int32(5),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error fetching logs for service '%s'", service), err)
			}
			if len(groups.LogGroups) == 0 {
				return fmt.Sprintf("No log groups found for service '%s' in %s.", service, accountContext)
			}

			startTime := time.Now().Add(-time.Duration(hours) * time.Hour).UnixMilli()
			var b strings.Builder
			fmt.Fprintf(&b, "Recent logs for service '%s' in %s (last %d hours):\n", service, accountContext, hours)

			for _, group := range groups.LogGroups {
				groupName := aws.ToString(group.LogGroupName)
				events, err := clients.CloudWatchLogs().FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
					LogGroupName: aws.String(groupName),
					StartTime:    aws.Int64(startTime),
					Limit:        aws.Int32(20),
				})
				if err != nil {
					log.Printf("[tools] could not fetch events from %s: %v", groupName, err)
					continue
				}

				fmt.Fprintf(&b, "\n%s (%d events):\n", groupName, len(events.Events))
				for _, event := range events.Events {
					message := strings.TrimSpace(aws.ToString(event.Message))
					if len(message) > 300 {
						message = message[:300] + "..."
					}
					fmt.Fprintf(&b, "  %s\n", message)
				}
			}
			return b.String()
		},
	}
}

// AnalyzeLogGroup scans a log group's recent events for error patterns.
func (ts *Toolset) AnalyzeLogGroup() Tool {
	return Tool{
		Name: "analyze_log_group",
		Description: "Analyze a CloudWatch log group's recent events for error " +
			"and warning patterns.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"log_group_name": prop("string", "Name of the log group to analyze"),
			"hours":          prop("integer", "Number of hours to look back (default: 24)"),
		}), "log_group_name"),
		Run: func(ctx context.Context, args map[string]any) string {
			groupName := stringArg(args, "log_group_name", "")
			hours := intArg(args, "hours", 24)

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error analyzing log group '%s'", groupName), err)
			}

			startTime := time.Now().Add(-time.Duration(hours) * time.Hour).UnixMilli()
			events, err := clients.CloudWatchLogs().FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
				LogGroupName: aws.String(groupName),
				StartTime:    aws.Int64(startTime),
				Limit:        aws.Int32(500),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error analyzing log group '%s'", groupName), err)
			}

			var errorCount, warnCount int
			var samples []string
			for _, event := range events.Events {
				message := aws.ToString(event.Message)
				lower := strings.ToLower(message)
				switch {
				case strings.Contains(lower, "error") || strings.Contains(lower, "exception") || strings.Contains(lower, "fail"):
					errorCount++
					if len(samples) < 5 {
						sample := strings.TrimSpace(message)
						if len(sample) > 200 {
							sample = sample[:200] + "..."
						}
						samples = append(samples, sample)
					}
				case strings.Contains(lower, "warn"):
					warnCount++
				}
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Log Group Analysis: %s\n", groupName)
			fmt.Fprintf(&b, "Account: %s\n", accountContext)
			fmt.Fprintf(&b, "Period: Last %d hours\n\n", hours)
			fmt.Fprintf(&b, "Events scanned: %d\n", len(events.Events))
			fmt.Fprintf(&b, "Errors: %d\n", errorCount)
			fmt.Fprintf(&b, "Warnings: %d\n", warnCount)
			if len(samples) > 0 {
				b.WriteString("\nSample errors:\n")
				for _, sample := range samples {
					fmt.Fprintf(&b, "  %s\n", sample)
				}
			}
			return b.String()
		},
	}
}

// GetCloudWatchAlarmsForService lists alarms whose name or namespace matches
// a service.
func (ts *Toolset) GetCloudWatchAlarmsForService() Tool {
	return Tool{
		Name: "get_cloudwatch_alarms_for_service",
		Description: "List CloudWatch alarms related to a service " +
			"(sagemaker, bedrock, lambda, ecs, eks, rds).",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"service": prop("string", "Service name to match alarms against"),
		}), "service"),
		Run: func(ctx context.Context, args map[string]any) string {
			service := strings.ToLower(stringArg(args, "service", ""))

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error getting alarms for service '%s'", service), err)
			}

			out, err := clients.CloudWatch().DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
				MaxRecords: aws.Int32(100),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error getting alarms for service '%s'", service), err)
			}

			var matched []cwtypes.MetricAlarm
			for _, alarm := range out.MetricAlarms {
				name := strings.ToLower(aws.ToString(alarm.AlarmName))
				namespace := strings.ToLower(aws.ToString(alarm.Namespace))
				if strings.Contains(name, service) || strings.Contains(namespace, service) {
					matched = append(matched, alarm)
				}
			}

			if len(matched) == 0 {
				return fmt.Sprintf("No CloudWatch alarms found for service '%s' in %s.", service, accountContext)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d alarm(s) for service '%s' in %s:\n\n", len(matched), service, accountContext)
			for _, alarm := range matched {
				fmt.Fprintf(&b, "  - %s\n", aws.ToString(alarm.AlarmName))
				fmt.Fprintf(&b, "    State: %s\n", alarm.StateValue)
				fmt.Fprintf(&b, "    Metric: %s/%s\n", aws.ToString(alarm.Namespace), aws.ToString(alarm.MetricName))
			}
			return b.String()
		},
	}
}
