package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opsgrade/mlcost/internal/aws"
	"github.com/opsgrade/mlcost/internal/cost"
)

var (
	costStart   string
	costEnd     string
	costFormat  string
	costProfile string
	costRegion  string
	costService string
)

func init() {
	rootCmd.AddCommand(costCmd)
	costCmd.AddCommand(costSummaryCmd)
	costCmd.AddCommand(costDetailCmd)
	costCmd.AddCommand(costTrendCmd)
	costCmd.AddCommand(costForecastCmd)

	costCmd.PersistentFlags().StringVar(&costStart, "start", "", "Start date (YYYY-MM-DD, default: first of current month)")
	costCmd.PersistentFlags().StringVar(&costEnd, "end", "", "End date (YYYY-MM-DD, default: today)")
	costCmd.PersistentFlags().StringVar(&costFormat, "format", "table", "Output format (table or json)")
	costCmd.PersistentFlags().StringVar(&costProfile, "profile", "", "AWS profile name to use")
	costCmd.PersistentFlags().StringVar(&costRegion, "region", "", "AWS region to use")

	costDetailCmd.Flags().StringVar(&costService, "service", "Amazon SageMaker", "ML service to break down by usage type")
}

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Query ML service costs directly from Cost Explorer",
	Long: `Query Cost Explorer for ML service spend without involving the agent.

Covers Amazon SageMaker, Amazon Bedrock, AWS Deep Learning AMIs, and
Amazon Elastic Inference.`,
}

var costSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show total and per-service ML spend for a period",
	Run: func(cmd *cobra.Command, args []string) {
		client, start, end := costClient()

		summary, err := client.GetSummary(context.Background(), start, end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printFormatted(cost.NewFormatter(costFormat).FormatSummary(summary))
	},
}

var costDetailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Break one ML service's spend down by usage type",
	Run: func(cmd *cobra.Command, args []string) {
		client, start, end := costClient()

		detail, err := client.GetServiceDetail(context.Background(), costService, start, end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printFormatted(cost.NewFormatter(costFormat).FormatDetail(detail))
	},
}

var costTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show day-by-day ML spend for a period",
	Run: func(cmd *cobra.Command, args []string) {
		client, start, end := costClient()

		trend, err := client.GetDailyTrend(context.Background(), start, end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printFormatted(cost.NewFormatter(costFormat).FormatTrend(trend))
	},
}

var costForecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project ML spend to end of month and through next month",
	Run: func(cmd *cobra.Command, args []string) {
		client, _, _ := costClient()

		forecast, err := client.GetForecast(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printFormatted(cost.NewFormatter(costFormat).FormatForecast(forecast))
	},
}

// costClient builds the Cost Explorer client and resolves the date range.
// Exits on bad flags so the subcommand bodies stay small.
func costClient() (*cost.Client, time.Time, time.Time) {
	debug := viper.GetBool("debug")

	start, end, err := resolveDateRange(costStart, costEnd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clients, err := aws.NewClients(context.Background(), costProfile, costRegion, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cost.NewClient(clients.CostExplorer(), debug), start, end
}

// resolveDateRange parses --start/--end, defaulting to the current month so
// far.
func resolveDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	now := time.Now()

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD): %w", startStr, err)
		}
		start = parsed
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q (expected YYYY-MM-DD): %w", endStr, err)
		}
		end = parsed
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s must be after start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	return start, end, nil
}

func printFormatted(out string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
