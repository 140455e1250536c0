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
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mlBucketPatterns are the naming substrings used to spot ML-related buckets.
var mlBucketPatterns = []string{"sagemaker", "ml", "model", "training", "dataset"}

// AnalyzeMLDataStorage scans S3 for ML-looking buckets and reports their size
// from CloudWatch storage metrics.
func (ts *Toolset) AnalyzeMLDataStorage() Tool {
	return Tool{
		Name: "analyze_ml_data_storage",
		Description: "Analyze S3 storage costs for ML training data and models. " +
			"Use this tool to identify opportunities to optimize data storage costs.",
		InputSchema: objectSchema(crossAccountProps(nil)),
		Run: func(ctx context.Context, args map[string]any) string {
			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error analyzing ML data storage", err)
			}

			buckets, err := clients.S3().ListBuckets(ctx, &s3.ListBucketsInput{})
			if err != nil {
				return toolError("Error analyzing ML data storage", err)
			}

			var mlBuckets []string
			for _, bucket := range buckets.Buckets {
				name := aws.ToString(bucket.Name)
				lower := strings.ToLower(name)
				for _, pattern := range mlBucketPatterns {
					if strings.Contains(lower, pattern) {
						mlBuckets = append(mlBuckets, name)
						break
					}
				}
			}

			if len(mlBuckets) == 0 {
				return fmt.Sprintf("No ML-related S3 buckets found in %s.", accountContext)
			}

			var b strings.Builder
			b.WriteString("ML Data Storage Analysis\n")
			fmt.Fprintf(&b, "Account: %s\n\n", accountContext)
			fmt.Fprintf(&b, "Found %d ML-related bucket(s):\n\n", len(mlBuckets))

			if len(mlBuckets) > 10 {
				mlBuckets = mlBuckets[:10]
			}
			end := time.Now()
			for _, bucketName := range mlBuckets {
				metrics, err := clients.CloudWatch().GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
					Namespace:  aws.String("AWS/S3"),
					MetricName: aws.String("BucketSizeBytes"),
					Dimensions: []cwtypes.Dimension{
						{Name: aws.String("BucketName"), Value: aws.String(bucketName)},
						{Name: aws.String("StorageType"), Value: aws.String("StandardStorage")},
					},
					StartTime:  aws.Time(end.Add(-24 * time.Hour)),
					EndTime:    aws.Time(end),
					Period:     aws.Int32(86400),
					Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
				})
				if err != nil || len(metrics.Datapoints) == 0 {
					if err != nil {
						log.Printf("[tools] could not get size for bucket %s: %v", bucketName, err)
					}
					fmt.Fprintf(&b, "  - %s: Size unavailable\n", bucketName)
					continue
				}
				sizeGB := aws.ToFloat64(metrics.Datapoints[0].Average) / (1 << 30)
				fmt.Fprintf(&b, "  - %s: %.2f GB\n", bucketName, sizeGB)
			}

			b.WriteString("\nStorage Optimization Recommendations:\n")
			b.WriteString("  1. Implement S3 Intelligent-Tiering for training data\n")
			b.WriteString("  2. Set lifecycle policies to archive old training datasets\n")
			b.WriteString("  3. Delete temporary data and failed training outputs\n")
			b.WriteString("  4. Use S3 Standard-IA for infrequently accessed models\n")

			if ts.debug {
				log.Printf("[tools] analyzed ML data storage for %d buckets", len(mlBuckets))
			}
			return b.String()
		},
	}
}
