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
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

const timeLayout = "2006-01-02 15:04:05"

// ListSageMakerTrainingJobs lists recent training jobs for cost analysis.
func (ts *Toolset) ListSageMakerTrainingJobs() Tool {
	return Tool{
		Name: "list_sagemaker_training_jobs",
		Description: "List recent SageMaker training jobs in an AWS account. " +
			"Use this tool to discover training jobs and their status for cost analysis.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"days":        prop("integer", "Number of days to look back for training jobs (default: 7)"),
			"max_results": prop("integer", "Maximum number of training jobs to return (default: 50)"),
		})),
		Run: func(ctx context.Context, args map[string]any) string {
			days := intArg(args, "days", 7)
			maxResults := intArg(args, "max_results", 50)

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error listing SageMaker training jobs", err)
			}

			out, err := clients.SageMaker().ListTrainingJobs(ctx, &sagemaker.ListTrainingJobsInput{
				CreationTimeAfter: aws.Time(time.Now().AddDate(0, 0, -days)),
				MaxResults:        aws.Int32(int32(maxResults)),
				SortBy:            smtypes.SortByCreationTime,
				SortOrder:         smtypes.SortOrderDescending,
			})
			if err != nil {
				return toolError("Error listing SageMaker training jobs", err)
			}

			jobs := out.TrainingJobSummaries
			if len(jobs) == 0 {
				return fmt.Sprintf("No SageMaker training jobs found in the last %d days in %s.", days, accountContext)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d SageMaker training job(s) in the last %d days in %s:\n\n", len(jobs), days, accountContext)
			for _, job := range jobs {
				fmt.Fprintf(&b, "  - %s\n", aws.ToString(job.TrainingJobName))
				fmt.Fprintf(&b, "    Status: %s\n", job.TrainingJobStatus)
				if job.CreationTime != nil {
					fmt.Fprintf(&b, "    Created: %s\n", job.CreationTime.Format(timeLayout))
				}
				duration := "N/A"
				if job.TrainingEndTime != nil && job.CreationTime != nil {
					duration = fmt.Sprintf("%.2f hours", job.TrainingEndTime.Sub(*job.CreationTime).Hours())
				}
				fmt.Fprintf(&b, "    Duration: %s\n\n", duration)
			}

			if ts.debug {
				log.Printf("[tools] listed %d training jobs from %s", len(jobs), accountContext)
			}
			return b.String()
		},
	}
}

// GetTrainingJobDetails describes one training job, including billable time
// and final metrics.
func (ts *Toolset) GetTrainingJobDetails() Tool {
	return Tool{
		Name: "get_training_job_details",
		Description: "Get detailed information about a specific SageMaker training job. " +
			"Use this tool to analyze training job configuration and costs.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"training_job_name": prop("string", "Name of the SageMaker training job"),
		}), "training_job_name"),
		Run: func(ctx context.Context, args map[string]any) string {
			jobName := stringArg(args, "training_job_name", "")

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error getting training job details for '%s'", jobName), err)
			}

			job, err := clients.SageMaker().DescribeTrainingJob(ctx, &sagemaker.DescribeTrainingJobInput{
				TrainingJobName: aws.String(jobName),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error getting training job details for '%s'", jobName), err)
			}

			var durationHours float64
			if job.TrainingEndTime != nil && job.CreationTime != nil {
				durationHours = job.TrainingEndTime.Sub(*job.CreationTime).Hours()
			} else if job.TrainingJobStatus == smtypes.TrainingJobStatusInProgress && job.CreationTime != nil {
				durationHours = time.Since(*job.CreationTime).Hours()
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Training Job: %s\n", jobName)
			fmt.Fprintf(&b, "Account: %s\n", accountContext)
			fmt.Fprintf(&b, "Status: %s\n", job.TrainingJobStatus)
			if rc := job.ResourceConfig; rc != nil {
				b.WriteString("\nResource Configuration:\n")
				fmt.Fprintf(&b, "  Instance Type: %s\n", rc.InstanceType)
				fmt.Fprintf(&b, "  Instance Count: %d\n", aws.ToInt32(rc.InstanceCount))
				fmt.Fprintf(&b, "  Volume Size: %d GB\n", aws.ToInt32(rc.VolumeSizeInGB))
			}
			b.WriteString("\nTiming:\n")
			if job.CreationTime != nil {
				fmt.Fprintf(&b, "  Created: %s\n", job.CreationTime.Format(timeLayout))
			}
			if job.TrainingEndTime != nil {
				fmt.Fprintf(&b, "  Ended: %s\n", job.TrainingEndTime.Format(timeLayout))
			}
			fmt.Fprintf(&b, "  Duration: %.2f hours\n", durationHours)
			if job.BillableTimeInSeconds != nil {
				fmt.Fprintf(&b, "  Billable Time: %.2f hours\n", float64(aws.ToInt32(job.BillableTimeInSeconds))/3600)
			}
			if len(job.FinalMetricDataList) > 0 {
				b.WriteString("\nFinal Metrics:\n")
				for _, metric := range job.FinalMetricDataList {
					fmt.Fprintf(&b, "  %s: %v\n", aws.ToString(metric.MetricName), metric.Value)
				}
			}

			if ts.debug {
				log.Printf("[tools] retrieved details for training job %s", jobName)
			}
			return b.String()
		},
	}
}

// ListSageMakerEndpoints lists inference endpoints.
func (ts *Toolset) ListSageMakerEndpoints() Tool {
	return Tool{
		Name: "list_sagemaker_endpoints",
		Description: "List SageMaker endpoints in an AWS account. " +
			"Use this tool to discover active inference endpoints for cost analysis.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"max_results": prop("integer", "Maximum number of endpoints to return (default: 50)"),
		})),
		Run: func(ctx context.Context, args map[string]any) string {
			maxResults := intArg(args, "max_results", 50)

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError("Error listing SageMaker endpoints", err)
			}

			out, err := clients.SageMaker().ListEndpoints(ctx, &sagemaker.ListEndpointsInput{
				MaxResults: aws.Int32(int32(maxResults)),
				SortBy:     smtypes.EndpointSortKeyCreationTime,
				SortOrder:  smtypes.OrderKeyDescending,
			})
			if err != nil {
				return toolError("Error listing SageMaker endpoints", err)
			}

			endpoints := out.Endpoints
			if len(endpoints) == 0 {
				return fmt.Sprintf("No SageMaker endpoints found in %s.", accountContext)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d SageMaker endpoint(s) in %s:\n\n", len(endpoints), accountContext)
			for _, ep := range endpoints {
				fmt.Fprintf(&b, "  - %s\n", aws.ToString(ep.EndpointName))
				fmt.Fprintf(&b, "    Status: %s\n", ep.EndpointStatus)
				if ep.CreationTime != nil {
					fmt.Fprintf(&b, "    Created: %s\n", ep.CreationTime.Format(timeLayout))
				}
				b.WriteString("\n")
			}

			if ts.debug {
				log.Printf("[tools] listed %d endpoints from %s", len(endpoints), accountContext)
			}
			return b.String()
		},
	}
}

// GetEndpointDetails describes one endpoint, its variants and its recent
// invocation volume.
func (ts *Toolset) GetEndpointDetails() Tool {
	return Tool{
		Name: "get_endpoint_details",
		Description: "Get detailed information about a specific SageMaker endpoint. " +
			"Use this tool to analyze endpoint configuration and costs.",
		InputSchema: objectSchema(crossAccountProps(map[string]any{
			"endpoint_name": prop("string", "Name of the SageMaker endpoint"),
		}), "endpoint_name"),
		Run: func(ctx context.Context, args map[string]any) string {
			endpointName := stringArg(args, "endpoint_name", "")

			clients, accountContext, err := ts.accountClients(ctx, args)
			if err != nil {
				return toolError(fmt.Sprintf("Error getting endpoint details for '%s'", endpointName), err)
			}

			endpoint, err := clients.SageMaker().DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
				EndpointName: aws.String(endpointName),
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error getting endpoint details for '%s'", endpointName), err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Endpoint: %s\n", endpointName)
			fmt.Fprintf(&b, "Account: %s\n", accountContext)
			fmt.Fprintf(&b, "Status: %s\n", endpoint.EndpointStatus)
			if endpoint.CreationTime != nil {
				fmt.Fprintf(&b, "Created: %s\n", endpoint.CreationTime.Format(timeLayout))
			}
			b.WriteString("\nEndpoint Configuration:\n")

			cfg, err := clients.SageMaker().DescribeEndpointConfig(ctx, &sagemaker.DescribeEndpointConfigInput{
				EndpointConfigName: endpoint.EndpointConfigName,
			})
			if err != nil {
				return toolError(fmt.Sprintf("Error getting endpoint details for '%s'", endpointName), err)
			}

			for _, variant := range cfg.ProductionVariants {
				fmt.Fprintf(&b, "\n  Variant: %s\n", aws.ToString(variant.VariantName))
				fmt.Fprintf(&b, "    Instance Type: %s\n", variant.InstanceType)
				fmt.Fprintf(&b, "    Instance Count: %d\n", aws.ToInt32(variant.InitialInstanceCount))
				fmt.Fprintf(&b, "    Model: %s\n", aws.ToString(variant.ModelName))
			}

			// Invocation volume is best effort; missing metrics shouldn't
			// sink the whole report.
			end := time.Now()
			metrics, err := clients.CloudWatch().GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
				Namespace:  aws.String("AWS/SageMaker"),
				MetricName: aws.String("Invocations"),
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String("EndpointName"), Value: aws.String(endpointName)},
					{Name: aws.String("VariantName"), Value: aws.String("AllTraffic")},
				},
				StartTime:  aws.Time(end.Add(-24 * time.Hour)),
				EndTime:    aws.Time(end),
				Period:     aws.Int32(86400),
				Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
			})
			if err != nil {
				log.Printf("[tools] could not retrieve invocation metrics for %s: %v", endpointName, err)
			} else if len(metrics.Datapoints) > 0 {
				var total float64
				for _, point := range metrics.Datapoints {
					total += aws.ToFloat64(point.Sum)
				}
				fmt.Fprintf(&b, "\n  Invocations (last 24h): %d\n", int64(total))
			}

			if ts.debug {
				log.Printf("[tools] retrieved details for endpoint %s", endpointName)
			}
			return b.String()
		},
	}
}

// toolError renders a failure as tool output text. Tools never propagate
// errors past their own boundary.
func toolError(prefix string, err error) string {
	msg := fmt.Sprintf("%s: %v", prefix, err)
	log.Printf("[tools] %s", msg)
	return msg
}
