package aws

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Clients bundles the read-only service clients the cost-analysis tools use.
// A single Clients value is built once per process for the caller's own
// account; cross-account variants are derived from it via ForAccount.
type Clients struct {
	cfg            aws.Config
	profile        string
	debug          bool
	sagemaker      *sagemaker.Client
	cloudwatch     *cloudwatch.Client
	cloudwatchlogs *cloudwatchlogs.Client
	costexplorer   *costexplorer.Client
	s3             *s3.Client
	sts            *sts.Client
}

// NewClients loads the default AWS configuration (honoring an optional shared
// profile and region override) and builds the service clients.
func NewClients(ctx context.Context, profile, region string, debug bool) (*Clients, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if debug {
		log.Printf("[aws] loaded config (profile=%q region=%q)", profile, cfg.Region)
	}

	return newFromConfig(cfg, profile, debug), nil
}

func newFromConfig(cfg aws.Config, profile string, debug bool) *Clients {
	return &Clients{
		cfg:            cfg,
		profile:        profile,
		debug:          debug,
		sagemaker:      sagemaker.NewFromConfig(cfg),
		cloudwatch:     cloudwatch.NewFromConfig(cfg),
		cloudwatchlogs: cloudwatchlogs.NewFromConfig(cfg),
		costexplorer:   costexplorer.NewFromConfig(cfg),
		s3:             s3.NewFromConfig(cfg),
		sts:            sts.NewFromConfig(cfg),
	}
}

// ForAccount returns a client set scoped to another account by assuming the
// given role there. Empty accountID returns the receiver unchanged, so tools
// can pass their optional parameters through without branching.
func (c *Clients) ForAccount(ctx context.Context, accountID, roleName string) (*Clients, error) {
	if accountID == "" {
		return c, nil
	}
	if roleName == "" {
		roleName = "CrossAccountAccessRole"
	}

	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)
	out, err := c.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(fmt.Sprintf("mlcost-%d", time.Now().Unix())),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role %s: %w", roleARN, err)
	}

	creds := out.Credentials
	cfg := c.cfg.Copy()
	cfg.Credentials = credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	)

	if c.debug {
		log.Printf("[aws] assumed role %s", roleARN)
	}

	return newFromConfig(cfg, c.profile, c.debug), nil
}

// CallerAccount returns the account ID of the active credentials.
func (c *Clients) CallerAccount(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// AccountContext renders the account label used in tool output.
func AccountContext(accountID string) string {
	if accountID == "" {
		return "current account"
	}
	return fmt.Sprintf("account %s", accountID)
}

// Config exposes the underlying SDK config for components that build their
// own service clients (the Bedrock model adapter).
func (c *Clients) Config() aws.Config {
	return c.cfg
}

// Region returns the resolved region.
func (c *Clients) Region() string {
	return c.cfg.Region
}

// SageMaker returns the SageMaker client.
func (c *Clients) SageMaker() *sagemaker.Client { return c.sagemaker }

// CloudWatch returns the CloudWatch client.
func (c *Clients) CloudWatch() *cloudwatch.Client { return c.cloudwatch }

// CloudWatchLogs returns the CloudWatch Logs client.
func (c *Clients) CloudWatchLogs() *cloudwatchlogs.Client { return c.cloudwatchlogs }

// CostExplorer returns the Cost Explorer client.
func (c *Clients) CostExplorer() *costexplorer.Client { return c.costexplorer }

// S3 returns the S3 client.
func (c *Clients) S3() *s3.Client { return c.s3 }
