package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opsgrade/mlcost/internal/agent"
	"github.com/opsgrade/mlcost/internal/aws"
	"github.com/opsgrade/mlcost/internal/config"
	"github.com/opsgrade/mlcost/internal/llm"
	"github.com/opsgrade/mlcost/internal/runner"
	"github.com/opsgrade/mlcost/internal/tavily"
	"github.com/opsgrade/mlcost/internal/tools"
)

var (
	analyzeProvider     string
	analyzeAgentConfig  string
	analyzeTavilyKey    string
	analyzeOpenAIKey    string
	analyzeAWSProfile   string
	analyzeAWSRegion    string
	analyzeLangsmithKey string
	analyzeLangsmithPrj string
	analyzeOutputFile   string
	analyzeMaxRetries   int
	analyzeRootDir      string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider to use (bedrock or openai). Defaults to config.yaml setting")
	analyzeCmd.Flags().StringVar(&analyzeAgentConfig, "agent-config", "config.yaml", "Path to agent configuration file")
	analyzeCmd.Flags().StringVar(&analyzeTavilyKey, "tavily-api-key", "", "Tavily API key for internet search (or set TAVILY_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeOpenAIKey, "openai-api-key", "", "OpenAI API key (required if using OpenAI provider, or set OPENAI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeAWSProfile, "aws-profile", "", "AWS profile name to use (or set AWS_PROFILE env var)")
	analyzeCmd.Flags().StringVar(&analyzeAWSRegion, "aws-region", "", "AWS region to use (or set AWS_REGION env var)")
	analyzeCmd.Flags().StringVar(&analyzeLangsmithKey, "langsmith-api-key", "", "LangSmith API key for tracing (optional, or set LANGSMITH_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeLangsmithPrj, "langsmith-project", "", "LangSmith project name (optional, or set LANGCHAIN_PROJECT env var)")
	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "Save agent response to file (optional)")
	analyzeCmd.Flags().IntVar(&analyzeMaxRetries, "max-retries", 3, "Maximum number of retries for tool errors")
	analyzeCmd.Flags().StringVar(&analyzeRootDir, "root-dir", "", "Root directory for the agent's file workspace (default: current directory)")
}

// analyzeCmd runs a cost-analysis query through the deep agent
var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Run a natural-language ML cost analysis query",
	Long: `Run a natural-language cost analysis query through the deep research agent.

The agent plans its own investigation using read-only AWS query tools
(SageMaker, Bedrock usage, Cost Explorer, S3 storage, CloudWatch) plus web
search, and writes its report into a file workspace.

Examples:
  mlcost analyze "Analyze my SageMaker training job costs"
  mlcost analyze --provider openai "Which endpoints are underutilized?"
  mlcost analyze --output-file report.json "Find ML storage waste"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		debug := viper.GetBool("debug")

		if query == "" {
			fmt.Fprintln(os.Stderr, "Error: a query is required")
			os.Exit(1)
		}

		ctx := context.Background()

		deepAgent, err := buildAgent(ctx, debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize agent: %v\n", err)
			os.Exit(1)
		}
		log.Printf("[analyze] agent initialized successfully")

		log.Printf("[analyze] running query: %s", query)
		start := time.Now()

		result, err := runner.Run(ctx, deepAgent, query, runner.Policy{MaxAttempts: analyzeMaxRetries})
		if err != nil {
			if runner.IsExhausted(err) {
				fmt.Fprintf(os.Stderr, "Query failed after exhausting retries: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			}
			if debug {
				log.Printf("[analyze] full error: %+v", err)
			}
			os.Exit(1)
		}

		logElapsed(time.Since(start))

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render result: %v\n", err)
			os.Exit(1)
		}

		banner := "================================================================================"
		fmt.Println("\n" + banner)
		fmt.Println("AGENT RESPONSE")
		fmt.Println(banner)
		fmt.Println(string(output))
		fmt.Println(banner)

		if analyzeOutputFile != "" {
			if err := os.WriteFile(analyzeOutputFile, output, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save response to %s: %v\n", analyzeOutputFile, err)
				os.Exit(1)
			}
			log.Printf("[analyze] response saved to %s", analyzeOutputFile)
		}
	},
}

// buildAgent resolves credentials, loads configuration, and assembles the
// deep agent. Configuration errors surface here, before any query runs.
func buildAgent(ctx context.Context, debug bool) (*agent.Agent, error) {
	// Required credentials first, so misconfiguration fails fast.
	tavilyKey, err := config.ResolveEnv(analyzeTavilyKey, "TAVILY_API_KEY", true)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	config.ExportEnv("TAVILY_API_KEY", tavilyKey, debug)

	config.ExportEnv("AWS_PROFILE", analyzeAWSProfile, debug)
	config.ExportEnv("AWS_REGION", analyzeAWSRegion, debug)

	// Tracing keys are exported for external tooling; nothing here reads them.
	if key, _ := config.ResolveEnv(analyzeLangsmithKey, "LANGSMITH_API_KEY", false); key != "" {
		config.ExportEnv("LANGSMITH_API_KEY", key, debug)
		config.ExportEnv("LANGSMITH_TRACING", "true", debug)
	}
	if project, _ := config.ResolveEnv(analyzeLangsmithPrj, "LANGCHAIN_PROJECT", false); project != "" {
		config.ExportEnv("LANGCHAIN_PROJECT", project, debug)
	}

	cfg, err := config.Load(analyzeAgentConfig)
	if err != nil {
		return nil, err
	}
	log.Printf("[analyze] loaded configuration from %s", analyzeAgentConfig)

	provider := analyzeProvider
	if provider == "" {
		provider = cfg.DefaultProvider()
	}
	log.Printf("[analyze] using provider: %s", provider)

	modelCfg, err := cfg.ModelFor(provider)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := config.LoadSystemPrompt(modelCfg.SystemPromptPath, analyzeAgentConfig)
	if err != nil {
		return nil, err
	}

	profile := analyzeAWSProfile
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}
	region := analyzeAWSRegion
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	clients, err := aws.NewClients(ctx, profile, region, debug)
	if err != nil {
		return nil, err
	}

	var model llm.Model
	switch provider {
	case "bedrock":
		model = llm.NewBedrockModel(clients.Config(), modelCfg)
		log.Printf("[analyze] initialized Amazon Bedrock model: %s", modelCfg.ModelID)
	case "openai":
		openaiKey, err := config.ResolveEnv(analyzeOpenAIKey, "OPENAI_API_KEY", true)
		if err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		model = llm.NewOpenAIModel(openaiKey, modelCfg)
		log.Printf("[analyze] initialized OpenAI model: %s", modelCfg.ModelID)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (must be 'bedrock' or 'openai')", provider)
	}

	rootDir := analyzeRootDir
	if rootDir == "" {
		rootDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	toolset := tools.NewToolset(clients, tavily.NewClient(tavilyKey), rootDir, debug)
	registry, err := tools.NewRegistry(toolset.All())
	if err != nil {
		return nil, err
	}

	return agent.New(agent.Config{
		Model:        model,
		Tools:        registry,
		SystemPrompt: systemPrompt,
		Debug:        debug,
	})
}

func logElapsed(elapsed time.Duration) {
	minutes := int(elapsed.Minutes())
	seconds := elapsed.Seconds() - float64(minutes)*60
	if minutes > 0 {
		log.Printf("[analyze] query completed in %d minutes and %.1f seconds", minutes, seconds)
	} else {
		log.Printf("[analyze] query completed in %.1f seconds", seconds)
	}
}
