package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// InferenceParameters holds the sampling settings passed to the model.
type InferenceParameters struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`
}

// ModelConfig describes one provider entry in the agent config file.
type ModelConfig struct {
	ModelID             string              `yaml:"model_id"`
	InferenceParameters InferenceParameters `yaml:"inference_parameters"`
	SystemPromptPath    string              `yaml:"system_prompt_fpath"`
}

// DeepAgentModelInfo selects the active provider and carries per-provider
// model settings.
type DeepAgentModelInfo struct {
	Provider string      `yaml:"provider"`
	Bedrock  ModelConfig `yaml:"bedrock"`
	OpenAI   ModelConfig `yaml:"openai"`
}

// ModelInformation is the top-level model section of the config file.
type ModelInformation struct {
	DeepAgentModelInfo DeepAgentModelInfo `yaml:"deep_agent_model_info"`
}

// Config is the agent configuration file (config.yaml).
type Config struct {
	ModelInformation ModelInformation `yaml:"model_information"`
}

// Load reads and parses the agent configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ModelFor returns the model settings for the given provider name.
func (c *Config) ModelFor(provider string) (ModelConfig, error) {
	switch provider {
	case "bedrock":
		return c.ModelInformation.DeepAgentModelInfo.Bedrock, nil
	case "openai":
		return c.ModelInformation.DeepAgentModelInfo.OpenAI, nil
	default:
		return ModelConfig{}, fmt.Errorf("unsupported provider: %s (must be 'bedrock' or 'openai')", provider)
	}
}

// DefaultProvider returns the provider named in the config file, falling back
// to bedrock when the file doesn't set one.
func (c *Config) DefaultProvider() string {
	if p := c.ModelInformation.DeepAgentModelInfo.Provider; p != "" {
		return p
	}
	return "bedrock"
}

// LoadSystemPrompt reads the system prompt file referenced by the config.
// Relative paths are resolved against the config file's directory first, then
// the working directory.
func LoadSystemPrompt(promptPath, configPath string) (string, error) {
	candidates := []string{promptPath}
	if !filepath.IsAbs(promptPath) && configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), promptPath))
	}

	var lastErr error
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return string(data), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("failed to load system prompt from %s: %w", promptPath, lastErr)
}

// ResolveEnv returns the CLI-provided value when set, otherwise the named
// environment variable. Required values that resolve empty are an error; the
// caller reports it and exits before any agent construction happens.
func ResolveEnv(cliValue, envVar string, required bool) (string, error) {
	if v := strings.TrimSpace(cliValue); v != "" {
		return v, nil
	}

	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}

	if required {
		return "", fmt.Errorf("value must be provided via CLI argument or %s environment variable", envVar)
	}

	return "", nil
}

// ExportEnv sets an environment variable when the value is non-empty, logging
// in debug mode. Used to hand credentials and tracing keys to downstream SDKs.
func ExportEnv(key, value string, debug bool) {
	if value == "" {
		return
	}
	if err := os.Setenv(key, value); err != nil {
		log.Printf("[config] failed to set %s: %v", key, err)
		return
	}
	if debug {
		log.Printf("[config] exported %s", key)
	}
}
