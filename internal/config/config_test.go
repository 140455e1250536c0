package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `model_information:
  deep_agent_model_info:
    provider: bedrock
    bedrock:
      model_id: us.anthropic.claude-sonnet-4-20250514-v1:0
      inference_parameters:
        temperature: 0.2
        max_tokens: 8192
        top_p: 0.9
      system_prompt_fpath: prompts/system_prompt.md
    openai:
      model_id: gpt-4o
      inference_parameters:
        temperature: 0.3
        max_tokens: 4096
        top_p: 1.0
      system_prompt_fpath: prompts/system_prompt.md
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	info := cfg.ModelInformation.DeepAgentModelInfo
	if info.Provider != "bedrock" {
		t.Errorf("provider = %q, want bedrock", info.Provider)
	}
	if info.Bedrock.ModelID != "us.anthropic.claude-sonnet-4-20250514-v1:0" {
		t.Errorf("bedrock model_id = %q", info.Bedrock.ModelID)
	}
	if info.Bedrock.InferenceParameters.MaxTokens != 8192 {
		t.Errorf("bedrock max_tokens = %d, want 8192", info.Bedrock.InferenceParameters.MaxTokens)
	}
	if info.OpenAI.InferenceParameters.Temperature != 0.3 {
		t.Errorf("openai temperature = %v, want 0.3", info.OpenAI.InferenceParameters.Temperature)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "model_information: [not a map")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestModelFor(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	mc, err := cfg.ModelFor("openai")
	if err != nil {
		t.Fatalf("ModelFor(openai) returned error: %v", err)
	}
	if mc.ModelID != "gpt-4o" {
		t.Errorf("openai model_id = %q, want gpt-4o", mc.ModelID)
	}

	if _, err := cfg.ModelFor("anthropic"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestDefaultProvider(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DefaultProvider(); got != "bedrock" {
		t.Errorf("DefaultProvider on empty config = %q, want bedrock", got)
	}

	cfg.ModelInformation.DeepAgentModelInfo.Provider = "openai"
	if got := cfg.DefaultProvider(); got != "openai" {
		t.Errorf("DefaultProvider = %q, want openai", got)
	}
}

func TestLoadSystemPromptRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	promptDir := filepath.Join(dir, "prompts")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatalf("failed to create prompt dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(promptDir, "system_prompt.md"), []byte("You are an expert."), 0o644); err != nil {
		t.Fatalf("failed to write prompt: %v", err)
	}

	prompt, err := LoadSystemPrompt("prompts/system_prompt.md", configPath)
	if err != nil {
		t.Fatalf("LoadSystemPrompt returned error: %v", err)
	}
	if !strings.Contains(prompt, "expert") {
		t.Errorf("unexpected prompt content: %q", prompt)
	}
}

func TestLoadSystemPromptMissing(t *testing.T) {
	if _, err := LoadSystemPrompt("does/not/exist.md", filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("expected error for missing prompt file")
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("MLCOST_TEST_KEY", "from-env")

	got, err := ResolveEnv("from-cli", "MLCOST_TEST_KEY", true)
	if err != nil || got != "from-cli" {
		t.Errorf("CLI value should win: got %q, err %v", got, err)
	}

	got, err = ResolveEnv("", "MLCOST_TEST_KEY", true)
	if err != nil || got != "from-env" {
		t.Errorf("env fallback: got %q, err %v", got, err)
	}

	t.Setenv("MLCOST_TEST_KEY", "")
	if _, err := ResolveEnv("", "MLCOST_TEST_KEY", true); err == nil {
		t.Error("expected error when required value is missing")
	}
	if got, err := ResolveEnv("", "MLCOST_TEST_KEY", false); err != nil || got != "" {
		t.Errorf("optional missing value: got %q, err %v", got, err)
	}

	if got, _ := ResolveEnv("  padded  ", "MLCOST_TEST_KEY", true); got != "padded" {
		t.Errorf("expected trimmed CLI value, got %q", got)
	}
}
