// Package agent assembles a chat model, a tool registry and a system prompt
// into one invocable deep agent.
package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/opsgrade/mlcost/internal/llm"
	"github.com/opsgrade/mlcost/internal/tools"
)

// defaultMaxToolTurns bounds the model/tool loop inside a single invocation.
const defaultMaxToolTurns = 50

// Result is the raw invocation result, passed through to the caller verbatim.
// The shape is a map with a "messages" transcript; callers treat it as opaque.
type Result map[string]any

// Config holds everything needed to assemble an agent. Construction is
// explicit and caller-owned; there are no package-level singletons.
type Config struct {
	Model        llm.Model
	Tools        *tools.Registry
	SystemPrompt string
	// MaxToolTurns caps model/tool round trips per invocation. Zero means
	// the default.
	MaxToolTurns int
	Debug        bool
}

// Agent drives the model/tool conversation loop. Build it once and reuse it
// across queries; Invoke does not mutate agent state.
type Agent struct {
	model        llm.Model
	tools        *tools.Registry
	toolSpecs    []llm.ToolSpec
	systemPrompt string
	maxToolTurns int
	debug        bool
}

// New validates the configuration and assembles the agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("agent requires a model")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("agent requires a tool registry")
	}
	if cfg.SystemPrompt == "" {
		return nil, fmt.Errorf("agent requires a system prompt")
	}

	maxTurns := cfg.MaxToolTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxToolTurns
	}

	all := cfg.Tools.All()
	specs := make([]llm.ToolSpec, 0, len(all))
	for _, t := range all {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	return &Agent{
		model:        cfg.Model,
		tools:        cfg.Tools,
		toolSpecs:    specs,
		systemPrompt: cfg.SystemPrompt,
		maxToolTurns: maxTurns,
		debug:        cfg.Debug,
	}, nil
}

// Invoke runs the conversation to completion: it calls the model, executes
// any requested tools, feeds the results back, and repeats until the model
// ends its turn. The call blocks for as long as the model and tools take.
func (a *Agent) Invoke(ctx context.Context, messages []llm.Message) (Result, error) {
	transcript := append([]llm.Message(nil), messages...)

	for turn := 0; turn < a.maxToolTurns; turn++ {
		resp, err := a.model.Chat(ctx, llm.ChatRequest{
			System:   a.systemPrompt,
			Messages: transcript,
			Tools:    a.toolSpecs,
		})
		if err != nil {
			return nil, fmt.Errorf("agent model call failed: %w", err)
		}

		transcript = append(transcript, resp.Message)

		if resp.StopReason != llm.StopToolUse || len(resp.Message.ToolUses) == 0 {
			return transcriptResult(transcript), nil
		}

		results := make([]llm.ToolResult, 0, len(resp.Message.ToolUses))
		for _, tu := range resp.Message.ToolUses {
			if a.debug {
				log.Printf("[agent] turn %d: executing tool %s", turn+1, tu.Name)
			}
			output := a.tools.Execute(ctx, tu.Name, tu.Input)
			results = append(results, llm.ToolResult{
				ToolUseID: tu.ID,
				Content:   output,
			})
		}
		transcript = append(transcript, llm.ToolResultMessage(results))
	}

	return nil, fmt.Errorf("agent exceeded %d tool turns without completing", a.maxToolTurns)
}

// transcriptResult renders the conversation as the raw result map.
func transcriptResult(transcript []llm.Message) Result {
	messages := make([]map[string]any, 0, len(transcript))
	for _, msg := range transcript {
		entry := map[string]any{
			"role":    msg.Role,
			"content": msg.Text,
		}
		if len(msg.ToolUses) > 0 {
			calls := make([]map[string]any, 0, len(msg.ToolUses))
			for _, tu := range msg.ToolUses {
				calls = append(calls, map[string]any{
					"id":    tu.ID,
					"name":  tu.Name,
					"input": tu.Input,
				})
			}
			entry["tool_calls"] = calls
		}
		if len(msg.ToolResults) > 0 {
			results := make([]map[string]any, 0, len(msg.ToolResults))
			for _, tr := range msg.ToolResults {
				results = append(results, map[string]any{
					"tool_use_id": tr.ToolUseID,
					"content":     tr.Content,
				})
			}
			entry["tool_results"] = results
		}
		messages = append(messages, entry)
	}
	return Result{"messages": messages}
}
