package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/opsgrade/mlcost/internal/config"
)

const openAIRequestTimeout = 200 * time.Minute

// OpenAIModel calls an OpenAI chat model.
type OpenAIModel struct {
	client  openai.Client
	modelID string
	params  config.InferenceParameters
}

// NewOpenAIModel builds an OpenAI client with an extended request timeout to
// accommodate long deep-agent turns.
func NewOpenAIModel(apiKey string, mc config.ModelConfig) *OpenAIModel {
	return &OpenAIModel{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(openAIRequestTimeout),
		),
		modelID: mc.ModelID,
		params:  mc.InferenceParameters,
	}
}

// ModelID returns the OpenAI model identifier.
func (m *OpenAIModel) ModelID() string {
	return m.modelID
}

// Chat runs one chat-completions turn.
func (m *OpenAIModel) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages, err := toOpenAIMessages(req.System, req.Messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.modelID),
		Messages: messages,
	}
	if m.params.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(m.params.MaxTokens))
	}
	if m.params.Temperature > 0 {
		params.Temperature = openai.Float(m.params.Temperature)
	}
	if m.params.TopP > 0 {
		params.TopP = openai.Float(m.params.TopP)
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  openai.FunctionParameters(t.InputSchema),
				},
			})
		}
		params.Tools = tools
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no response choices")
	}

	choice := resp.Choices[0]
	message := Message{Role: RoleAssistant, Text: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		var input map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
			return nil, fmt.Errorf("failed to parse tool arguments for %s: %w", tc.Function.Name, err)
		}
		message.ToolUses = append(message.ToolUses, ToolUse{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	stopReason := StopEndTurn
	if choice.FinishReason == "tool_calls" || len(message.ToolUses) > 0 {
		stopReason = StopToolUse
	}

	return &ChatResponse{Message: message, StopReason: stopReason}, nil
}

func toOpenAIMessages(system string, messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			if len(msg.ToolResults) > 0 {
				for _, tr := range msg.ToolResults {
					out = append(out, openai.ToolMessage(tr.Content, tr.ToolUseID))
				}
				continue
			}
			out = append(out, openai.UserMessage(msg.Text))
		case RoleAssistant:
			if len(msg.ToolUses) > 0 {
				toolCalls := make([]openai.ChatCompletionMessageToolCall, 0, len(msg.ToolUses))
				for _, tu := range msg.ToolUses {
					args, err := json.Marshal(tu.Input)
					if err != nil {
						return nil, fmt.Errorf("failed to marshal tool input for %s: %w", tu.Name, err)
					}
					toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
						ID:   tu.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunction{
							Name:      tu.Name,
							Arguments: string(args),
						},
					})
				}
				assistantMsg := openai.ChatCompletionMessage{
					Role:      RoleAssistant,
					Content:   msg.Text,
					ToolCalls: toolCalls,
				}
				out = append(out, assistantMsg.ToParam())
				continue
			}
			out = append(out, openai.AssistantMessage(msg.Text))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	return out, nil
}
