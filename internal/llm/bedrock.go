package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/opsgrade/mlcost/internal/config"
)

// Deep-agent turns can run for a very long time; the default 60s HTTP timeout
// is far too short.
const bedrockReadTimeout = 200 * time.Minute

// BedrockModel calls a Bedrock model through the Converse API.
type BedrockModel struct {
	client  *bedrockruntime.Client
	modelID string
	params  config.InferenceParameters
}

// NewBedrockModel builds a Converse client with an extended read timeout and
// adaptive SDK retries.
func NewBedrockModel(cfg aws.Config, mc config.ModelConfig) *BedrockModel {
	client := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.HTTPClient = &http.Client{Timeout: bedrockReadTimeout}
		o.RetryMaxAttempts = 3
		o.RetryMode = aws.RetryModeAdaptive
	})

	return &BedrockModel{
		client:  client,
		modelID: mc.ModelID,
		params:  mc.InferenceParameters,
	}
}

// ModelID returns the Bedrock model identifier.
func (m *BedrockModel) ModelID() string {
	return m.modelID
}

// Chat runs one Converse turn.
func (m *BedrockModel) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages, err := toBedrockMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(m.modelID),
		Messages: messages,
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(m.params.MaxTokens)),
			Temperature: aws.Float32(float32(m.params.Temperature)),
			TopP:        aws.Float32(float32(m.params.TopP)),
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}
	if len(req.Tools) > 0 {
		input.ToolConfig = toBedrockToolConfig(req.Tools)
	}

	out, err := m.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock converse failed: %w", err)
	}

	outMsg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("bedrock converse returned unexpected output type %T", out.Output)
	}

	message, err := fromBedrockMessage(outMsg.Value)
	if err != nil {
		return nil, err
	}

	stopReason := StopEndTurn
	if out.StopReason == brtypes.StopReasonToolUse {
		stopReason = StopToolUse
	}

	return &ChatResponse{Message: message, StopReason: stopReason}, nil
}

func toBedrockToolConfig(tools []ToolSpec) *brtypes.ToolConfiguration {
	specs := make([]brtypes.Tool, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(t.InputSchema),
				},
			},
		})
	}
	return &brtypes.ToolConfiguration{Tools: specs}
}

func toBedrockMessages(messages []Message) ([]brtypes.Message, error) {
	out := make([]brtypes.Message, 0, len(messages))
	for _, msg := range messages {
		role := brtypes.ConversationRoleUser
		if msg.Role == RoleAssistant {
			role = brtypes.ConversationRoleAssistant
		}

		var content []brtypes.ContentBlock
		if msg.Text != "" {
			content = append(content, &brtypes.ContentBlockMemberText{Value: msg.Text})
		}
		for _, tu := range msg.ToolUses {
			content = append(content, &brtypes.ContentBlockMemberToolUse{
				Value: brtypes.ToolUseBlock{
					ToolUseId: aws.String(tu.ID),
					Name:      aws.String(tu.Name),
					Input:     document.NewLazyDocument(tu.Input),
				},
			})
		}
		for _, tr := range msg.ToolResults {
			status := brtypes.ToolResultStatusSuccess
			if tr.IsError {
				status = brtypes.ToolResultStatusError
			}
			content = append(content, &brtypes.ContentBlockMemberToolResult{
				Value: brtypes.ToolResultBlock{
					ToolUseId: aws.String(tr.ToolUseID),
					Content: []brtypes.ToolResultContentBlock{
						&brtypes.ToolResultContentBlockMemberText{Value: tr.Content},
					},
					Status: status,
				},
			})
		}
		if len(content) == 0 {
			return nil, fmt.Errorf("message with role %s has no content", msg.Role)
		}

		out = append(out, brtypes.Message{Role: role, Content: content})
	}
	return out, nil
}

func fromBedrockMessage(msg brtypes.Message) (Message, error) {
	out := Message{Role: RoleAssistant}
	for _, block := range msg.Content {
		switch b := block.(type) {
		case *brtypes.ContentBlockMemberText:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += b.Value
		case *brtypes.ContentBlockMemberToolUse:
			var input map[string]any
			if b.Value.Input != nil {
				raw, err := b.Value.Input.MarshalSmithyDocument()
				if err != nil {
					return Message{}, fmt.Errorf("failed to decode tool input for %s: %w", aws.ToString(b.Value.Name), err)
				}
				if err := json.Unmarshal(raw, &input); err != nil {
					return Message{}, fmt.Errorf("failed to decode tool input for %s: %w", aws.ToString(b.Value.Name), err)
				}
			}
			out.ToolUses = append(out.ToolUses, ToolUse{
				ID:    aws.ToString(b.Value.ToolUseId),
				Name:  aws.ToString(b.Value.Name),
				Input: input,
			})
		}
	}
	return out, nil
}
