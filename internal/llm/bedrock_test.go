package llm

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

func TestToBedrockMessages(t *testing.T) {
	messages, err := toBedrockMessages([]Message{
		UserMessage("analyze my training costs"),
		{
			Role: RoleAssistant,
			Text: "looking up jobs",
			ToolUses: []ToolUse{
				{ID: "tu-1", Name: "list_sagemaker_training_jobs", Input: map[string]any{"days": "30"}},
			},
		},
		ToolResultMessage([]ToolResult{
			{ToolUseID: "tu-1", Content: "2 jobs found"},
		}),
	})
	if err != nil {
		t.Fatalf("toBedrockMessages returned error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}

	if messages[0].Role != brtypes.ConversationRoleUser {
		t.Errorf("message 0 role = %v", messages[0].Role)
	}
	text, ok := messages[0].Content[0].(*brtypes.ContentBlockMemberText)
	if !ok || text.Value != "analyze my training costs" {
		t.Errorf("message 0 content = %#v", messages[0].Content[0])
	}

	if messages[1].Role != brtypes.ConversationRoleAssistant {
		t.Errorf("message 1 role = %v", messages[1].Role)
	}
	if len(messages[1].Content) != 2 {
		t.Fatalf("message 1 has %d blocks, want text + tool use", len(messages[1].Content))
	}
	toolUse, ok := messages[1].Content[1].(*brtypes.ContentBlockMemberToolUse)
	if !ok {
		t.Fatalf("message 1 block 1 = %#v", messages[1].Content[1])
	}
	if aws.ToString(toolUse.Value.ToolUseId) != "tu-1" || aws.ToString(toolUse.Value.Name) != "list_sagemaker_training_jobs" {
		t.Errorf("tool use block = %#v", toolUse.Value)
	}
	raw, err := toolUse.Value.Input.MarshalSmithyDocument()
	if err != nil {
		t.Fatalf("failed to marshal tool input document: %v", err)
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		t.Fatalf("failed to decode tool input document: %v", err)
	}
	if input["days"] != "30" {
		t.Errorf("tool input = %v", input)
	}

	toolResult, ok := messages[2].Content[0].(*brtypes.ContentBlockMemberToolResult)
	if !ok {
		t.Fatalf("message 2 block 0 = %#v", messages[2].Content[0])
	}
	if aws.ToString(toolResult.Value.ToolUseId) != "tu-1" {
		t.Errorf("tool result id = %v", toolResult.Value.ToolUseId)
	}
	if toolResult.Value.Status != brtypes.ToolResultStatusSuccess {
		t.Errorf("tool result status = %v", toolResult.Value.Status)
	}
	resultText, ok := toolResult.Value.Content[0].(*brtypes.ToolResultContentBlockMemberText)
	if !ok || resultText.Value != "2 jobs found" {
		t.Errorf("tool result content = %#v", toolResult.Value.Content[0])
	}
}

func TestToBedrockMessagesErrorResult(t *testing.T) {
	messages, err := toBedrockMessages([]Message{
		ToolResultMessage([]ToolResult{
			{ToolUseID: "tu-2", Content: "Error: access denied", IsError: true},
		}),
	})
	if err != nil {
		t.Fatalf("toBedrockMessages returned error: %v", err)
	}

	toolResult := messages[0].Content[0].(*brtypes.ContentBlockMemberToolResult)
	if toolResult.Value.Status != brtypes.ToolResultStatusError {
		t.Errorf("status = %v, want error", toolResult.Value.Status)
	}
}

func TestToBedrockMessagesEmptyContent(t *testing.T) {
	if _, err := toBedrockMessages([]Message{{Role: RoleUser}}); err == nil {
		t.Error("expected error for message with no content")
	}
}

func TestFromBedrockMessage(t *testing.T) {
	msg, err := fromBedrockMessage(brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: "checking storage"},
			&brtypes.ContentBlockMemberToolUse{
				Value: brtypes.ToolUseBlock{
					ToolUseId: aws.String("tu-3"),
					Name:      aws.String("analyze_ml_data_storage"),
					Input:     document.NewLazyDocument(map[string]any{"account_id": "123456789012"}),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("fromBedrockMessage returned error: %v", err)
	}

	if msg.Role != RoleAssistant {
		t.Errorf("role = %q", msg.Role)
	}
	if msg.Text != "checking storage" {
		t.Errorf("text = %q", msg.Text)
	}
	if len(msg.ToolUses) != 1 {
		t.Fatalf("got %d tool uses, want 1", len(msg.ToolUses))
	}

	tu := msg.ToolUses[0]
	if tu.ID != "tu-3" || tu.Name != "analyze_ml_data_storage" {
		t.Errorf("tool use = %#v", tu)
	}
	if tu.Input["account_id"] != "123456789012" {
		t.Errorf("tool input = %v", tu.Input)
	}
}

func TestFromBedrockMessageJoinsTextBlocks(t *testing.T) {
	msg, err := fromBedrockMessage(brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: "part one"},
			&brtypes.ContentBlockMemberText{Value: "part two"},
		},
	})
	if err != nil {
		t.Fatalf("fromBedrockMessage returned error: %v", err)
	}
	if msg.Text != "part one\npart two" {
		t.Errorf("joined text = %q", msg.Text)
	}
}

func TestToBedrockToolConfig(t *testing.T) {
	cfg := toBedrockToolConfig([]ToolSpec{
		{
			Name:        "internet_search",
			Description: "Search the web",
			InputSchema: map[string]any{"type": "object"},
		},
	})
	if len(cfg.Tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(cfg.Tools))
	}

	spec, ok := cfg.Tools[0].(*brtypes.ToolMemberToolSpec)
	if !ok {
		t.Fatalf("tool = %#v", cfg.Tools[0])
	}
	if aws.ToString(spec.Value.Name) != "internet_search" {
		t.Errorf("tool name = %v", spec.Value.Name)
	}
	schema, ok := spec.Value.InputSchema.(*brtypes.ToolInputSchemaMemberJson)
	if !ok {
		t.Fatalf("input schema = %#v", spec.Value.InputSchema)
	}

	raw, err := schema.Value.MarshalSmithyDocument()
	if err != nil {
		t.Fatalf("failed to marshal schema document: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode schema document: %v", err)
	}
	if decoded["type"] != "object" {
		t.Errorf("decoded schema = %v", decoded)
	}
}
