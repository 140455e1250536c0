package llm

import (
	"encoding/json"
	"testing"
)

func TestToOpenAIMessagesSystemAndUser(t *testing.T) {
	out, err := toOpenAIMessages("be helpful", []Message{UserMessage("what did SageMaker cost?")})
	if err != nil {
		t.Fatalf("toOpenAIMessages returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2", len(out))
	}

	if out[0].OfSystem == nil {
		t.Fatal("first message should be the system message")
	}
	if got := out[0].OfSystem.Content.OfString.Value; got != "be helpful" {
		t.Errorf("system content = %q", got)
	}

	if out[1].OfUser == nil {
		t.Fatal("second message should be the user message")
	}
	if got := out[1].OfUser.Content.OfString.Value; got != "what did SageMaker cost?" {
		t.Errorf("user content = %q", got)
	}
}

func TestToOpenAIMessagesToolResultFields(t *testing.T) {
	out, err := toOpenAIMessages("", []Message{
		ToolResultMessage([]ToolResult{
			{ToolUseID: "call_123", Content: "endpoint list: 2 endpoints"},
		}),
	})
	if err != nil {
		t.Fatalf("toOpenAIMessages returned error: %v", err)
	}
	if len(out) != 1 || out[0].OfTool == nil {
		t.Fatalf("expected one tool message, got %#v", out)
	}

	// The call id and the tool output must land in the right fields.
	tool := out[0].OfTool
	if tool.ToolCallID != "call_123" {
		t.Errorf("tool_call_id = %q, want call_123", tool.ToolCallID)
	}
	if got := tool.Content.OfString.Value; got != "endpoint list: 2 endpoints" {
		t.Errorf("tool content = %q", got)
	}
}

func TestToOpenAIMessagesMultipleToolResults(t *testing.T) {
	out, err := toOpenAIMessages("", []Message{
		ToolResultMessage([]ToolResult{
			{ToolUseID: "call_1", Content: "first"},
			{ToolUseID: "call_2", Content: "second"},
		}),
	})
	if err != nil {
		t.Fatalf("toOpenAIMessages returned error: %v", err)
	}

	// One tool message per result.
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2", len(out))
	}
	for i, wantID := range []string{"call_1", "call_2"} {
		if out[i].OfTool == nil || out[i].OfTool.ToolCallID != wantID {
			t.Errorf("message %d: expected tool message for %s, got %#v", i, wantID, out[i])
		}
	}
}

func TestToOpenAIMessagesAssistantToolCalls(t *testing.T) {
	out, err := toOpenAIMessages("", []Message{
		{
			Role: RoleAssistant,
			Text: "checking usage",
			ToolUses: []ToolUse{
				{ID: "call_9", Name: "analyze_bedrock_usage", Input: map[string]any{"days": 7.0}},
			},
		},
	})
	if err != nil {
		t.Fatalf("toOpenAIMessages returned error: %v", err)
	}
	if len(out) != 1 || out[0].OfAssistant == nil {
		t.Fatalf("expected one assistant message, got %#v", out)
	}

	asst := out[0].OfAssistant
	if got := asst.Content.OfString.Value; got != "checking usage" {
		t.Errorf("assistant content = %q", got)
	}
	if len(asst.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(asst.ToolCalls))
	}

	tc := asst.ToolCalls[0]
	if tc.ID != "call_9" {
		t.Errorf("tool call id = %q", tc.ID)
	}
	if tc.Function.Name != "analyze_bedrock_usage" {
		t.Errorf("tool call name = %q", tc.Function.Name)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}
	if args["days"] != 7.0 {
		t.Errorf("arguments = %v", args)
	}
}

func TestToOpenAIMessagesPlainAssistant(t *testing.T) {
	out, err := toOpenAIMessages("", []Message{{Role: RoleAssistant, Text: "done"}})
	if err != nil {
		t.Fatalf("toOpenAIMessages returned error: %v", err)
	}
	if len(out) != 1 || out[0].OfAssistant == nil {
		t.Fatalf("expected one assistant message, got %#v", out)
	}
	if got := out[0].OfAssistant.Content.OfString.Value; got != "done" {
		t.Errorf("assistant content = %q", got)
	}
}

func TestToOpenAIMessagesUnsupportedRole(t *testing.T) {
	if _, err := toOpenAIMessages("", []Message{{Role: "system", Text: "x"}}); err == nil {
		t.Error("expected error for unsupported role")
	}
}
