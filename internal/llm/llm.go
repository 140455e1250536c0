// Package llm provides chat-model adapters for the two supported providers,
// Amazon Bedrock and OpenAI, behind one provider-neutral interface with tool
// calling.
package llm

import "context"

// Roles used in the conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stop reasons normalized across providers.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// ToolUse is a tool invocation requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResult carries a tool's text output back to the model.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Message is one conversation turn. Assistant turns may carry tool uses; user
// turns may carry tool results.
type Message struct {
	Role        string
	Text        string
	ToolUses    []ToolUse
	ToolResults []ToolResult
}

// ToolSpec describes a callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ChatRequest is one model call.
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// ChatResponse is the model's reply plus the normalized stop reason.
type ChatResponse struct {
	Message    Message
	StopReason string
}

// Model is a chat-capable LLM client.
type Model interface {
	// Chat runs one model turn. The call blocks until the provider responds;
	// deep-agent turns can take tens of minutes.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// ModelID returns the provider model identifier.
	ModelID() string
}

// UserMessage builds a plain user text message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// ToolResultMessage builds the user turn that answers the given tool uses.
func ToolResultMessage(results []ToolResult) Message {
	return Message{Role: RoleUser, ToolResults: results}
}
