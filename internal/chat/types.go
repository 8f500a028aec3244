package chat

// Message roles used on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolFunction describes an OpenAI-compatible function tool definition.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolDef describes one function tool exposed to the model.
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolCallFunction is the function payload of a model tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is an OpenAI-compatible tool call requested by the assistant.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is one turn of the conversation, OpenAI-compatible.
//
// Assistant messages that request tools carry ToolCalls and may have empty
// Content; tool-role messages answer exactly one prior call via ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// LastOpenToolCalls returns the tool calls of the trailing assistant message
// that have no matching tool-role reply yet. A cancelled or interrupted
// exchange can leave such a dangling request; callers use this to repair the
// history before the next provider round-trip.
func LastOpenToolCalls(messages []Message) []ToolCall {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		switch msg.Role {
		case RoleTool:
			return nil
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				return nil
			}
			open := make([]ToolCall, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				answered := false
				for j := i + 1; j < len(messages); j++ {
					if messages[j].Role == RoleTool && messages[j].ToolCallID == call.ID {
						answered = true
						break
					}
				}
				if !answered {
					open = append(open, call)
				}
			}
			return open
		}
	}
	return nil
}
