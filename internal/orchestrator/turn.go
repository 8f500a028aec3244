package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"chatcli/internal/chat"
	"chatcli/internal/provider"
)

// RunTurn runs one agentic exchange: the user input plus as many
// request/tool rounds as the model needs, bounded by the round cap.
func (o *Orchestrator) RunTurn(ctx context.Context, userInput string, out io.Writer) (string, error) {
	o.repairDanglingToolCalls()
	o.appendMessage(chat.Message{Role: chat.RoleUser, Content: userInput})
	o.persist()
	return o.runExchange(ctx, out)
}

// Rerun re-drives the exchange against the current history without adding a
// user message. Used by the retry and edit commands.
func (o *Orchestrator) Rerun(ctx context.Context, out io.Writer) (string, error) {
	o.repairDanglingToolCalls()
	return o.runExchange(ctx, out)
}

func (o *Orchestrator) runExchange(ctx context.Context, out io.Writer) (string, error) {
	for round := 0; round < o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, streamed, err := o.requestCompletion(ctx, o.registry.Definitions(), out)
		if err != nil {
			if isCancellation(ctx, err) {
				return "", cancellationErr(ctx, err)
			}
			return "", fmt.Errorf("transport: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			o.appendMessage(chat.Message{Role: chat.RoleAssistant, Content: resp.Content})
			o.persist()
			if out != nil && !streamed {
				renderAnswer(out, resp.Content)
			}
			return resp.Content, nil
		}

		// One assistant message per requested call; the first carries any
		// accompanying text. Calls run strictly in the order returned.
		for i, call := range resp.ToolCalls {
			msg := chat.Message{Role: chat.RoleAssistant, ToolCalls: []chat.ToolCall{call}}
			if i == 0 {
				msg.Content = resp.Content
			}
			o.appendMessage(msg)

			if err := ctx.Err(); err != nil {
				o.appendToolCancelled(call)
				o.persist()
				return "", err
			}

			if out != nil {
				renderToolStart(out, formatToolStart(call.Function.Name, call.Function.Arguments))
				if o.debug {
					renderDebug(out, "args", call.Function.Arguments)
				}
			}

			result, err := o.registry.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				if isCancellation(ctx, err) {
					o.appendToolCancelled(call)
					o.persist()
					return "", cancellationErr(ctx, err)
				}
				if out != nil {
					renderToolError(out, summarizeForLog(err.Error()))
				}
				o.appendToolError(call, err)
				o.persist()
				continue
			}
			o.appendMessage(chat.Message{
				Role:       chat.RoleTool,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    result,
			})
			o.persist()
			if out != nil {
				renderToolResult(out, summarizeToolResult(call.Function.Name, result))
				if o.debug {
					renderDebug(out, "result", result)
				}
			}
		}
	}

	// Cap reached: not an error, the tool outputs stay in history for the
	// next user turn.
	if out != nil {
		renderNotice(out, fmt.Sprintf("stopped after %d rounds without a final answer", o.maxRounds))
	}
	o.persist()
	return "", nil
}

func (o *Orchestrator) requestCompletion(ctx context.Context, defs []chat.ToolDef, out io.Writer) (provider.ChatResponse, bool, error) {
	req := provider.ChatRequest{
		Messages:    o.messages,
		Tools:       defs,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var cb *provider.StreamCallbacks
	streamed := false
	var renderer *answerStream
	if o.stream && out != nil {
		renderer = newAnswerStream(out)
		cb = &provider.StreamCallbacks{
			OnTextChunk: func(chunk string) {
				streamed = true
				renderer.Append(chunk)
			},
		}
	}
	resp, err := o.provider.Chat(ctx, req, cb)
	if renderer != nil {
		renderer.Finish()
	}
	// A streamed response that turned into tool calls keeps its text on the
	// assistant message; the live echo was just a preview.
	return resp, streamed && len(resp.ToolCalls) == 0, err
}

// repairDanglingToolCalls closes over an interrupted exchange: an assistant
// message whose tool calls never got their tool-role replies would be
// rejected by the backend on the next request.
func (o *Orchestrator) repairDanglingToolCalls() {
	open := chat.LastOpenToolCalls(o.messages)
	for _, call := range open {
		o.appendToolCancelled(call)
	}
	if len(open) > 0 {
		o.persist()
	}
}

func (o *Orchestrator) appendToolCancelled(call chat.ToolCall) {
	o.appendMessage(chat.Message{
		Role:       chat.RoleTool,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
		Content:    mustJSON(map[string]any{"ok": false, "kind": "Cancelled", "error": "cancelled by user"}),
	})
}

func (o *Orchestrator) appendToolError(call chat.ToolCall, err error) {
	o.appendMessage(chat.Message{
		Role:       chat.RoleTool,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
		Content:    mustJSON(map[string]any{"ok": false, "kind": "UnsupportedOperation", "error": err.Error()}),
	})
}

func isCancellation(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx != nil && ctx.Err() != nil
}

func cancellationErr(ctx context.Context, fallback error) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return fallback
}
