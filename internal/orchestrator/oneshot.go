package orchestrator

import (
	"context"
	"fmt"
	"io"

	"chatcli/internal/chat"
	"chatcli/internal/provider"
)

// RunOneShot answers a single prompt without offering tools. Tokens stream
// to out as they arrive; a transport failure is returned to the caller, who
// exits non-zero.
func (o *Orchestrator) RunOneShot(ctx context.Context, prompt string, out io.Writer) error {
	o.appendMessage(chat.Message{Role: chat.RoleUser, Content: prompt})

	req := provider.ChatRequest{
		Messages:    o.messages,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}
	streamed := false
	var cb *provider.StreamCallbacks
	if o.stream && out != nil {
		cb = &provider.StreamCallbacks{
			OnTextChunk: func(chunk string) {
				streamed = true
				fmt.Fprint(out, chunk)
			},
		}
	}

	resp, err := o.provider.Chat(ctx, req, cb)
	if err != nil {
		if streamed {
			fmt.Fprintln(out)
		}
		if isCancellation(ctx, err) {
			return cancellationErr(ctx, err)
		}
		return fmt.Errorf("transport: %w", err)
	}

	o.appendMessage(chat.Message{Role: chat.RoleAssistant, Content: resp.Content})
	o.persist()
	if out != nil {
		if streamed {
			fmt.Fprintln(out)
		} else {
			fmt.Fprintln(out, resp.Content)
		}
	}
	return nil
}
