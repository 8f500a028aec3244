package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"ok":false,"error":"marshal tool result failed"}`
	}
	return string(data)
}

func summarizeForLog(s string) string {
	normalized := strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if normalized == "" {
		return "-"
	}
	const maxRunes = 220
	runes := []rune(normalized)
	if len(runes) <= maxRunes {
		return normalized
	}
	return string(runes[:maxRunes]) + "...(truncated)"
}

func quoteOrDash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return "\"" + s + "\""
}

// formatToolStart is the one-line transcript header for a tool invocation.
func formatToolStart(name, rawArgs string) string {
	args := gjson.Parse(rawArgs)
	switch name {
	case "run_command":
		return fmt.Sprintf("* Run %s", quoteOrDash(args.Get("command").String()))
	case "read_file":
		return fmt.Sprintf("* Read %s", quoteOrDash(args.Get("path").String()))
	case "write_file":
		return fmt.Sprintf("* Write %s (%d bytes)", quoteOrDash(args.Get("path").String()), len(args.Get("content").String()))
	case "patch_file":
		return fmt.Sprintf("* Patch %s (%d ops)", quoteOrDash(args.Get("path").String()), len(args.Get("operations").Array()))
	case "search_files":
		return fmt.Sprintf("* Search %s", quoteOrDash(args.Get("query").String()))
	case "read_dir":
		path := args.Get("path").String()
		if path == "" {
			path = "."
		}
		return fmt.Sprintf("* List %s", quoteOrDash(path))
	case "path_exists":
		return fmt.Sprintf("* Stat %s", quoteOrDash(args.Get("path").String()))
	case "manage_todo":
		return fmt.Sprintf("* Todo %s", quoteOrDash(args.Get("action").String()))
	default:
		return fmt.Sprintf("* %s args=%s", name, summarizeForLog(rawArgs))
	}
}

// summarizeToolResult condenses a tool result payload into a transcript line.
func summarizeToolResult(name, rawResult string) string {
	result := gjson.Parse(rawResult)
	if !result.IsObject() {
		return summarizeForLog(rawResult)
	}
	if !result.Get("ok").Bool() {
		if errText := result.Get("error").String(); errText != "" {
			kind := result.Get("kind").String()
			if kind != "" {
				return summarizeForLog(kind + ": " + errText)
			}
			return summarizeForLog(errText)
		}
	}

	switch name {
	case "run_command":
		exitCode := result.Get("exit_code").Int()
		dur := result.Get("duration_ms").Int()
		stdout := strings.TrimSpace(result.Get("stdout").String())
		if exitCode == 0 && stdout != "" {
			return fmt.Sprintf("exit=0 in %dms, stdout=%s", dur, summarizeForLog(firstLine(stdout)))
		}
		return fmt.Sprintf("exit=%d in %dms", exitCode, dur)
	case "read_file":
		line := fmt.Sprintf("read %d bytes from %s", result.Get("bytes").Int(), quoteOrDash(result.Get("path").String()))
		if result.Get("truncated").Bool() {
			line += " (truncated)"
		}
		return line
	case "write_file":
		if result.Get("created").Bool() {
			return fmt.Sprintf("created %s (%d bytes)", quoteOrDash(result.Get("path").String()), result.Get("bytes_written").Int())
		}
		return fmt.Sprintf("overwrote %s (%d bytes, %d lines changed)",
			quoteOrDash(result.Get("path").String()), result.Get("bytes_written").Int(), result.Get("changed_lines").Int())
	case "patch_file":
		return fmt.Sprintf("patched %s (%d ops, %d lines changed)",
			quoteOrDash(result.Get("path").String()), result.Get("operations").Int(), result.Get("changed_lines").Int())
	case "search_files":
		return fmt.Sprintf("%d matches", result.Get("count").Int())
	case "read_dir":
		return fmt.Sprintf("%d entries in %s", result.Get("count").Int(), quoteOrDash(result.Get("path").String()))
	case "path_exists":
		if result.Get("exists").Bool() {
			if result.Get("is_directory").Bool() {
				return "exists (directory)"
			}
			return "exists (file)"
		}
		return "does not exist"
	case "manage_todo":
		if items := result.Get("items"); items.Exists() {
			return fmt.Sprintf("%d todo item(s)", result.Get("count").Int())
		}
		if item := result.Get("item"); item.Exists() {
			return fmt.Sprintf("todo #%d %s", item.Get("id").Int(), item.Get("status").String())
		}
		if deleted := result.Get("deleted"); deleted.Exists() {
			return fmt.Sprintf("todo #%d deleted", deleted.Int())
		}
		return summarizeForLog(rawResult)
	default:
		return summarizeForLog(rawResult)
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
