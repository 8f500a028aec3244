package orchestrator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ClearScreen is the escape sequence the clear/restart commands emit.
const ClearScreen = "\x1b[2J\x1b[H"

var (
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	toolArgs    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func colorEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}

func paint(s lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return s.Render(text)
}

// answerStream echoes tokens as they arrive, collapsing runs of blank lines.
type answerStream struct {
	out             io.Writer
	started         bool
	lineStart       bool
	pendingNewlines int
}

func newAnswerStream(out io.Writer) *answerStream {
	return &answerStream{out: out, lineStart: true}
}

func (r *answerStream) Append(chunk string) {
	if r == nil || r.out == nil || chunk == "" {
		return
	}
	if !r.started {
		r.started = true
		fmt.Fprintln(r.out)
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(chunk, "\r\n", "\n"), "\r", "\n")
	for _, ch := range normalized {
		if ch == '\n' {
			r.pendingNewlines++
			continue
		}
		if r.pendingNewlines > 0 {
			n := r.pendingNewlines
			if n > 2 {
				n = 2
			}
			fmt.Fprint(r.out, strings.Repeat("\n", n))
			r.pendingNewlines = 0
			r.lineStart = true
		}
		fmt.Fprint(r.out, string(ch))
		r.lineStart = false
	}
}

func (r *answerStream) Finish() {
	if r == nil || r.out == nil || !r.started {
		return
	}
	if !r.lineStart {
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out)
}

// renderAnswer prints a non-streamed final answer, as terminal markdown when
// color is available.
func renderAnswer(out io.Writer, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	if colorEnabled() {
		if rendered, err := glamour.Render(content, "dark"); err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	fmt.Fprintf(out, "\n%s\n\n", content)
}

func renderToolStart(out io.Writer, message string) {
	fmt.Fprintf(out, "%s %s\n", paint(toolStyle, "[TOOL]"), paint(toolArgs, message))
}

func renderToolResult(out io.Writer, message string) {
	lines := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	fmt.Fprintf(out, "  %s %s\n", paint(resultStyle, "->"), paint(detailStyle, lines[0]))
	for _, line := range lines[1:] {
		fmt.Fprintf(out, "     %s\n", paint(detailStyle, line))
	}
}

func renderToolError(out io.Writer, message string) {
	fmt.Fprintf(out, "  %s %s\n", paint(errorStyle, "x"), paint(errorStyle, message))
}

func renderNotice(out io.Writer, message string) {
	fmt.Fprintf(out, "%s\n", paint(noticeStyle, message))
}

func renderDebug(out io.Writer, label, payload string) {
	fmt.Fprintf(out, "  %s %s\n", paint(detailStyle, "[debug "+label+"]"), paint(detailStyle, summarizeForLog(payload)))
}
