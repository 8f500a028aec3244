package diffview

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleFileHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleHunk       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleAdd        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleDel        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Colorize styles a unified diff for terminal display: file headers,
// hunk headers, additions and removals each get their own color.
func Colorize(diff string) string {
	if !colorEnabled() {
		return diff
	}
	lines := strings.Split(normalizeLineEndings(diff), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			lines[i] = styleFileHeader.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = styleHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = styleAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = styleDel.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func colorEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
