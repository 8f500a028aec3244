// Package diffview computes change magnitude between two versions of a text
// file, renders a unified diff preview, and gates large overwrites behind a
// blocking confirmation.
package diffview

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ChangedLines counts line positions where the two texts differ, over the
// longer of the two line sequences; missing lines on the shorter side count
// as differing.
func ChangedLines(before, after string) int {
	oldLines := splitDiffLines(normalizeLineEndings(before))
	newLines := splitDiffLines(normalizeLineEndings(after))
	n := len(oldLines)
	if len(newLines) > n {
		n = len(newLines)
	}
	changed := 0
	for i := 0; i < n; i++ {
		switch {
		case i >= len(oldLines) || i >= len(newLines):
			changed++
		case oldLines[i] != newLines[i]:
			changed++
		}
	}
	return changed
}

// BuildUnifiedDiff builds a compact single-hunk unified diff preview with
// one context line on each side. Returns the diff plus addition/deletion
// counts; an empty diff means the contents are equal.
func BuildUnifiedDiff(path, oldContent, newContent string) (string, int, int) {
	oldNorm := normalizeLineEndings(oldContent)
	newNorm := normalizeLineEndings(newContent)
	if oldNorm == newNorm {
		return "", 0, 0
	}

	oldLines := splitDiffLines(oldNorm)
	newLines := splitDiffLines(newNorm)

	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for len(oldLines)-1-suffix >= prefix &&
		len(newLines)-1-suffix >= prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	oldChangedEnd := len(oldLines) - suffix
	newChangedEnd := len(newLines) - suffix

	const contextLines = 1
	preStart := prefix - contextLines
	if preStart < 0 {
		preStart = 0
	}
	postOldEnd := oldChangedEnd + contextLines
	if postOldEnd > len(oldLines) {
		postOldEnd = len(oldLines)
	}
	postNewEnd := newChangedEnd + contextLines
	if postNewEnd > len(newLines) {
		postNewEnd = len(newLines)
	}

	oldCount := (prefix - preStart) + (oldChangedEnd - prefix) + (postOldEnd - oldChangedEnd)
	newCount := (prefix - preStart) + (newChangedEnd - prefix) + (postNewEnd - newChangedEnd)
	oldStart := preStart + 1
	newStart := preStart + 1
	if oldCount == 0 {
		oldStart = preStart
	}
	if newCount == 0 {
		newStart = preStart
	}

	displayPath := normalizeDiffPath(path)
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "--- a/%s\n", displayPath)
	_, _ = fmt.Fprintf(&b, "+++ b/%s\n", displayPath)
	_, _ = fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)

	for _, line := range oldLines[preStart:prefix] {
		b.WriteString(" " + line + "\n")
	}
	deletions := 0
	for _, line := range oldLines[prefix:oldChangedEnd] {
		deletions++
		b.WriteString("-" + line + "\n")
	}
	additions := 0
	for _, line := range newLines[prefix:newChangedEnd] {
		additions++
		b.WriteString("+" + line + "\n")
	}
	for i := 0; i < postOldEnd-oldChangedEnd && i < postNewEnd-newChangedEnd; i++ {
		b.WriteString(" " + oldLines[oldChangedEnd+i] + "\n")
	}

	return strings.TrimRight(b.String(), "\n"), additions, deletions
}

// Truncate bounds the diff to maxLines, appending a truncation notice when
// anything was cut.
func Truncate(diff string, maxLines int) (string, bool) {
	diff = strings.TrimSpace(normalizeLineEndings(diff))
	if diff == "" {
		return "", false
	}
	lines := strings.Split(diff, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return diff, false
	}
	out := strings.Join(lines[:maxLines], "\n")
	return out + "\n... (diff truncated)", true
}

func normalizeDiffPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "file"
	}
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimPrefix(p, "./")
	if p == "" || p == "." {
		return "file"
	}
	return p
}

func normalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func splitDiffLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
