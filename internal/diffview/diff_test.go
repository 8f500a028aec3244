package diffview

import (
	"context"
	"strings"
	"testing"

	"chatcli/internal/permission"
)

type recordingPrompter struct {
	answer  bool
	asked   int
	notices []string
}

func (p *recordingPrompter) Confirm(context.Context, string) (bool, error) {
	p.asked++
	return p.answer, nil
}

func (p *recordingPrompter) Notify(message string) {
	p.notices = append(p.notices, message)
}

func TestChangedLines(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   int
	}{
		{name: "equal", before: "a\nb", after: "a\nb", want: 0},
		{name: "one line differs", before: "a\nb\nc", after: "a\nX\nc", want: 1},
		{name: "added lines count", before: "a", after: "a\nb\nc", want: 2},
		{name: "removed lines count", before: "a\nb\nc", after: "a", want: 2},
		{name: "both empty", before: "", after: "", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChangedLines(tc.before, tc.after); got != tc.want {
				t.Fatalf("ChangedLines=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestDecideThreshold(t *testing.T) {
	cfg := Config{Enabled: true, ThresholdLines: 3, MaxLines: 40}
	p := NewPreviewer(&cfg)
	prompter := &recordingPrompter{answer: true}
	ctx := permission.WithPrompter(context.Background(), prompter)

	// 2 changed lines < threshold 3: auto-approve, no prompt.
	d := p.Decide(ctx, "a.txt", "1\n2\n3\n4", "1\nX\nY\n4")
	if !d.Proceed || d.ChangedLines != 2 {
		t.Fatalf("decision %+v, want proceed with 2 changed", d)
	}
	if prompter.asked != 0 {
		t.Fatal("sub-threshold change prompted")
	}

	// 3 changed lines meets threshold: prompt.
	d = p.Decide(ctx, "a.txt", "1\n2\n3\n4", "1\nX\nY\nZ")
	if !d.Proceed || d.ChangedLines != 3 {
		t.Fatalf("decision %+v, want proceed with 3 changed", d)
	}
	if prompter.asked != 1 {
		t.Fatalf("threshold change should prompt once, got %d", prompter.asked)
	}
}

func TestDecideRejection(t *testing.T) {
	cfg := Config{Enabled: true, ThresholdLines: 1, MaxLines: 40}
	p := NewPreviewer(&cfg)
	prompter := &recordingPrompter{answer: false}
	ctx := permission.WithPrompter(context.Background(), prompter)

	d := p.Decide(ctx, "a.txt", "old", "new")
	if d.Proceed {
		t.Fatal("rejected diff must not proceed")
	}
}

func TestDecideDisabledOrNoPrompter(t *testing.T) {
	cfg := Config{Enabled: false, ThresholdLines: 0, MaxLines: 40}
	p := NewPreviewer(&cfg)
	if d := p.Decide(context.Background(), "a.txt", "old", "new"); !d.Proceed {
		t.Fatal("disabled preview must auto-approve")
	}

	cfg.Enabled = true
	if d := p.Decide(context.Background(), "a.txt", "old", "new"); !d.Proceed {
		t.Fatal("missing prompter must auto-approve")
	}
}

func TestBuildUnifiedDiff(t *testing.T) {
	diff, additions, deletions := BuildUnifiedDiff("dir/a.txt", "l1\nl2\nl3\n", "l1\nchanged\nl3\n")
	if additions != 1 || deletions != 1 {
		t.Fatalf("counts +%d -%d, want +1 -1", additions, deletions)
	}
	for _, needle := range []string{"--- a/dir/a.txt", "+++ b/dir/a.txt", "@@", "-l2", "+changed", " l1", " l3"} {
		if !strings.Contains(diff, needle) {
			t.Fatalf("diff missing %q:\n%s", needle, diff)
		}
	}

	if diff, _, _ := BuildUnifiedDiff("a.txt", "same\n", "same\n"); diff != "" {
		t.Fatalf("equal content should produce empty diff, got %q", diff)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("line\n", 50)
	out, truncated := Truncate(long, 10)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(out, "... (diff truncated)") {
		t.Fatalf("missing truncation notice: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 10 {
		t.Fatalf("expected 10 newlines after truncation, got %d", got)
	}

	if out, truncated := Truncate("a\nb", 10); truncated || out != "a\nb" {
		t.Fatalf("short diff should pass through, got %q (%v)", out, truncated)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Enabled: true, ThresholdLines: -3, MaxLines: 2}
	cfg.Normalize()
	if cfg.ThresholdLines != 0 || cfg.MaxLines != 10 {
		t.Fatalf("normalized config %+v", cfg)
	}
}
